package project

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFind(t *testing.T) {
	tmp := t.TempDir()

	// Layout: tmp/repo/.git, tmp/repo/web/src
	repo := filepath.Join(tmp, "repo")
	nested := filepath.Join(repo, "web", "src")
	mkdirAll(t, filepath.Join(repo, ".git"))
	mkdirAll(t, nested)

	tests := []struct {
		name       string
		start      string
		wantDir    string
		wantMarker string
	}{
		{name: "from root itself", start: repo, wantDir: repo, wantMarker: ".git"},
		{name: "from nested directory", start: nested, wantDir: repo, wantMarker: ".git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(tt.start)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}

			if got.Dir != tt.wantDir || got.Marker != tt.wantMarker {
				t.Errorf("Find() = {%s %s}, want {%s %s}", got.Dir, got.Marker, tt.wantDir, tt.wantMarker)
			}
		})
	}
}

func TestFind_ManifestOutranksGit(t *testing.T) {
	tmp := t.TempDir()
	outer := filepath.Join(tmp, "outer")
	inner := filepath.Join(outer, "inner")
	mkdirAll(t, filepath.Join(outer, ".git"))
	mkdirAll(t, inner)
	writeFile(t, filepath.Join(inner, ManifestName), "services: {}\n")

	got, err := Find(inner)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if got.Dir != inner || got.Marker != ManifestName {
		t.Errorf("Find() = {%s %s}, want manifest root %s", got.Dir, got.Marker, inner)
	}
}

func TestFind_NoMarkerFallsBackToStart(t *testing.T) {
	tmp := t.TempDir()

	got, err := Find(tmp)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	// The temp dir has no markers, but an ancestor might (e.g. /tmp/.env on
	// a dev box); accept either the fallback or an ancestor hit.
	if got.Marker == "" && got.Dir != tmp {
		t.Errorf("Find() fallback dir = %s, want %s", got.Dir, tmp)
	}
}

func TestLoadManifest(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, ManifestName), `
services:
  frontend:
    command: npm run dev
    dir: web
  backend:
    command: go run ./cmd/server
    env:
      PORT: "8080"
`)

	m, err := LoadManifest(Root{Dir: tmp})
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if got := m.ServiceNames(); len(got) != 2 || got[0] != "backend" || got[1] != "frontend" {
		t.Errorf("ServiceNames() = %v", got)
	}

	fe, ok := m.Lookup("frontend")
	if !ok || fe.Command != "npm run dev" || fe.Dir != "web" {
		t.Errorf("Lookup(frontend) = %+v, %v", fe, ok)
	}

	be, _ := m.Lookup("backend")
	if be.Env["PORT"] != "8080" {
		t.Errorf("backend env = %v", be.Env)
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(Root{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if len(m.Services) != 0 {
		t.Errorf("Services = %v, want none", m.Services)
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "services: [\n"},
		{name: "missing command", content: "services:\n  frontend:\n    dir: web\n"},
		{name: "absolute dir", content: "services:\n  api:\n    command: ls\n    dir: /etc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			writeFile(t, filepath.Join(tmp, ManifestName), tt.content)

			if _, err := LoadManifest(Root{Dir: tmp}); err == nil {
				t.Error("LoadManifest() = nil error, want failure")
			}
		})
	}
}

func TestRootPaths(t *testing.T) {
	r := Root{Dir: "/repo"}

	if got := r.EnvFile(".env"); got != filepath.Join("/repo", ".env") {
		t.Errorf("EnvFile() = %s", got)
	}

	if got := r.StateDir(); got != filepath.Join("/repo", ".bosun") {
		t.Errorf("StateDir() = %s", got)
	}
}
