package paths

import (
	"path/filepath"
	"testing"
)

func TestConfigRoot_UsesXDGConfigHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	got, err := ConfigRoot()
	if err != nil {
		t.Fatalf("ConfigRoot() error = %v", err)
	}

	want := filepath.Join(tmp, "bosun")
	if got != want {
		t.Fatalf("ConfigRoot() = %q, want %q", got, want)
	}
}

func TestConfigRoot_IgnoresRelativeXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "relative/path")
	t.Setenv("HOME", t.TempDir())

	got, err := ConfigRoot()
	if err != nil {
		t.Fatalf("ConfigRoot() error = %v", err)
	}

	if got == filepath.Join("relative/path", "bosun") {
		t.Fatalf("ConfigRoot() used a relative XDG path: %q", got)
	}
}

func TestStateRoot_UsesXDGStateHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	got, err := StateRoot()
	if err != nil {
		t.Fatalf("StateRoot() error = %v", err)
	}

	want := filepath.Join(tmp, "bosun")
	if got != want {
		t.Fatalf("StateRoot() = %q, want %q", got, want)
	}
}

func TestStateRoot_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	got, err := StateRoot()
	if err != nil {
		t.Fatalf("StateRoot() error = %v", err)
	}

	want := filepath.Join(home, ".local", "state", "bosun")
	if got != want {
		t.Fatalf("StateRoot() = %q, want %q", got, want)
	}
}

func TestDerivedPaths(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	logFile, err := DefaultLogFile()
	if err != nil {
		t.Fatalf("DefaultLogFile() error = %v", err)
	}

	wantLog := filepath.Join(state, "bosun", "logs", "bosun.log")
	if logFile != wantLog {
		t.Fatalf("DefaultLogFile() = %q, want %q", logFile, wantLog)
	}

	stateFile, err := UpdateStateFile()
	if err != nil {
		t.Fatalf("UpdateStateFile() error = %v", err)
	}

	wantState := filepath.Join(state, "bosun", "update-check.json")
	if stateFile != wantState {
		t.Fatalf("UpdateStateFile() = %q, want %q", stateFile, wantState)
	}
}
