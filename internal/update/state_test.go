package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	in := &State{
		LastCheckedAt:  time.Now().Truncate(time.Second),
		LatestVersion:  "1.2.3",
		CurrentVersion: "1.0.0",
		ReleaseURL:     "https://example.com/release",
	}

	if err := SaveState(in); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	out, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if out.LatestVersion != in.LatestVersion || out.ReleaseURL != in.ReleaseURL {
		t.Errorf("LoadState() = %+v, want %+v", out, in)
	}
}

func TestLoadState_Missing(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !state.LastCheckedAt.IsZero() {
		t.Errorf("LoadState() = %+v, want zero state", state)
	}
}

func TestLoadState_Corrupted(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	stateDir := filepath.Join(tmp, "bosun")
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(stateDir, "update-check.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if state.LatestVersion != "" {
		t.Errorf("LoadState() = %+v, want empty state for corrupted file", state)
	}
}

func TestShouldCheck(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "never checked", state: State{}, want: true},
		{name: "checked just now", state: State{LastCheckedAt: time.Now()}, want: false},
		{name: "checked two days ago", state: State{LastCheckedAt: time.Now().Add(-48 * time.Hour)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.ShouldCheck(); got != tt.want {
				t.Errorf("ShouldCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUpdate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		current string
		want    bool
	}{
		{name: "newer available", state: State{LatestVersion: "1.1.0"}, current: "1.0.0", want: true},
		{name: "same version", state: State{LatestVersion: "1.0.0"}, current: "1.0.0", want: false},
		{name: "older cached", state: State{LatestVersion: "0.9.0"}, current: "1.0.0", want: false},
		{name: "no cached version", state: State{}, current: "1.0.0", want: false},
		{name: "dev build", state: State{LatestVersion: "1.1.0"}, current: "dev", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.HasUpdate(tt.current); got != tt.want {
				t.Errorf("HasUpdate(%q) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestIsDisabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: false},
		{value: "0", want: false},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "TRUE", want: true},
	}

	for _, tt := range tests {
		t.Run("value_"+tt.value, func(t *testing.T) {
			t.Setenv("BOSUN_UPDATE_DISABLED", tt.value)

			if got := IsDisabled(); got != tt.want {
				t.Errorf("IsDisabled() = %v with BOSUN_UPDATE_DISABLED=%q", got, tt.value)
			}
		})
	}
}
