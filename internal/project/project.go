// Package project locates the repository root and loads the bosun.yaml
// service manifest.
//
// The root directory is the single source of truth for locally-run
// services: the canonical .env file and the service manifest both live
// there.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the service manifest filename looked for at the root.
const ManifestName = "bosun.yaml"

// rootMarkers are checked in order when walking up from the working
// directory. The manifest outranks .git so nested checkouts resolve to the
// project that actually declares services.
var rootMarkers = []string{ManifestName, ".git", ".env"}

// Root describes a resolved project root.
type Root struct {
	// Dir is the absolute root directory.
	Dir string

	// Marker is the file or directory that identified the root, empty when
	// the working directory was used as a fallback.
	Marker string
}

// EnvFile returns the path of the root env file with the given name.
func (r Root) EnvFile(name string) string {
	return filepath.Join(r.Dir, name)
}

// ManifestFile returns the path of the service manifest.
func (r Root) ManifestFile() string {
	return filepath.Join(r.Dir, ManifestName)
}

// StateDir returns the per-project state directory used for service PID
// files and logs.
func (r Root) StateDir() string {
	return filepath.Join(r.Dir, ".bosun")
}

// Find walks up from startDir looking for a root marker. When no marker is
// found, startDir itself is returned with an empty Marker.
func Find(startDir string) (Root, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Root{}, fmt.Errorf("resolve start directory: %w", err)
	}

	for candidate := dir; ; {
		for _, marker := range rootMarkers {
			if _, statErr := os.Stat(filepath.Join(candidate, marker)); statErr == nil {
				return Root{Dir: candidate, Marker: marker}, nil
			}
		}

		parent := filepath.Dir(candidate)
		if parent == candidate {
			return Root{Dir: dir}, nil
		}

		candidate = parent
	}
}

// At returns a Root pinned to an explicit directory, bypassing discovery.
func At(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("resolve root directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Root{}, fmt.Errorf("stat root directory: %w", err)
	}

	if !info.IsDir() {
		return Root{}, fmt.Errorf("root %s is not a directory", abs)
	}

	return Root{Dir: abs}, nil
}
