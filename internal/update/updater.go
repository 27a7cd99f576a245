// Package update provides self-update functionality for the bosun CLI.
//
// It wraps the go-selfupdate library to check for and apply updates
// from GitHub Releases with checksum verification.
package update

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	selfupdate "github.com/creativeprojects/go-selfupdate"
)

const repoSlug = "harborview/bosun"

// IsDisabled returns true if update checks are disabled via BOSUN_UPDATE_DISABLED.
func IsDisabled() bool {
	v := os.Getenv("BOSUN_UPDATE_DISABLED")
	return v == "1" || strings.EqualFold(v, "true")
}

// Info holds the result of a version check.
type Info struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	UpdateAvailable bool   `json:"updateAvailable"`
	ReleaseURL      string `json:"releaseURL,omitempty"`

	// Release is the underlying release metadata (nil if not available).
	Release *selfupdate.Release `json:"-"`
}

// Updater manages checking for and applying updates.
type Updater struct {
	updater *selfupdate.Updater
}

// NewUpdater creates a new Updater configured for GitHub Releases.
func NewUpdater() (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{
		APIToken: os.Getenv("GITHUB_TOKEN"),
	})
	if err != nil {
		return nil, fmt.Errorf("create github source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:    source,
		Validator: &selfupdate.ChecksumValidator{UniqueFilename: "checksums.txt"},
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}

	return &Updater{updater: updater}, nil
}

// CheckLatest checks if a newer version is available.
func (u *Updater) CheckLatest(ctx context.Context, currentVersion string) (*Info, error) {
	latest, found, err := u.updater.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return nil, fmt.Errorf("detect latest release: %w", err)
	}

	info := &Info{
		CurrentVersion: currentVersion,
	}

	if !found {
		info.LatestVersion = currentVersion
		return info, nil
	}

	info.LatestVersion = latest.Version()
	info.ReleaseURL = latest.URL
	info.Release = latest

	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		// Can't parse current version (e.g. "dev"), treat as needing update
		info.UpdateAvailable = true
		return info, nil //nolint:nilerr // graceful: unparseable current version treated as needing update
	}

	latestSemver, err := semver.NewVersion(latest.Version())
	if err != nil {
		return info, nil //nolint:nilerr // graceful: unparseable latest version is non-fatal
	}

	if latestSemver.GreaterThan(current) {
		info.UpdateAvailable = true
	}

	return info, nil
}

// Apply downloads and installs the given release, replacing the current binary.
func (u *Updater) Apply(ctx context.Context, release *selfupdate.Release) error {
	execPath, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("find executable path: %w", err)
	}

	if err := u.updater.UpdateTo(ctx, release, execPath); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	return nil
}
