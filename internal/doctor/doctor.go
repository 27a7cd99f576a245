// Package doctor provides diagnostic checks for bosun and the project it
// operates on.
//
// This package implements a check framework that validates:
//   - Shell availability
//   - Project root discovery and env file health
//   - Service manifest validity
//   - Node.js toolchain presence
//   - CLI version against latest release
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/harborview/bosun/internal/buildinfo"
	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/envfile"
	"github.com/harborview/bosun/internal/launch"
	"github.com/harborview/bosun/internal/project"
	"github.com/harborview/bosun/internal/update"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a diagnostic runner with the default checks. startDir is
// where project root discovery begins, normally the working directory.
func New(cfg *config.Config, startDir string) *Runner {
	r := &Runner{}

	r.AddCheck("Shell", checkShell(cfg.Shell()))
	r.AddCheck("Project Root", checkProjectRoot(startDir))
	r.AddCheck("Env File", checkEnvFile(cfg, startDir))
	r.AddCheck("Service Manifest", checkManifest(startDir))
	r.AddCheck("Node.js Toolchain", checkNodeToolchain)
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// checkShell verifies the configured shell resolves in PATH.
func checkShell(shell string) Check {
	return func(_ context.Context) Result {
		if shell == "" {
			shell = launch.DefaultShell
		}

		path, err := exec.LookPath(shell)
		if err != nil {
			return Result{
				Status:  StatusFail,
				Message: fmt.Sprintf("%s not found in PATH", shell),
				Detail:  "Set 'run.shell' to an installed shell with 'bosun config set run.shell <shell>'",
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s at %s", shell, path),
		}
	}
}

// checkProjectRoot verifies a project root is discoverable from startDir.
func checkProjectRoot(startDir string) Check {
	return func(_ context.Context) Result {
		root, err := project.Find(startDir)
		if err != nil || root.Marker == "" {
			return Result{
				Status:  StatusWarn,
				Message: "No project root found",
				Detail:  fmt.Sprintf("Create a %s, .env, or git repository above %s", project.ManifestName, startDir),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s (marker: %s)", root.Dir, root.Marker),
		}
	}
}

// checkEnvFile parses the root env file under the configured policy.
func checkEnvFile(cfg *config.Config, startDir string) Check {
	return func(_ context.Context) Result {
		root, err := project.Find(startDir)
		if err != nil || root.Marker == "" {
			return Result{
				Status:  StatusWarn,
				Message: "Skipped (no project root)",
			}
		}

		path := root.EnvFile(cfg.EnvFile())

		vars, found, err := envfile.Load(path, envfile.Options{Strict: cfg.StrictEnv()})
		if err != nil {
			return Result{
				Status:  StatusFail,
				Message: path,
				Detail:  err.Error(),
			}
		}

		if !found {
			return Result{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s (missing)", path),
				Detail:  "Commands launch with the shell environment only",
			}
		}

		if len(vars) == 0 {
			return Result{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s (no variables)", path),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s (%d variables)", path, len(vars)),
		}
	}
}

// checkManifest validates the service manifest when one exists.
func checkManifest(startDir string) Check {
	return func(_ context.Context) Result {
		root, err := project.Find(startDir)
		if err != nil || root.Marker == "" {
			return Result{
				Status:  StatusWarn,
				Message: "Skipped (no project root)",
			}
		}

		manifest, err := project.LoadManifest(root)
		if err != nil {
			return Result{
				Status:  StatusFail,
				Message: root.ManifestFile(),
				Detail:  err.Error(),
			}
		}

		names := manifest.ServiceNames()
		if len(names) == 0 {
			return Result{
				Status:  StatusWarn,
				Message: "No services declared",
				Detail:  fmt.Sprintf("Add services to %s to use 'bosun service'", project.ManifestName),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%d services: %s", len(names), strings.Join(names, ", ")),
		}
	}
}

// checkNodeToolchain verifies node and npm are available for the web
// frontends bosun wraps.
func checkNodeToolchain(ctx context.Context) Result {
	if _, err := exec.LookPath("node"); err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "node not found in PATH",
			Detail:  "Install Node.js to run the frontend dev servers",
		}
	}

	cmd := exec.CommandContext(ctx, "node", "--version")

	out, err := cmd.Output()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "node found but version unknown",
		}
	}

	version := strings.TrimSpace(string(out))

	if _, err := exec.LookPath("npm"); err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("node %s, npm missing", version),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("node %s with npm", version),
	}
}

// checkCLIVersion checks the CLI version against the latest release.
func checkCLIVersion(ctx context.Context) Result {
	current := buildinfo.Version

	if current == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "Development build (version check skipped)",
		}
	}

	if update.IsDisabled() {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("v%s (update checks disabled)", current),
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	updater, err := update.NewUpdater()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	info, err := updater.CheckLatest(checkCtx, current)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	if info.UpdateAvailable {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (v%s available)", current, info.LatestVersion),
			Detail:  "Run 'bosun update' to update",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (latest)", current),
	}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		symbol := r.Status.Symbol()
		padding := maxNameLen - len(r.Name) + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", symbol, len(r.Name)+padding, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "✓" // ✓
	xMark       = "✗" // ✗
	warningMark = "⚠" // ⚠
)
