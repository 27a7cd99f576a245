package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/output"
	"github.com/harborview/bosun/internal/paths"
	"github.com/harborview/bosun/internal/project"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot  string `json:"config_root"`
	StateRoot   string `json:"state_root"`
	ConfigFile  string `json:"config_file"`
	LogFile     string `json:"log_file"`
	UpdateState string `json:"update_state"`
	ProjectRoot string `json:"project_root"`
	EnvFile     string `json:"env_file"`
	Manifest    string `json:"manifest"`
	ServiceDir  string `json:"service_dir"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where bosun stores files",
		Long: `Display all file and directory paths used by bosun.

Useful for debugging, scripting, and understanding where configuration,
state, and per-project service files are stored on this system.`,
		Example: `  bosun paths
  bosun paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			info := resolvePathsInfo()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("Config root:    %s\n", info.ConfigRoot)
			out.Print("State root:     %s\n", info.StateRoot)
			out.Print("\n")
			out.Print("Config file:    %s\n", info.ConfigFile)
			out.Print("Log file:       %s\n", info.LogFile)
			out.Print("Update state:   %s\n", info.UpdateState)
			out.Print("\n")
			out.Print("Project root:   %s\n", info.ProjectRoot)
			out.Print("Env file:       %s\n", info.EnvFile)
			out.Print("Manifest:       %s\n", info.Manifest)
			out.Print("Service dir:    %s\n", info.ServiceDir)

			return nil
		},
	}
}

func resolvePathsInfo() PathsInfo {
	info := PathsInfo{}

	info.ConfigRoot = resolveOrError(paths.ConfigRoot)
	info.StateRoot = resolveOrError(paths.StateRoot)
	info.LogFile = resolveOrError(paths.DefaultLogFile)
	info.UpdateState = resolveOrError(paths.UpdateStateFile)

	if cr := info.ConfigRoot; cr != "" {
		info.ConfigFile = filepath.Join(cr, "config.yaml")
	} else {
		info.ConfigFile = "<error: config root unavailable>"
	}

	cfg := config.Load()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	root, err := project.Find(cwd)
	if err != nil {
		info.ProjectRoot = fmt.Sprintf("<error: %v>", err)
		return info
	}

	info.ProjectRoot = root.Dir
	info.EnvFile = root.EnvFile(cfg.EnvFile())
	info.Manifest = root.ManifestFile()
	info.ServiceDir = root.StateDir()

	return info
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
