package main

import (
	"errors"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/envfile"
	clierrors "github.com/harborview/bosun/internal/errors"
	"github.com/harborview/bosun/internal/output"
)

// EnvReport describes the environment a launched command would receive.
type EnvReport struct {
	EnvFile    string            `json:"env_file"`
	Vars       map[string]string `json:"vars"`
	Overridden []string          `json:"overridden,omitempty"`
}

func newEnvCmd() *cobra.Command {
	var (
		rootDir   string
		envFile   string
		strictEnv bool
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the environment a command would receive",
		Long: `Display the variables the root .env file contributes, resolved the same
way 'bosun run' resolves them. Keys already set in your shell are marked
as overridden: the shell value is what a launched command would see.`,
		Example: `  bosun env
  bosun env --json
  bosun env --env-file .env.staging`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			root, err := resolveRoot(rootDir)
			if err != nil {
				return err
			}

			if envFile == "" {
				envFile = cfg.EnvFile()
			}

			envPath := root.EnvFile(envFile)
			strict := strictEnv || cfg.StrictEnv()

			fileVars, found, err := envfile.Load(envPath, envfile.Options{Strict: strict})
			if err != nil {
				if errors.Is(err, envfile.ErrMalformed) {
					return clierrors.EnvFileInvalid(envPath, err)
				}

				return clierrors.EnvFileUnreadable(envPath, err)
			}

			if !found {
				out.Warning("No env file at %s; commands would receive the shell environment only", envPath)
			}

			report := buildEnvReport(envPath, fileVars, os.Environ())

			if out.JSON {
				return out.PrintJSON(report)
			}

			if !found {
				return nil
			}

			if len(report.Vars) == 0 {
				out.Muted("No variables in %s", envPath)
				return nil
			}

			keys := make([]string, 0, len(report.Vars))
			for key := range report.Vars {
				keys = append(keys, key)
			}

			sort.Strings(keys)

			overridden := make(map[string]bool, len(report.Overridden))
			for _, key := range report.Overridden {
				overridden[key] = true
			}

			for _, key := range keys {
				if overridden[key] {
					out.Print("%s=%s (shell override)\n", key, report.Vars[key])
				} else {
					out.Print("%s=%s\n", key, report.Vars[key])
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file name relative to the project root (default \".env\")")
	cmd.Flags().BoolVar(&strictEnv, "strict-env", false, "Fail on malformed env file lines instead of skipping them")

	return cmd
}

// buildEnvReport resolves each file key against the ambient snapshot the
// way Merge does: ambient values win and are reported as overridden.
func buildEnvReport(envPath string, fileVars envfile.Map, ambient []string) *EnvReport {
	report := &EnvReport{
		EnvFile: envPath,
		Vars:    make(map[string]string, len(fileVars)),
	}

	for key, value := range fileVars {
		if ambientValue, ok := envfile.Lookup(ambient, key); ok {
			report.Vars[key] = ambientValue
			report.Overridden = append(report.Overridden, key)

			continue
		}

		report.Vars[key] = value
	}

	sort.Strings(report.Overridden)

	return report
}
