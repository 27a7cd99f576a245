package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/envfile"
	clierrors "github.com/harborview/bosun/internal/errors"
	"github.com/harborview/bosun/internal/launch"
	"github.com/harborview/bosun/internal/observability"
	"github.com/harborview/bosun/internal/output"
	"github.com/harborview/bosun/internal/project"
)

// newSpawner builds the process spawner; tests swap it for a recorder.
var newSpawner = func(shell string) launch.Spawner {
	return &launch.ShellSpawner{Shell: shell}
}

// reraise mirrors a child's signal death onto this process; tests swap it
// for a stub so the test binary survives.
var reraise = launch.Reraise

// frontendToolchains are command-name substrings that indicate a frontend
// dev tool whose local .env file would shadow the canonical root one.
var frontendToolchains = []string{"npm", "pnpm", "yarn", "vite", "next", "webpack", "node"}

func newRunCmd() *cobra.Command {
	var (
		rootDir   string
		envFile   string
		strictEnv bool
		shell     string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command with the project environment applied",
		Long: `Run a command with the root .env file merged into the environment.

The command line is interpreted by a shell, so pipes, globs, and
redirections work as usual; arguments after it are forwarded verbatim.
Variables already set in your shell always win over the .env file. The
child owns stdin, stdout, and stderr, and its exit code (or fatal
signal) becomes bosun's own.`,
		Example: `  bosun run -- npm run dev
  bosun run -- python manage.py runserver
  bosun run --strict-env -- ./scripts/seed-db.sh
  bosun run --env-file .env.staging -- npm run build`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			logger := observability.FromContext(cmd.Context())

			if len(args) == 0 {
				return clierrors.CommandRequired()
			}

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
				out.Warning("No env file at %s; launching with the shell environment only", envPath)
				logger.Warn("env file missing", slog.String("env_file", envPath))
			}

			env := envfile.Merge(os.Environ(), fileVars)

			command, cmdArgs := args[0], args[1:]

			warnLocalEnvFile(out, command, root, envFile, cfg.WarnLocalEnv())

			if shell == "" {
				shell = cfg.Shell()
			}

			logger.Info("launching command",
				slog.String("command", command),
				slog.Int("args", len(cmdArgs)),
				slog.String("env_file", envPath),
				slog.Int("env_file_vars", len(fileVars)),
				slog.String("shell", shell),
			)

			result, err := newSpawner(shell).Spawn(cmd.Context(), &launch.Invocation{
				Command: command,
				Args:    cmdArgs,
				Env:     env,
			})
			if err != nil {
				return clierrors.SpawnFailed(command, err)
			}

			if result.Signaled() {
				logger.Info("command killed by signal", slog.String("signal", result.Signal.String()))

				// Die the same way the child did so our parent sees the
				// real cause; the 128+n code is only the fallback.
				if raiseErr := reraise(result.Signal); raiseErr != nil {
					return &launch.ChildExitError{Code: result.ExitCode}
				}
			}

			if result.ExitCode != 0 {
				return &launch.ChildExitError{Code: result.ExitCode}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file name relative to the project root (default \".env\")")
	cmd.Flags().BoolVar(&strictEnv, "strict-env", false, "Fail on malformed env file lines instead of skipping them")
	cmd.Flags().StringVar(&shell, "shell", "", "Shell used to interpret the command line (default \"sh\")")

	// Everything after the first positional belongs to the child command.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// resolveRoot pins the project root to an explicit directory or discovers
// it from the working directory.
func resolveRoot(rootDir string) (project.Root, error) {
	if rootDir != "" {
		root, err := project.At(rootDir)
		if err != nil {
			return project.Root{}, clierrors.ProjectRootNotFound(rootDir, err)
		}

		return root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return project.Root{}, clierrors.ProjectRootNotFound(".", err)
	}

	root, err := project.Find(cwd)
	if err != nil {
		return project.Root{}, clierrors.ProjectRootNotFound(cwd, err)
	}

	return root, nil
}

// warnLocalEnvFile flags a shadowing .env in the working directory when a
// frontend tool is being launched. Advisory only.
func warnLocalEnvFile(out *output.Writer, command string, root project.Root, envFile string, enabled bool) {
	if !enabled || !isFrontendToolchain(command) {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	localEnv := filepath.Join(cwd, envFile)
	if localEnv == root.EnvFile(envFile) {
		return
	}

	if _, err := os.Stat(localEnv); err != nil {
		return
	}

	out.Warning("Local %s found in %s; the root %s is canonical", envFile, cwd, root.EnvFile(envFile))
	out.Muted("  Local env files risk configuration drift between services")
}

func isFrontendToolchain(command string) bool {
	name := command
	if fields := strings.Fields(command); len(fields) > 0 {
		name = filepath.Base(fields[0])
	}

	for _, tool := range frontendToolchains {
		if strings.Contains(name, tool) {
			return true
		}
	}

	return false
}
