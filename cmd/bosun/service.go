package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/envfile"
	clierrors "github.com/harborview/bosun/internal/errors"
	"github.com/harborview/bosun/internal/observability"
	"github.com/harborview/bosun/internal/output"
	"github.com/harborview/bosun/internal/project"
	"github.com/harborview/bosun/internal/service"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage long-running dev services",
		Long: `Start, stop, and inspect the dev services declared in ` + project.ManifestName + `.

Services run detached in their own process group with the merged project
environment applied, output captured to per-service log files under the
project's .bosun directory.`,
	}

	cmd.AddCommand(newServiceStartCmd())
	cmd.AddCommand(newServiceStopCmd())
	cmd.AddCommand(newServiceStatusCmd())
	cmd.AddCommand(newServiceLogsCmd())

	return cmd
}

// serviceContext resolves everything the service subcommands share: the
// project root, the validated manifest, and a manager wired with the
// merged environment.
func serviceContext(ctx context.Context, rootDir string) (*project.Manifest, *service.Manager, error) {
	cfg := config.Load()

	root, err := resolveRoot(rootDir)
	if err != nil {
		return nil, nil, err
	}

	manifest, err := project.LoadManifest(root)
	if err != nil {
		return nil, nil, clierrors.ManifestInvalid(err)
	}

	envPath := root.EnvFile(cfg.EnvFile())

	fileVars, found, err := envfile.Load(envPath, envfile.Options{Strict: cfg.StrictEnv()})
	if err != nil {
		if errors.Is(err, envfile.ErrMalformed) {
			return nil, nil, clierrors.EnvFileInvalid(envPath, err)
		}

		return nil, nil, clierrors.EnvFileUnreadable(envPath, err)
	}

	if !found {
		output.FromContext(ctx).Warning("No env file at %s; services get the shell environment only", envPath)
	}

	mgr := &service.Manager{
		Root:   root,
		Shell:  cfg.Shell(),
		Env:    envfile.Merge(os.Environ(), fileVars),
		Grace:  cfg.GracePeriod(),
		Logger: observability.FromContext(ctx),
	}

	return manifest, mgr, nil
}

// resolveServices expands name arguments, honoring --all.
func resolveServices(manifest *project.Manifest, args []string, all bool) ([]string, error) {
	if all {
		names := manifest.ServiceNames()
		if len(names) == 0 {
			return nil, clierrors.NoServices()
		}

		return names, nil
	}

	if len(args) == 0 {
		return nil, clierrors.NoServices()
	}

	for _, name := range args {
		if _, ok := manifest.Lookup(name); !ok {
			return nil, clierrors.ServiceNotFound(name, manifest.ServiceNames())
		}
	}

	return args, nil
}

func newServiceStartCmd() *cobra.Command {
	var (
		rootDir string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "start [service...]",
		Short: "Start one or more services",
		Long: `Start declared services detached with the merged project environment.

Each service runs in its own process group with stdout and stderr
appended to its log file under the project's .bosun directory.`,
		Example: `  bosun service start web
  bosun service start --all`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			manifest, mgr, err := serviceContext(cmd.Context(), rootDir)
			if err != nil {
				return err
			}

			names, err := resolveServices(manifest, args, all)
			if err != nil {
				return err
			}

			for _, name := range names {
				svc, _ := manifest.Lookup(name)

				pid, err := mgr.Start(name, svc)
				if err != nil {
					if errors.Is(err, service.ErrAlreadyRunning) {
						out.Warning("%s already running (pid %d)", name, pid)
						continue
					}

					return clierrors.ServiceFailed("start", name, err)
				}

				out.Success("%s started (pid %d)", name, pid)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")
	cmd.Flags().BoolVar(&all, "all", false, "Start every declared service")

	return cmd
}

func newServiceStopCmd() *cobra.Command {
	var (
		rootDir string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop one or more services",
		Long: `Stop running services by signaling their process groups.

Each service gets SIGTERM first; anything still alive after the grace
period gets SIGKILL.`,
		Example: `  bosun service stop web
  bosun service stop --all`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			manifest, mgr, err := serviceContext(cmd.Context(), rootDir)
			if err != nil {
				return err
			}

			names, err := resolveServices(manifest, args, all)
			if err != nil {
				return err
			}

			for _, name := range names {
				if err := mgr.Stop(name); err != nil {
					if errors.Is(err, service.ErrNotRunning) {
						out.Muted("%s not running", name)
						continue
					}

					return clierrors.ServiceFailed("stop", name, err)
				}

				out.Success("%s stopped", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")
	cmd.Flags().BoolVar(&all, "all", false, "Stop every declared service")

	return cmd
}

func newServiceStatusCmd() *cobra.Command {
	var rootDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of all declared services",
		Long:  `Display whether each declared service is running and under which PID.`,
		Example: `  bosun service status
  bosun service status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			manifest, mgr, err := serviceContext(cmd.Context(), rootDir)
			if err != nil {
				return err
			}

			names := manifest.ServiceNames()
			if len(names) == 0 {
				return clierrors.NoServices()
			}

			statuses := make([]service.Status, 0, len(names))
			for _, name := range names {
				statuses = append(statuses, mgr.Status(name))
			}

			if out.JSON {
				return out.PrintJSON(statuses)
			}

			for _, st := range statuses {
				if st.Running {
					out.Success("%-12s running (pid %d)", st.Name, st.PID)
				} else {
					out.Muted("%-12s stopped", st.Name)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")

	return cmd
}

func newServiceLogsCmd() *cobra.Command {
	var (
		rootDir string
		lines   int
	)

	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Show recent log output from a service",
		Long:  `Print the trailing lines of a service's captured log file.`,
		Example: `  bosun service logs web
  bosun service logs web -n 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			manifest, mgr, err := serviceContext(cmd.Context(), rootDir)
			if err != nil {
				return err
			}

			if _, ok := manifest.Lookup(name); !ok {
				return clierrors.ServiceNotFound(name, manifest.ServiceNames())
			}

			tail, err := mgr.LogTail(name, lines)
			if err != nil {
				return clierrors.ServiceFailed("read logs for", name, err)
			}

			if len(tail) == 0 {
				out.Muted("No log output for %s", name)
				return nil
			}

			for _, line := range tail {
				out.Println(line)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Project root directory (default: discovered from the working directory)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of log lines to show")

	return cmd
}


