package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harborview/bosun/internal/config"
	"github.com/harborview/bosun/internal/doctor"
	"github.com/harborview/bosun/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify configuration and environment issues.

Checks performed:
  - Shell availability
  - Project root discovery and env file health
  - Service manifest validity
  - Node.js toolchain presence
  - CLI version against the latest release`,
		Example: `  bosun doctor`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			out.Println("Bosun Doctor")
			out.Println("============")
			out.Println()

			startDir, err := os.Getwd()
			if err != nil {
				startDir = "."
			}

			runner := doctor.New(config.Load(), startDir)
			results := runner.Run(cmd.Context())

			doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

			passed, failed, warnings := doctor.Summary(results)
			out.Println()
			out.Print("%d passed", passed)
			if failed > 0 {
				out.Print(", %d failed", failed)
			}
			if warnings > 0 {
				out.Print(", %d warning(s)", warnings)
			}
			out.Println()

			return nil
		},
	}
}
