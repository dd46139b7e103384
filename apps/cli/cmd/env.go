package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/stacke2e/packages/core/config"
	"github.com/abdul-hamid-achik/stacke2e/packages/core/env"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect the end-to-end environment",
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every required variable is set",
	Long: `Verify that STACK_DASHBOARD_BASE_URL, STACK_BACKEND_BASE_URL,
STACK_INTERNAL_PROJECT_ID and STACK_INTERNAL_PROJECT_CLIENT_KEY are set
and non-empty. Exits with code 3 when any is missing.

Examples:
  stacke2e env check
  stacke2e env check --env-file .env.test`,
	Args: cobra.NoArgs,
	RunE: envCheckCommand,
}

func init() {
	envCmd.AddCommand(envCheckCmd)
}

func exportEnvFile() error {
	if envFileFlag == "" {
		return nil
	}
	if _, err := env.LoadAndExportDotEnv(envFileFlag); err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	return nil
}

func envCheckCommand(cmd *cobra.Command, args []string) error {
	if err := exportEnvFile(); err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	out := cmd.OutOrStdout()

	var errs []error
	for _, name := range config.RequiredVariables {
		value, err := env.Require(name)
		if err != nil {
			fmt.Fprintf(out, "  %s %v\n", red("✗"), err)
			errs = append(errs, err)
			continue
		}
		secret := name == config.EnvInternalProjectClientKey
		fmt.Fprintf(out, "  %s %s\n", green("✓"), env.Describe(name, value, secret))
	}
	if len(errs) > 0 {
		return &ExitError{Code: ExitConfigError, Err: errors.Join(errs...), Reported: true}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "  %s %v\n", red("✗"), err)
		return &ExitError{Code: ExitConfigError, Err: err, Reported: true}
	}
	return nil
}
