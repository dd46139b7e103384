package cmd

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	verboseFlag bool
	envFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "stacke2e",
	Short: "End-to-end test support for the dashboard and backend.",
	Long: `stacke2e checks the environment an end-to-end run needs and
fetches endpoints the way the test suite does, printing the
normalized response (status, headers, body).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			rootCmd.PrintErrln("Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("STACKE2E_VERBOSE", false), "Log requests to stderr (env: STACKE2E_VERBOSE)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", getEnvString("STACKE2E_ENV_FILE", ""), "Path to .env file exported before loading (env: STACKE2E_ENV_FILE)")

	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	if !verboseFlag {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
