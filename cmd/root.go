package cmd

import (
	"os"

	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "solink",
	Short:   "A Solidity library linker",
	Long:    "solink resolves and validates library links for compiled Solidity artifacts and patches their bytecode",
	Version: version.GetInfo().Short(),
}

// cmdLogger is the logger that will be used for the cmd package. It writes to stderr so command output on stdout
// stays machine-readable.
var cmdLogger = newCmdLogger()

// newCmdLogger creates the logger used by the cmd package before any project configuration is known.
func newCmdLogger() *logging.Logger {
	logger := logging.NewLogger(zerolog.InfoLevel)
	logger.AddWriter(os.Stderr, logging.UNSTRUCTURED, true)
	return logger.NewSubLogger("module", logging.CLI_SERVICE)
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error), overrides the config file")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored console output")
}

// Execute runs the root command, dispatching to the sub-command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}
