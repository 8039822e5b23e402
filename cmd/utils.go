package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/solink/config"
	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"github.com/crytic/solink/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs will return which flags are valid for dynamic completion for a command. Positional arguments are
// completed as file paths.
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Include the "--" prefix so the completion is not mistaken for a positional argument
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveDefault
}

// loadProjectConfig reads the project configuration for a command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (solink.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If solink.json can't be found, use the default project configuration.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `solink.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Debug("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		return config.ReadProjectConfigFromFile(configPath)
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, errors.WithStack(existenceError)
	}

	// Possibility #3: --config flag was not used and solink.json was not found, so use the default project config
	cmdLogger.Debug("Unable to find the config file at ", configPath, ", using the default project configuration")
	return config.GetDefaultProjectConfig(), nil
}

// configureLogging applies the persistent logging flags to the logging configuration, then configures the global
// logger and the cmd logger from it. Returns a function releasing the log file, if one was opened.
func configureLogging(cmd *cobra.Command, loggingConfig *config.LoggingConfig) (func(), error) {
	if cmd.Flags().Changed("log-level") {
		levelStr, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return nil, err
		}
		level, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", levelStr)
		}
		loggingConfig.Level = level
	}
	if cmd.Flags().Changed("no-color") {
		noColor, err := cmd.Flags().GetBool("no-color")
		if err != nil {
			return nil, err
		}
		loggingConfig.NoColor = noColor
	}

	if loggingConfig.NoColor {
		colors.DisableColor()
		cmdLogger.RemoveWriter(os.Stderr, logging.UNSTRUCTURED, true)
		cmdLogger.AddWriter(os.Stderr, logging.UNSTRUCTURED, false)
	}
	cmdLogger.SetLevel(loggingConfig.Level)

	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	logging.GlobalLogger.AddWriter(os.Stderr, logging.UNSTRUCTURED, !loggingConfig.NoColor)

	// Structured log files are only kept if a log directory is configured
	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}
	file, err := utils.CreateFile(loggingConfig.LogDirectory, fmt.Sprintf("solink-%d.log", time.Now().Unix()))
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED, false)
	cmdLogger.AddWriter(file, logging.STRUCTURED, false)
	return func() {
		logging.GlobalLogger.RemoveWriter(file, logging.STRUCTURED, false)
		cmdLogger.RemoveWriter(file, logging.STRUCTURED, false)
		_ = file.Close()
	}, nil
}
