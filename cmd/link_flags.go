package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/solink/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// addLinkFlags adds the various flags for the link command
func addLinkFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	linkCmd.Flags().SortFlags = false

	// Config file
	linkCmd.Flags().String("config", "", "path to config file")

	// Library addresses
	linkCmd.Flags().StringArrayP("library", "l", []string{},
		"library address as NAME=ADDRESS, where NAME is a short (LibFoo) or fully-qualified (contracts/Foo.sol:LibFoo) library name. May be repeated")

	// Autolink file
	linkCmd.Flags().String("autolink", "", "path to a crytic-export combined_solc.link file to read library addresses from")

	// Output path
	linkCmd.Flags().StringP("out", "o", "", "output path for the linked bytecode (default is stdout)")

	// Deployed bytecode
	linkCmd.Flags().Bool("deployed", false,
		fmt.Sprintf("also link the deployed (runtime) bytecode (unless a config file is provided, default is %t)", defaultConfig.LinkDeployedBytecode))

	// Cache directory
	linkCmd.Flags().String("cache-dir", "", "directory to persist the hash of the last linked artifact in")
	return nil
}

// updateProjectConfigWithLinkFlags will update the given projectConfig with any CLI arguments that were provided to the
// link command
func updateProjectConfigWithLinkFlags(cmd *cobra.Command, args []string, projectConfig *config.ProjectConfig) error {
	// The positional artifact argument takes precedence over the config file
	if len(args) == 1 {
		projectConfig.Artifact = args[0]
	}

	if cmd.Flags().Changed("library") {
		libraryArgs, err := cmd.Flags().GetStringArray("library")
		if err != nil {
			return err
		}
		if projectConfig.Libraries == nil {
			projectConfig.Libraries = make(map[string]string)
		}
		for _, libraryArg := range libraryArgs {
			name, address, err := parseLibraryFlag(libraryArg)
			if err != nil {
				return err
			}
			projectConfig.Libraries[name] = address
		}
	}

	if cmd.Flags().Changed("autolink") {
		autolinkFile, err := cmd.Flags().GetString("autolink")
		if err != nil {
			return err
		}
		projectConfig.AutolinkFile = autolinkFile
	}

	if cmd.Flags().Changed("out") {
		outputPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		projectConfig.OutputPath = outputPath
	}

	if cmd.Flags().Changed("deployed") {
		deployed, err := cmd.Flags().GetBool("deployed")
		if err != nil {
			return err
		}
		projectConfig.LinkDeployedBytecode = deployed
	}

	return updateCacheDirectory(cmd, projectConfig)
}

// updateCacheDirectory will update the cache directory in the projectConfig if the --cache-dir flag is used in the
// command
func updateCacheDirectory(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if cmd.Flags().Changed("cache-dir") {
		cacheDirectory, err := cmd.Flags().GetString("cache-dir")
		if err != nil {
			return err
		}
		projectConfig.CacheDirectory = cacheDirectory
	}
	return nil
}

// parseLibraryFlag splits a NAME=ADDRESS library flag value. The address is not validated here, so every malformed
// address can be reported together by the linker.
func parseLibraryFlag(value string) (string, string, error) {
	name, address, found := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return "", "", errors.Errorf("invalid library %q, expected NAME=ADDRESS", value)
	}
	return name, strings.TrimSpace(address), nil
}
