package cmd

import (
	"fmt"

	"github.com/crytic/solink/config"
	"github.com/spf13/cobra"
)

// addChainFlags adds the various flags for the chain command
func addChainFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	chainCmd.Flags().SortFlags = false

	// Config file
	chainCmd.Flags().String("config", "", "path to config file")

	// RPC endpoint
	chainCmd.Flags().String("rpc", "", "JSON-RPC endpoint of the node to detect the chain of")

	// Timeout
	chainCmd.Flags().Int("timeout", 0,
		fmt.Sprintf("number of seconds after which detection is aborted (unless a config file is provided, default is %d). 0 means that timeout is not enforced", defaultConfig.Network.Timeout))

	// Cache directory
	chainCmd.Flags().String("cache-dir", "", "directory to persist detected chains in")

	// JSON output
	chainCmd.Flags().Bool("json", false, "print the detected chain as JSON")
	return nil
}

// updateProjectConfigWithChainFlags will update the given projectConfig with any CLI arguments that were provided to
// the chain command
func updateProjectConfigWithChainFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if cmd.Flags().Changed("rpc") {
		rpcURL, err := cmd.Flags().GetString("rpc")
		if err != nil {
			return err
		}
		projectConfig.Network.RPCURL = rpcURL
	}

	if cmd.Flags().Changed("timeout") {
		timeout, err := cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
		projectConfig.Network.Timeout = timeout
	}

	return updateCacheDirectory(cmd, projectConfig)
}
