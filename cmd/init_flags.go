package cmd

import (
	"github.com/crytic/solink/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Artifact to link
	initCmd.Flags().String("artifact", "", "path to the contract artifact to link")

	// Autolink file
	initCmd.Flags().String("autolink", "", "path to a crytic-export combined_solc.link file to read library addresses from")

	// RPC endpoint
	initCmd.Flags().String("rpc", "", "JSON-RPC endpoint of the node to detect the chain of")

	// Overwrite without prompting
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration file without prompting")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the
// init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	for flagName, field := range map[string]*string{
		"artifact": &projectConfig.Artifact,
		"autolink": &projectConfig.AutolinkFile,
		"rpc":      &projectConfig.Network.RPCURL,
	} {
		if !cmd.Flags().Changed(flagName) {
			continue
		}
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return err
		}
		*field = value
	}
	return nil
}
