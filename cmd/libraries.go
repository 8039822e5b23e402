package cmd

import (
	"fmt"

	"github.com/crytic/solink/cmd/exitcodes"
	"github.com/crytic/solink/compilation/types"
	"github.com/crytic/solink/linking"
	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// librariesCmd represents the command provider for listing the libraries an artifact needs
var librariesCmd = &cobra.Command{
	Use:               "libraries [artifact]",
	Short:             "Lists the libraries a contract artifact must be linked against",
	Long:              `Lists the libraries a contract artifact must be linked against, with their placeholders and the number of bytecode regions referencing them`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunLibraries,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	librariesCmd.Flags().String("config", "", "path to config file")
	librariesCmd.Flags().Bool("deployed", false, "list the libraries of the deployed (runtime) bytecode instead")

	rootCmd.AddCommand(librariesCmd)
}

// cmdRunLibraries executes the CLI libraries command.
func cmdRunLibraries(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the libraries command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if len(args) == 1 {
		projectConfig.Artifact = args[0]
	}

	closeLogs, err := configureLogging(cmd, &projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the libraries command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogs()

	if projectConfig.Artifact == "" {
		err = errors.New("no artifact was provided, pass one as an argument or set it in the project configuration")
		cmdLogger.Error("Failed to run the libraries command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	artifact, err := types.ReadArtifactFromFile(projectConfig.Artifact)
	if err != nil {
		cmdLogger.Error("Failed to read the artifact", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	deployed, err := cmd.Flags().GetBool("deployed")
	if err != nil {
		return err
	}
	if deployed {
		artifact = artifact.DeployedArtifact()
	}

	buffer := describeNeededLibraries(artifact)
	if projectConfig.Logging.NoColor {
		_, err = fmt.Fprint(cmd.OutOrStdout(), buffer.String())
	} else {
		_, err = fmt.Fprint(cmd.OutOrStdout(), buffer.ColorString())
	}
	return err
}

// describeNeededLibraries builds a listing of the libraries the artifact's bytecode needs, one line per library.
func describeNeededLibraries(artifact *types.Artifact) *logging.LogBuffer {
	buffer := logging.NewLogBuffer()

	neededLibraries := linking.GetNeededLibraries(artifact.LinkReferences)
	if len(neededLibraries) == 0 {
		buffer.Append(colors.Bold, artifact.ContractName, colors.Reset, " does not need any library\n")
		return buffer
	}

	buffer.Append(colors.Bold, artifact.ContractName, colors.Reset, " needs ", len(neededLibraries), " library(ies):\n")
	for _, library := range neededLibraries {
		fqName := library.FullyQualifiedName()
		refs := artifact.LinkReferences[library.SourceName][library.LibraryName]
		placeholder := types.PlaceholderPattern(types.GenerateLibraryPlaceholder(fqName))

		// Regions that no longer hold the placeholder were linked by another tool
		linkedRegions := 0
		for _, ref := range refs {
			if current := types.ReadLinkReference(artifact.Bytecode, ref); current != "" && current != placeholder {
				linkedRegions++
			}
		}

		buffer.Append(colors.BULLET, " ", colors.Bold, fqName, colors.Reset, " ", colors.DarkGray, placeholder, colors.Reset,
			" ", len(refs), " region(s)")
		if linkedRegions > 0 {
			buffer.Append(colors.Yellow, fmt.Sprintf(" (%d already linked)", linkedRegions), colors.Reset)
		}
		buffer.Append("\n")
	}
	return buffer
}
