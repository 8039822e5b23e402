package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/solink/cmd/exitcodes"
	"github.com/crytic/solink/compilation"
	"github.com/crytic/solink/compilation/types"
	"github.com/crytic/solink/config"
	"github.com/crytic/solink/linking"
	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"github.com/crytic/solink/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

// linkCmd represents the command provider for linking
var linkCmd = &cobra.Command{
	Use:   "link [artifact]",
	Short: "Links library addresses into a contract artifact's bytecode",
	Long: `Links library addresses into a contract artifact's bytecode.

The artifact may be a Hardhat artifact or a Foundry/solc output file. Library addresses are taken from the project
configuration, an optional autolink file and the --library flags, in increasing order of precedence.`,
	Args:              cmdValidateLinkArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunLink,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// linkOutput describes the JSON document written when both init and deployed bytecode are linked.
type linkOutput struct {
	ContractName     string `json:"contractName"`
	SourceName       string `json:"sourceName,omitempty"`
	Bytecode         string `json:"bytecode"`
	DeployedBytecode string `json:"deployedBytecode"`
}

func init() {
	// Add all the flags allowed for the link command
	err := addLinkFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the link command", err)
	}

	// Add the link command and its associated flags to the root command
	rootCmd.AddCommand(linkCmd)
}

// cmdValidateLinkArgs makes sure that at most one artifact is provided to the link command
func cmdValidateLinkArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		err = fmt.Errorf("link accepts at most 1 artifact argument")
		cmdLogger.Error("Failed to validate args to the link command", err)
		return err
	}
	return nil
}

// cmdRunLink executes the CLI link command.
func cmdRunLink(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the link command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithLinkFlags(cmd, args, projectConfig)
	if err == nil {
		err = projectConfig.Validate()
	}
	if err != nil {
		cmdLogger.Error("Failed to run the link command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLogs, err := configureLogging(cmd, &projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the link command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogs()

	if projectConfig.Artifact == "" {
		err = errors.New("no artifact was provided, pass one as an argument or set it in the project configuration")
		cmdLogger.Error("Failed to run the link command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	artifact, err := types.ReadArtifactFromFile(projectConfig.Artifact)
	if err != nil {
		cmdLogger.Error("Failed to read the artifact", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Merge the autolinked addresses with the configured ones
	var autolinkConfig *config.AutolinkConfig
	if projectConfig.AutolinkFile != "" {
		autolinkConfig, err = config.ReadAutolinkConfig(projectConfig.AutolinkFile)
		if err != nil {
			cmdLogger.Error("Failed to read the autolink file", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}
	libraries := projectConfig.LibraryMapping(autolinkConfig)

	if projectConfig.CacheDirectory != "" {
		compilation.NotifyArtifactHashStatus(artifact, libraries, projectConfig.CacheDirectory, cmdLogger)
	}

	linkLogger := logging.GlobalLogger.NewSubLogger("module", logging.LINKING_SERVICE)
	bytecode, err := linkArtifact(artifact, libraries, linkLogger)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeLinkError)
	}

	output := bytecode
	if projectConfig.LinkDeployedBytecode {
		deployedBytecode := ""
		if artifact.HasDeployedBytecode() {
			// Runtime code may need fewer libraries than the init code, e.g. when a library is only used in a constructor
			deployedArtifact := artifact.DeployedArtifact()
			deployedLibraries := linking.SelectLibrariesForLinkReferences(deployedArtifact.LinkReferences, libraries)
			deployedBytecode, err = linkArtifact(deployedArtifact, deployedLibraries, linkLogger)
			if err != nil {
				return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeLinkError)
			}
		} else {
			cmdLogger.Warn("The artifact ", colors.Bold, artifact.ContractName, colors.Reset, " has no deployed bytecode")
		}

		b, err := json.MarshalIndent(linkOutput{
			ContractName:     artifact.ContractName,
			SourceName:       artifact.SourceName,
			Bytecode:         bytecode,
			DeployedBytecode: deployedBytecode,
		}, "", "\t")
		if err != nil {
			cmdLogger.Error("Failed to run the link command", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		output = string(b)
	}

	// Write the result to the output file, or stdout if none is set
	if projectConfig.OutputPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	} else {
		err = utils.WriteFile(projectConfig.OutputPath, []byte(output+"\n"))
		if err == nil {
			cmdLogger.Info("Linked bytecode written to: ", colors.Bold, projectConfig.OutputPath, colors.Reset)
		}
	}
	if err != nil {
		cmdLogger.Error("Failed to write the linked bytecode", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return nil
}

// linkArtifact links the artifact's bytecode with the provided libraries, logging the outcome.
func linkArtifact(artifact *types.Artifact, libraries map[string]string, logger *logging.Logger) (string, error) {
	bytecode, err := linking.ResolveBytecodeWithLinkedLibraries(artifact, libraries)
	if err != nil {
		logger.Error("Failed to link ", colors.Bold, artifact.ContractName, colors.Reset, err)
		return "", err
	}

	for _, library := range linking.GetNeededLibraries(artifact.LinkReferences) {
		refs := artifact.LinkReferences[library.SourceName][library.LibraryName]
		logger.Debug("Linked ", colors.Bold, library.FullyQualifiedName(), colors.Reset, " into ", len(refs), " region(s)")
	}

	// Placeholders outside the link references were not produced by the compiler for this artifact
	if placeholders := types.ParseBytecodeForPlaceholders(bytecode); len(placeholders) > 0 {
		remaining := maps.Keys(placeholders)
		slices.Sort(remaining)
		logger.Warn("The linked bytecode of ", colors.Bold, artifact.ContractName, colors.Reset,
			" still contains library placeholders: ", remaining)
	} else if metadata := types.ExtractContractMetadata(common.FromHex(bytecode)); metadata != nil {
		if solcVersion := metadata.ExtractSolcVersion(); solcVersion != nil {
			logger.Info("Linked ", colors.Bold, artifact.ContractName, colors.Reset, " (solc ", solcVersion.String(), ")")
		}
	}
	return bytecode, nil
}
