package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/crytic/solink/chain"
	"github.com/crytic/solink/cmd/exitcodes"
	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// chainCmd represents the command provider for chain detection
var chainCmd = &cobra.Command{
	Use:               "chain",
	Short:             "Detects the network a JSON-RPC node is running",
	Long:              `Detects the network a JSON-RPC node is running. Hardhat and Foundry development nodes are told apart even though they share a chain id.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunChain,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the chain command
	err := addChainFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the chain command", err)
	}

	// Add the chain command and its associated flags to the root command
	rootCmd.AddCommand(chainCmd)
}

// cmdRunChain executes the CLI chain command.
func cmdRunChain(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err == nil {
		err = updateProjectConfigWithChainFlags(cmd, projectConfig)
	}
	if err != nil {
		cmdLogger.Error("Failed to run the chain command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLogs, err := configureLogging(cmd, &projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the chain command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogs()

	if projectConfig.Network.RPCURL == "" {
		err = errors.New("no RPC endpoint was provided, pass one with --rpc or set it in the project configuration")
		cmdLogger.Error("Failed to run the chain command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Stop detection on keyboard interrupts, or once the timeout elapses
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if projectConfig.Network.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(projectConfig.Network.Timeout)*time.Second)
		defer cancel()
	}

	detector, err := projectConfig.NewDetector()
	if err != nil {
		cmdLogger.Error("Failed to open the chain cache", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer detector.Close()
	detector.Events.ChainDetected.Subscribe(func(event chain.ChainDetectedEvent) error {
		if event.Source == chain.DetectionSourceCache {
			cmdLogger.Info("Using the cached network of ", colors.Bold, event.Endpoint, colors.Reset)
		}
		return nil
	})

	detected, err := detector.Detect(ctx, projectConfig.Network.RPCURL)
	if err != nil {
		cmdLogger.Error("Failed to detect the chain", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeChainError)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		b, err := json.MarshalIndent(detected, "", "\t")
		if err != nil {
			return exitcodes.NewErrorWithExitCode(errors.WithStack(err), exitcodes.ExitCodeGeneralError)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return err
	}

	buffer := describeChain(detected)
	if projectConfig.Logging.NoColor {
		_, err = fmt.Fprint(cmd.OutOrStdout(), buffer.String())
	} else {
		_, err = fmt.Fprint(cmd.OutOrStdout(), buffer.ColorString())
	}
	return err
}

// describeChain builds a human-readable description of a detected chain.
func describeChain(c *chain.Chain) *logging.LogBuffer {
	buffer := logging.NewLogBuffer()
	buffer.Append(colors.Bold, c.Name, colors.Reset, " (chain id ", c.ID, ", network ", colors.Cyan, c.Network, colors.Reset, ")\n")
	buffer.Append("  Currency: ", c.NativeCurrency.Name, " (", c.NativeCurrency.Symbol, ", ", c.NativeCurrency.Decimals, " decimals)\n")
	switch {
	case c.Development:
		buffer.Append("  Type:     ", colors.Yellow, "development", colors.Reset, "\n")
	case c.Testnet:
		buffer.Append("  Type:     ", colors.Magenta, "testnet", colors.Reset, "\n")
	default:
		buffer.Append("  Type:     ", colors.Green, "mainnet", colors.Reset, "\n")
	}
	return buffer
}
