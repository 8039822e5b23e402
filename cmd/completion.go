package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:       "completion bash",
	Short:     "Generate shell completion code for the specified shell (bash)",
	ValidArgs: []string{"bash"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `To load completions:

Bash:

  $ source <(%[1]s completion bash), e.g. source <(solink completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ %[1]s completion bash > /etc/bash_completion.d/%[1]s
  # macOS:
  $ %[1]s completion bash > $(brew --prefix)/etc/bash_completion.d/%[1]s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("unable to generate a bash completion: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
