package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

// completionLimit caps dynamic distribution name suggestions.
const completionLimit = 50

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cpanmap.

Bash:
  $ source <(cpanmap completion bash)

Zsh:
  $ cpanmap completion zsh > "${fpath[1]}/_cpanmap"

Fish:
  $ cpanmap completion fish | source

PowerShell:
  PS> cpanmap completion powershell | Out-String | Invoke-Expression

Distribution names complete from the data file given as the first argument.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeDistroNames completes the second positional argument of commands
// shaped "<file> <distribution>" from the data file.
func (c *CLI) completeDistroNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveDefault
	case 1:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := catalog.LoadFile(cmd.Context(), args[0], catalog.LoadOptions{Logger: quietLogger()})
	if err != nil || toComplete == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, d := range cat.SearchPrefix(toComplete, completionLimit) {
		names = append(names, d.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
