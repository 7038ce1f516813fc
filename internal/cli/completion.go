package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/store"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for possible.

Graph and node arguments complete from the configured storage, so
completions reflect the graphs on disk.

To load completions:

Bash:
  $ source <(possible completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ possible completion bash > /etc/bash_completion.d/possible
  # macOS:
  $ possible completion bash > $(brew --prefix)/etc/bash_completion.d/possible

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ possible completion zsh > "${fpath[1]}/_possible"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ possible completion fish | source

  # To load completions for each session, execute once:
  $ possible completion fish > ~/.config/fish/completions/possible.fish

PowerShell:
  PS> possible completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> possible completion powershell > possible.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// =============================================================================
// Dynamic Completion
// =============================================================================

type completionFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// completeGraphArg completes a single graph argument.
func (c *CLI) completeGraphArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeGraphs(cmd, args, toComplete)
}

// completeGraphs completes graph names.
func (c *CLI) completeGraphs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	err := c.completionStore(cmd, func(st *store.Store) error {
		for _, m := range st.Graphs() {
			if strings.HasPrefix(strings.ToLower(m.Name), strings.ToLower(toComplete)) {
				out = append(out, m.Name+"\t"+shortID(m.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeNodes completes node names of the current graph for the first
// n arguments. A negative n completes any position, as flag values do.
func (c *CLI) completeNodes(n int) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if n >= 0 && len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		err := c.completionStore(cmd, func(st *store.Store) error {
			g, err := c.currentGraph(cmd.Context(), st)
			if err != nil {
				return err
			}
			for _, id := range g.NodeIDs() {
				name := g.Nodes[id].Name
				if name != "" && strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
					out = append(out, name+"\t"+shortID(id))
				}
			}
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completionStore loads config and the store for a completion request,
// which runs without the root pre-run hook.
func (c *CLI) completionStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if err := c.loadConfig(true); err != nil {
		return err
	}
	return c.withStore(cmd.Context(), fn)
}

// registerNodeCompletion wires node completion into every subcommand of
// parent whose usage names node arguments, and into the named flags.
func (c *CLI) registerNodeCompletion(parent *cobra.Command) {
	for _, sub := range parent.Commands() {
		if n := strings.Count(sub.Use, "<"); n > 0 && sub.ValidArgsFunction == nil {
			sub.ValidArgsFunction = c.completeNodes(n)
		}
		for _, flag := range []string{"after", "before", "insert-after", "insert-before", "parent"} {
			if sub.Flags().Lookup(flag) != nil {
				_ = sub.RegisterFlagCompletionFunc(flag, c.completeNodes(-1))
			}
		}
	}
}
