package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brendan.keane/urlquery/internal/cli"
	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		errors.PresentError(err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Handlers are created after flags are
// parsed so they pick up the configured logger.
func newRootCmd() *cobra.Command {
	log := zerolog.Nop()

	rootCmd := &cobra.Command{
		Use:   "urlq",
		Short: "Parse, build and update URL query strings",
		Long: `urlq splits URLs into a base and a structured query, rebuilds URLs from
structured queries and merges new parameters into existing ones.

Nested parameters use bracket notation by default (filter[color]=red, ids[]=1).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			log = logger.ForComponent(logger.SetupFromFlags(cfg.Verbose, cfg.Debug), "cli")
			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())
	registerFlagCompletions(rootCmd)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:     "parse <url>",
			Short:   "Split a URL into its base and decoded query",
			Example: `  urlq parse 'https://shop.com/list?filter[color]=red&page=2'`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewURLHandler(log).ExecuteParse(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "stringify <url>",
			Short: "Replace the query of a URL with the given parameters",
			Example: `  urlq stringify https://shop.com/list -q page=2 -q tags=a -q tags=b
  urlq stringify https://shop.com/list --json '{"filter":{"color":"red"}}'`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewURLHandler(log).ExecuteStringify(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "update <url>",
			Short: "Merge parameters into the query of a URL",
			Long: `Merge parameters into the query of a URL.

A bare key (-q page) sets the parameter to null, which clears its value.
Use --merge to choose how existing parameters are combined (deep, keep, replace)
and --output url to print the recomposed URL.`,
			Example: `  urlq update 'https://shop.com/list?page=1&color=blue' -q page -q size=m -o url`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewURLHandler(log).ExecuteUpdate(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve parse, stringify and update as MCP tools over stdio",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewMCPHandler(log).Execute(cmd, args)
			},
		},
		newServeCmd(&log),
		generateCompletionCmd(),
	)

	return rootCmd
}

func newServeCmd(log *zerolog.Logger) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Lambda gateway API on a local HTTP listener",
		Long: `Serve POST /parse, /stringify and /update locally, exactly as the
urlq-lambda function answers them behind API Gateway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewServeHandler(*log).Execute(cmd, args)
		},
	}
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	return serveCmd
}

func registerFlagCompletions(cmd *cobra.Command) {
	fixed := map[string][]string{
		"format":       {config.FormatBrackets, config.FormatFlat},
		"array-format": {"brackets", "indices", "repeat", "comma"},
		"merge":        {config.MergeDeep, config.MergeKeep, config.MergeReplace},
		"output":       {config.OutputJSON, config.OutputPretty, config.OutputURL},
	}
	for flag, choices := range fixed {
		if err := cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp)); err != nil {
			panic(fmt.Sprintf("register completion for --%s: %v", flag, err))
		}
	}
}

func generateCompletionCmd() *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  # Load for current session:
  $ source <(urlq completion bash)

  # Load for all sessions (add to ~/.bashrc):
  $ echo 'source <(urlq completion bash)' >> ~/.bashrc

Zsh:

  # Load for current session:
  $ source <(urlq completion zsh)

Fish:

  $ urlq completion fish > ~/.config/fish/completions/urlq.fish

PowerShell:

  PS> urlq completion powershell | Out-String | Invoke-Expression
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return completionCmd
}
