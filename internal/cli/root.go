package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doxnav",
		Short: "Browse and serve Doxygen navigation trees",
		Long: `Doxnav reads the navigation data Doxygen writes next to its HTML
output (navtreedata.js, navtreeindex*.js and the lazily loaded fragment
scripts) and answers the questions a sidebar needs: what the tree looks
like, which branch a page lives under, and what a collapsed node expands to.

Settings come from .doxnav.yaml, DOXNAV_* environment variables and flags.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("dir", "", "Doxygen HTML output directory (default: html)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./.doxnav.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("base-url", "", "Fetch fragments from this published site; navtreedata.js and the page index are still read from --dir")

	// Inspect Commands
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the navigation tree in pre-order",
		Args:  cobra.NoArgs,
		RunE:  RunTree,
	}
	treeCmd.Flags().Bool("expand", false, "Load every deferred fragment before printing")
	treeCmd.Flags().String("format", string(FormatText), "Output format: text|json|jsonl|yaml")
	treeCmd.Flags().String("page", "", "Mark the branch leading to this page")
	treeCmd.Flags().Int("depth", 0, "Stop below this depth (0: unlimited)")

	resolveCmd := &cobra.Command{
		Use:   "resolve <page>",
		Short: "Show the branch a page synchronises to",
		Args:  cobra.ExactArgs(1),
		RunE:  RunResolve,
	}
	resolveCmd.Flags().Bool("json", false, "Print machine-readable path")

	expandCmd := &cobra.Command{
		Use:   "expand <sentinel|link>",
		Short: "Load one deferred node and print its subtree",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExpand,
	}
	expandCmd.Flags().Bool("json", false, "Print machine-readable subtree")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find navigation entries by title or link",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunSearch,
	}
	searchCmd.Flags().Bool("expand", false, "Load every deferred fragment before searching")
	searchCmd.Flags().Int("limit", 10, "Maximum number of results")
	searchCmd.Flags().Bool("json", false, "Print machine-readable results")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Expand every fragment and report missing or malformed ones",
		Args:  cobra.NoArgs,
		RunE:  RunCheck,
	}
	checkCmd.Flags().Bool("json", false, "Print machine-readable check output")

	// Publish Commands
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sidebar and navigation API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  RunServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default: :8087)")
	serveCmd.Flags().Bool("watch", false, "Reload when navigation scripts change")

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the HTML sidebar to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExport,
	}
	exportCmd.Flags().String("page", "", "Expand the branch leading to this page")

	// Additional Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .doxnav.yaml in the current directory",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doxnav %s\n", version)
		},
	}

	rootCmd.AddCommand(
		treeCmd,
		resolveCmd,
		expandCmd,
		searchCmd,
		checkCmd,
		serveCmd,
		exportCmd,
		initCmd,
		versionCmd,
	)

	return rootCmd
}
