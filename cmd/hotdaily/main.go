package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hotdaily",
		Short: "Daily hot-item reports aggregated from adult video sites",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or $HOTDAILY_CONFIG)")

	root.AddCommand(runCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(sourcesCmd())
	root.AddCommand(picksCmd())
	root.AddCommand(subCmd())
	root.AddCommand(sectionsCmd())

	return root
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler, report worker and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func reportCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build and deliver one report now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(session)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "deliver to one session instead of all subscribers")
	return cmd
}

func fetchCmd() *cobra.Command {
	var (
		section string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "fetch <source-id>",
		Short: "Fetch hot items from one source, bypassing the enabled filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(args[0], section, limit)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "section key (default: the source's first section)")
	cmd.Flags().IntVar(&limit, "limit", 10, "max items to fetch")
	return cmd
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List registered sources and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources()
		},
	}
}

func picksCmd() *cobra.Command {
	var (
		jsonOutput bool
		section    string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "picks",
		Short: "Show pick history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicks(jsonOutput, section, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&section, "section", "", "filter by section")
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows to show")
	return cmd
}

func subCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "sub {on|off|list}",
		Short: "Manage report subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSub(args[0], session)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id (required for on/off)")
	return cmd
}

func sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List report sections and their aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSections()
		},
	}
}
