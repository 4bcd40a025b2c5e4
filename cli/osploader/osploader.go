package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/internal/cli"
)

var (
	configPath  string
	verbose     bool
	logFormat   string
	searchPaths []string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "osploader",
		Short: "Locate, download and cache simulation resources",
		Long: `osploader resolves resource names to local files, web URLs, archive
entries and scoped application resources, with:
- search paths tried most recent first
- a persistent per-host download cache
- zip, jar and trz extraction`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	cmd.PersistentFlags().StringArrayVarP(&searchPaths, "search-path", "s", nil, "additional search path (repeatable)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogFormat = &logFormat
	cli.SearchPaths = &searchPaths

	cmd.AddCommand(
		cli.NewResolveCmd(),
		cli.NewDownloadCmd(),
		cli.NewUnzipCmd(),
		cli.NewContentsCmd(),
		cli.NewCacheCmd(),
		cli.NewHTMLCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
