package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/errors"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the resource cache",
		Long:  "Show, move, inspect and clear the persistent cache of downloaded resources",
	}

	cmd.AddCommand(
		newCacheDirCmd(),
		newCacheSetCmd(),
		newCacheClearCmd(),
		newCacheInfoCmd(),
		newCachePathCmd(),
	)

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), op.GetDirectory())
			return nil
		},
	}
}

func newCacheSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set DIR",
		Short: "Move the cache",
		Long: `Move the cache to DIR and record it in the configuration file.

Host directories are copied to the new location and removed from the old
one; directories that could not be copied stay where they were.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheSet(cmd, args[0])
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var search bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache",
		Long:  "Remove every cached host directory to free up disk space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			msg, err := op.Clear(search)
			if msg != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&search, "search", false, "also remove the search records")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size of the cache and of each cached host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			info, err := op.GetInfo()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func newCachePathCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "path URL",
		Short: "Show the cache address of a URL",
		Long:  "Display where a downloaded copy of URL is stored in the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), op.Address(args[0], name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "file name in the cache")

	return cmd
}

func runCacheSet(cmd *cobra.Command, dir string) error {
	r, cfg, err := loadResolver()
	if err != nil {
		return err
	}

	msg, err := cache.NewOperation(r.Cache()).SetDirectory(cmd.Context(), dir)
	if msg != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	if err != nil && !errors.Is(err, errors.ErrMigrationIncomplete) {
		return err
	}

	cfg.Settings.CacheDir = r.CacheRoot()
	if configPath := getConfigPath(); configPath != "" {
		if saveErr := cfg.SaveConfig(configPath); saveErr != nil {
			return fmt.Errorf("failed to save configuration: %w", saveErr)
		}
		logger.Debug("Configuration updated", logger.Fields{"cache_dir": cfg.Settings.CacheDir})
	}
	return err
}

func loadCacheOperation() (*cache.Operation, error) {
	r, _, err := loadResolver()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(r.Cache()), nil
}
