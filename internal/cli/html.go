package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/pkg/htmlcache"
)

// NewHTMLCmd creates the html command with subcommands.
func NewHTMLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "html",
		Short: "Work with HTML pages",
		Long:  "Inspect HTML pages and copy them with their images and stylesheet into the cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "copy URL",
			Short: "Copy a page into the cache",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, _, err := loadResolver()
				if err != nil {
					return err
				}
				path, err := htmlcache.CopyToCache(cmd.Context(), r, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "title URL",
			Short: "Show the title of a page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, _, err := loadResolver()
				if err != nil {
					return err
				}
				code, err := htmlcache.GetHTMLCode(cmd.Context(), r, args[0])
				if err != nil {
					return err
				}
				title, _ := htmlcache.TitleFromHTML(code)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), title)
				return nil
			},
		},
	)

	return cmd
}
