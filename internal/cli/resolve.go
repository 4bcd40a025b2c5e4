package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/pkg/resolver"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var (
		opts  resolver.Options
		printContent bool
	)

	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Locate a resource",
		Long: `Locate a resource by name and show where it was found.

A name may be a local file, an http(s) URL, an archive entry such as
models.zip!/data/ball.xml, or a path below one of the search paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], opts, printContent)
		},
	}

	cmd.Flags().StringVar(&opts.BasePath, "base", "", "base path the name is relative to")
	cmd.Flags().BoolVar(&opts.SkipFiles, "no-files", false, "skip the local file lookup")
	cmd.Flags().BoolVar(&opts.AllowArchiveURLs, "archive-urls", false, "open archive URLs as plain URLs")
	cmd.Flags().BoolVar(&printContent, "print", false, "write the resource content to stdout")

	return cmd
}

func runResolve(cmd *cobra.Command, name string, opts resolver.Options, printContent bool) error {
	r, _, err := loadResolver()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, err := r.Resolve(ctx, name, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if printContent {
		rc, err := res.Open(ctx)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", res.Path(), err)
		}
		defer func() { _ = rc.Close() }()
		_, err = io.Copy(out, rc)
		return err
	}

	contentType, err := res.ContentType(ctx)
	if err != nil {
		contentType = "unknown"
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tabWriter, "Path:\t%s\n", res.Path())
	_, _ = fmt.Fprintf(tabWriter, "Kind:\t%s\n", res.Kind())
	if file := res.File(); file != "" {
		_, _ = fmt.Fprintf(tabWriter, "File:\t%s\n", file)
	}
	_, _ = fmt.Fprintf(tabWriter, "Type:\t%s\n", contentType)
	return tabWriter.Flush()
}
