package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/pkg/errors"
)

// NewUnzipCmd creates the unzip command.
func NewUnzipCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "unzip URL DIR",
		Short: "Extract an archive",
		Long: `Extract every file of a local or remote zip, jar or trz archive into DIR.

Interrupting the command stops before the next entry and keeps the files
written so far.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnzip(cmd, args[0], args[1], overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing files")

	return cmd
}

// NewContentsCmd creates the contents command.
func NewContentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contents ARCHIVE",
		Short: "List archive entries",
		Long:  "List the file entries of a local or remote archive in sorted order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContents(cmd, args[0])
		},
	}

	return cmd
}

func runUnzip(cmd *cobra.Command, zipURL, dir string, overwrite bool) error {
	r, _, err := loadResolver()
	if err != nil {
		return err
	}

	// The context is not passed down so an interrupt stops between entries.
	ctx := cmd.Context()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.SetCanceled(true)
		case <-done:
		}
	}()

	written, err := r.ExtractZip(context.WithoutCancel(ctx), zipURL, dir, overwrite)
	if err != nil {
		if errors.Is(err, errors.ErrCanceled) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Canceled after %d files\n", len(written))
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d files to %s\n", len(written), dir)
	return nil
}

func runContents(cmd *cobra.Command, zipURL string) error {
	r, _, err := loadResolver()
	if err != nil {
		return err
	}

	names, err := r.Contents(cmd.Context(), zipURL)
	if err != nil {
		return err
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
