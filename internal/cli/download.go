package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/osploader/internal/logger"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var (
		name      string
		target    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Download a resource",
		Long: `Download a web resource or archive entry to a file.

Without --target the file goes to its address in the cache; --name renames
it there. An existing file is kept unless --overwrite is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], name, target, overwrite)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "file name in the cache")
	cmd.Flags().StringVar(&target, "target", "", "target file (default: cache address)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	cmd.MarkFlagsMutuallyExclusive("name", "target")

	return cmd
}

func runDownload(cmd *cobra.Command, urlPath, name, target string, overwrite bool) error {
	r, _, err := loadResolver()
	if err != nil {
		return err
	}
	if target == "" && name != "" {
		target = r.Cache().AddressFor(urlPath, name)
	}

	path, err := r.Download(cmd.Context(), urlPath, target, overwrite)
	if err != nil {
		return err
	}

	logger.Debug("Download complete", logger.Fields{"url": urlPath, "target": path})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
