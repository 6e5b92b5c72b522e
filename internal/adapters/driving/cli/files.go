package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/files"
)

var (
	filesSort      string
	filesDesc      bool
	filesFilesOnly bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect and prepare workspace files",
}

var filesLsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List a workspace directory",
	Long: `Lists a directory relative to the workspace. Names sort naturally and
case-insensitively, so file2 comes before file10.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilesLs,
}

var filesMimeCmd = &cobra.Command{
	Use:   "mime <file>",
	Short: "Print the content type of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mime, err := workspace().MimeType(args[0])
		if err != nil {
			return err
		}
		cmd.Println(mime)
		return nil
	},
}

var filesBOMCmd = &cobra.Command{
	Use:   "bom <file>",
	Short: "Prepend a UTF-8 byte order mark to a file",
	Long:  `Prepends EF BB BF so spreadsheet tools detect UTF-8. Files that already start with a BOM are left alone.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return workspace().AddBOM(args[0])
	},
}

func init() {
	filesLsCmd.Flags().StringVar(&filesSort, "sort", string(files.SortByName), "sort key: name, mtime or size")
	filesLsCmd.Flags().BoolVar(&filesDesc, "desc", false, "sort in descending order")
	filesLsCmd.Flags().BoolVar(&filesFilesOnly, "files-only", false, "omit directories")
	filesCmd.AddCommand(filesLsCmd)
	filesCmd.AddCommand(filesMimeCmd)
	filesCmd.AddCommand(filesBOMCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesLs(cmd *cobra.Command, args []string) error {
	opts := files.ListOptions{SortBy: files.SortKey(filesSort), Order: files.Asc}
	if len(args) > 0 {
		opts.Dir = args[0]
	}
	if filesDesc {
		opts.Order = files.Desc
	}

	list := workspace().List
	if filesFilesOnly {
		list = workspace().ListFiles
	}
	entries, err := list(opts)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		cmd.Println(name)
	}
	return nil
}
