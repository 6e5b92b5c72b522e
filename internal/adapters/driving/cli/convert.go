package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/archive"
	"github.com/custodia-labs/rpa-cli/internal/hash"
	"github.com/custodia-labs/rpa-cli/internal/office/excel"
	"github.com/custodia-labs/rpa-cli/internal/textutil"
)

var unzipCmd = &cobra.Command{
	Use:   "unzip <file>",
	Short: "Extract a zip archive into the workspace",
	Long:  `Extracts every entry of the archive under the workspace and prints the files written.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := archive.Decompress(workspaceFs, settings.WorkspaceDir, args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

var md5Cmd = &cobra.Command{
	Use:   "md5 <text>",
	Short: "Print the MD5 digest of text as lowercase hex",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(hash.MD5(args[0]))
	},
}

var halveCmd = &cobra.Command{
	Use:   "halve <text>",
	Short: "Convert full-width ASCII to half-width",
	Long:  `Maps full-width ASCII and the ideographic space to their half-width forms. Other characters are unchanged.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(textutil.HalveZenkakuASCII(args[0]))
	},
}

var excel2csvCmd = &cobra.Command{
	Use:   "excel2csv <workbook> <sheet>",
	Short: "Export one sheet of a workbook as CSV",
	Long:  `Writes <workbook base>_<sheet>.csv to the workspace and prints its name.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := excel.ExportCSV(workspace(), excel.ExportParams{Filename: args[0], Sheet: args[1]})
		if err != nil {
			return err
		}
		cmd.Println(name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unzipCmd)
	rootCmd.AddCommand(md5Cmd)
	rootCmd.AddCommand(halveCmd)
	rootCmd.AddCommand(excel2csvCmd)
}
