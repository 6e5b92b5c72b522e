package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/connectors/google/drive"
)

var (
	driveParents []string
	driveOutput  string
	driveMime    string
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Move files between the workspace and Google Drive",
}

var driveLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List Drive files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDrive(cmd.Context())
		if err != nil {
			return err
		}
		list, err := d.ListFiles(cmd.Context(), drive.ListFilesParams{Parents: driveParents})
		if err != nil {
			return err
		}
		for _, f := range list {
			cmd.Printf("%s\t%s\t%s\n", f.Id, f.MimeType, f.Name)
		}
		return nil
	},
}

var driveUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a workspace file and print its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDrive(cmd.Context())
		if err != nil {
			return err
		}
		id, err := d.Upload(cmd.Context(), drive.UploadParams{Filename: args[0], Parents: driveParents})
		if err != nil {
			return err
		}
		cmd.Println(id)
		return nil
	},
}

var driveDownloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file into the workspace and print its name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDrive(cmd.Context())
		if err != nil {
			return err
		}
		name, err := d.Download(cmd.Context(), drive.DownloadParams{FileID: args[0], Filename: driveOutput})
		if err != nil {
			return err
		}
		cmd.Println(name)
		return nil
	},
}

var driveExportCmd = &cobra.Command{
	Use:   "export <file-id> <file>",
	Short: "Export a Google Docs file to the workspace",
	Long:  `Converts a Docs, Sheets or Slides file to --mime (default PDF) and writes it to the workspace.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDrive(cmd.Context())
		if err != nil {
			return err
		}
		return d.Export(cmd.Context(), drive.ExportParams{FileID: args[0], MimeType: driveMime, Filename: args[1]})
	},
}

func init() {
	driveLsCmd.Flags().StringSliceVar(&driveParents, "parent", nil, "restrict to these folder IDs")
	driveUploadCmd.Flags().StringSliceVar(&driveParents, "parent", nil, "folder IDs to upload into")
	driveDownloadCmd.Flags().StringVarP(&driveOutput, "output", "o", "", "workspace file name (default Drive name)")
	driveExportCmd.Flags().StringVar(&driveMime, "mime", "application/pdf", "export MIME type")
	driveCmd.AddCommand(driveLsCmd)
	driveCmd.AddCommand(driveUploadCmd)
	driveCmd.AddCommand(driveDownloadCmd)
	driveCmd.AddCommand(driveExportCmd)
	rootCmd.AddCommand(driveCmd)
}

func newDrive(ctx context.Context) (*drive.Drive, error) {
	ts, err := googleTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewDriveService(ctx, ts, googleClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return drive.New(svc, workspace()), nil
}
