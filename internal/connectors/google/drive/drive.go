// Package drive is a facade over the Google Drive v3 API that lists, exports,
// uploads and downloads files against the workspace.
package drive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// fallbackMimeType is used for uploads whose type cannot be sniffed.
const fallbackMimeType = "text/plain"

// PageSize is the page size for list requests.
const PageSize = 100

// ListFilesParams filters ListFiles.
type ListFilesParams struct {
	// Parents restricts results to files inside any of these folder IDs.
	Parents []string
}

// ExportParams configures Export.
type ExportParams struct {
	FileID   string
	MimeType string
	// Filename is the workspace-relative destination.
	Filename string
}

// UploadParams configures Upload.
type UploadParams struct {
	// Filename is the workspace-relative source.
	Filename string
	Parents  []string
}

// DownloadParams configures Download.
type DownloadParams struct {
	FileID string
	// Filename defaults to the file's name on Drive.
	Filename string
}

// Drive wraps a drive.Service.
type Drive struct {
	svc     *drive.Service
	files   *files.Files
	limiter *google.RateLimiter
}

// New creates a Drive facade writing to and reading from f.
func New(svc *drive.Service, f *files.Files) *Drive {
	return &Drive{
		svc:     svc,
		files:   f,
		limiter: google.NewRateLimiter(google.ServiceDrive),
	}
}

// ParentsQuery builds the search query matching files in any of parents,
// e.g. ("a" in parents or "b" in parents).
func ParentsQuery(parents []string) string {
	if len(parents) == 0 {
		return ""
	}
	clauses := make([]string, len(parents))
	for i, p := range parents {
		clauses[i] = fmt.Sprintf("%q in parents", p)
	}
	return "(" + strings.Join(clauses, " or ") + ")"
}

// ListFiles returns every file matching params.
func (d *Drive) ListFiles(ctx context.Context, params ListFilesParams) ([]*drive.File, error) {
	logger.Debug("Google.Drive.listFiles parents=%v", params.Parents)

	call := d.svc.Files.List().
		PageSize(PageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	if q := ParentsQuery(params.Parents); q != "" {
		call = call.Q(q)
	}

	var out []*drive.File
	err := d.limiter.Do(ctx, func() error {
		return call.Pages(ctx, func(page *drive.FileList) error {
			out = append(out, page.Files...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return out, nil
}

// Export converts a Google Workspace file to MimeType and saves it.
func (d *Drive) Export(ctx context.Context, params ExportParams) error {
	logger.Debug("Google.Drive.export %s as %s -> %s", params.FileID, params.MimeType, params.Filename)
	if params.FileID == "" || params.MimeType == "" || params.Filename == "" {
		return fmt.Errorf("export needs file id, mime type and filename: %w", domain.ErrInvalidInput)
	}

	return d.limiter.Do(ctx, func() error {
		res, err := d.svc.Files.Export(params.FileID, params.MimeType).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer res.Body.Close()
		return d.save(params.Filename, res.Body)
	})
}

// Upload creates a Drive file from a workspace file and returns its ID.
// The content type is sniffed from the file, falling back to text/plain.
func (d *Drive) Upload(ctx context.Context, params UploadParams) (string, error) {
	logger.Debug("Google.Drive.upload %s parents=%v", params.Filename, params.Parents)

	mimeType, err := d.files.MimeType(params.Filename)
	if err != nil || mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = fallbackMimeType
	}

	var id string
	err = d.limiter.Do(ctx, func() error {
		src, err := d.files.Open(params.Filename)
		if err != nil {
			return err
		}
		defer src.Close()

		created, err := d.svc.Files.Create(&drive.File{
			Name:    filepath.Base(params.Filename),
			Parents: params.Parents,
		}).
			Media(src, googleapi.ContentType(mimeType)).
			SupportsAllDrives(true).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		id = created.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", params.Filename, err)
	}
	return id, nil
}

// Download saves a Drive file's content into the workspace and returns the
// name it was saved under.
func (d *Drive) Download(ctx context.Context, params DownloadParams) (string, error) {
	logger.Debug("Google.Drive.download %s -> %q", params.FileID, params.Filename)
	if params.FileID == "" {
		return "", fmt.Errorf("download needs a file id: %w", domain.ErrInvalidInput)
	}

	name := params.Filename
	if name == "" {
		err := d.limiter.Do(ctx, func() error {
			meta, err := d.svc.Files.Get(params.FileID).Fields("name").SupportsAllDrives(true).Context(ctx).Do()
			if err != nil {
				return err
			}
			name = meta.Name
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("download %s: %w", params.FileID, err)
		}
	}

	err := d.limiter.Do(ctx, func() error {
		res, err := d.svc.Files.Get(params.FileID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer res.Body.Close()
		return d.save(name, res.Body)
	})
	if err != nil {
		return "", fmt.Errorf("download %s: %w", params.FileID, err)
	}
	return name, nil
}

func (d *Drive) save(name string, r io.Reader) error {
	out, err := d.files.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
