// Package archive extracts zip archives into the workspace.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Decompress extracts filename (relative to root) into root and returns the
// written file paths, relative to root, in archive order.
func Decompress(fs afero.Fs, root, filename string) ([]string, error) {
	logger.Debug("Zip.decompress %s", filename)

	f, err := fs.Open(filepath.Join(root, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	var written []string
	for _, entry := range zr.File {
		target, err := safeJoin(root, entry.Name)
		if err != nil {
			return written, err
		}

		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			if err := fs.MkdirAll(target, 0755); err != nil {
				return written, err
			}
			continue
		}

		if err := extract(fs, entry, target); err != nil {
			return written, fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		written = append(written, filepath.ToSlash(entry.Name))
	}

	return written, nil
}

func extract(fs afero.Fs, entry *zip.File, target string) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin rejects entries that would land outside root.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("zip entry %q escapes %s: %w", name, root, domain.ErrInvalidInput)
	}
	return target, nil
}
