// Package files wraps workspace filesystem operations used by automation
// scripts. Every path is resolved relative to the workspace root.
package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// BOM is the UTF-8 byte order mark.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// SortKey selects the field List orders entries by.
type SortKey string

// Sort keys.
const (
	SortByName  SortKey = "name"
	SortByMtime SortKey = "mtime"
	SortBySize  SortKey = "size"
)

// Order is the sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ListOptions configures List.
type ListOptions struct {
	// Dir is relative to the root. Empty means the root itself.
	Dir    string
	SortBy SortKey
	Order  Order
}

// Files performs filesystem operations under a root directory.
type Files struct {
	fs   afero.Fs
	root string
}

// New creates a Files rooted at root on fs.
func New(fs afero.Fs, root string) *Files {
	return &Files{fs: fs, root: root}
}

// Root returns the workspace root.
func (f *Files) Root() string {
	return f.root
}

// Fs returns the underlying filesystem.
func (f *Files) Fs() afero.Fs {
	return f.fs
}

// Path resolves a workspace-relative name. Absolute names are returned as-is.
func (f *Files) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.root, name)
}

// Rename moves src to dst.
func (f *Files) Rename(src, dst string) error {
	logger.Debug("Files.rename %s -> %s", src, dst)
	return f.fs.Rename(f.Path(src), f.Path(dst))
}

// Delete removes a single file.
func (f *Files) Delete(name string) error {
	logger.Debug("Files.delete %s", name)
	return f.fs.Remove(f.Path(name))
}

// RemoveAll removes name and everything below it. Missing paths are not an error.
func (f *Files) RemoveAll(name string) error {
	logger.Debug("Files.removeAll %s", name)
	return f.fs.RemoveAll(f.Path(name))
}

// Write replaces the contents of name, creating parent directories.
func (f *Files) Write(name string, data []byte) error {
	logger.Debug("Files.write %s (%d bytes)", name, len(data))
	p := f.Path(name)
	if err := f.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, p, data, 0644)
}

// Create opens name for writing, truncating it and creating parent directories.
func (f *Files) Create(name string) (afero.File, error) {
	p := f.Path(name)
	if err := f.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, err
	}
	return f.fs.Create(p)
}

// Open opens name for reading.
func (f *Files) Open(name string) (afero.File, error) {
	return f.fs.Open(f.Path(name))
}

// Read returns the contents of name.
func (f *Files) Read(name string) ([]byte, error) {
	logger.Debug("Files.read %s", name)
	return afero.ReadFile(f.fs, f.Path(name))
}

// MakeDir creates dir and any missing parents.
func (f *Files) MakeDir(dir string) error {
	logger.Debug("Files.mkdir %s", dir)
	return f.fs.MkdirAll(f.Path(dir), 0755)
}

// Exists reports whether name exists.
func (f *Files) Exists(name string) (bool, error) {
	return afero.Exists(f.fs, f.Path(name))
}

// IsFile reports whether name exists and is a regular file.
func (f *Files) IsFile(name string) (bool, error) {
	info, err := f.fs.Stat(f.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Stat returns file info for name.
func (f *Files) Stat(name string) (os.FileInfo, error) {
	info, err := f.fs.Stat(f.Path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}
	return info, err
}

// AddBOM prepends a UTF-8 BOM to name. Files that already start with one are
// left untouched; files that are not valid UTF-8 are rejected.
func (f *Files) AddBOM(name string) error {
	logger.Debug("Files.addBOM %s", name)
	data, err := f.Read(name)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(data, BOM) {
		return nil
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("add bom to %s: content is not utf-8: %w", name, domain.ErrUnsupportedEncoding)
	}
	return afero.WriteFile(f.fs, f.Path(name), append(append([]byte{}, BOM...), data...), 0644)
}

// MimeType sniffs the content type of name, e.g. "image/png".
func (f *Files) MimeType(name string) (string, error) {
	file, err := f.fs.Open(f.Path(name))
	if err != nil {
		return "", err
	}
	defer file.Close()

	m, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// List returns the entries of a directory ordered per opts.
func (f *Files) List(opts ListOptions) ([]os.FileInfo, error) {
	logger.Debug("Files.list %s sort=%s order=%s", opts.Dir, opts.SortBy, opts.Order)
	entries, err := afero.ReadDir(f.fs, f.Path(opts.Dir))
	if err != nil {
		return nil, err
	}
	if err := sortEntries(entries, opts.SortBy, opts.Order); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListFiles is List restricted to regular files.
func (f *Files) ListFiles(opts ListOptions) ([]os.FileInfo, error) {
	entries, err := f.List(opts)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Mode().IsRegular() {
			out = append(out, e)
		}
	}
	return out, nil
}

func sortEntries(entries []os.FileInfo, key SortKey, order Order) error {
	var less func(a, b os.FileInfo) bool
	switch key {
	case "", SortByName:
		c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
		less = func(a, b os.FileInfo) bool { return c.CompareString(a.Name(), b.Name()) < 0 }
	case SortByMtime:
		less = func(a, b os.FileInfo) bool { return a.ModTime().Before(b.ModTime()) }
	case SortBySize:
		less = func(a, b os.FileInfo) bool { return a.Size() < b.Size() }
	default:
		return fmt.Errorf("sort key %q: %w", key, domain.ErrInvalidInput)
	}

	switch order {
	case "", Asc:
	case Desc:
		asc := less
		less = func(a, b os.FileInfo) bool { return asc(b, a) }
	default:
		return fmt.Errorf("order %q: %w", order, domain.ErrInvalidInput)
	}

	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	return nil
}
