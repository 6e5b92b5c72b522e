// Package csvfile reads and writes CSV files in the workspace, decoding
// legacy encodings such as Shift_JIS on the way in.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadOptions configures Read.
type ReadOptions struct {
	// Encoding is a WHATWG label ("utf-8", "shift_jis", "euc-jp", ...).
	// Empty means UTF-8.
	Encoding string

	// BOM strips a leading byte order mark when present.
	BOM bool

	// Delimiter is a single character. Empty means ",".
	Delimiter string

	// RelaxColumnCount accepts rows whose field count differs from the first row.
	RelaxColumnCount bool

	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool
}

// Encoding resolves a WHATWG encoding label.
func Encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", name, domain.ErrUnsupportedEncoding)
	}
	return enc, nil
}

// Read parses the CSV file at path into rows.
func Read(fs afero.Fs, path string, opts ReadOptions) ([][]string, error) {
	logger.Debug("CSV.read %s encoding=%s bom=%t delimiter=%q", path, opts.Encoding, opts.BOM, opts.Delimiter)

	enc, err := Encoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	delim := ','
	if opts.Delimiter != "" {
		if utf8.RuneCountInString(opts.Delimiter) != 1 {
			return nil, fmt.Errorf("delimiter %q must be one character: %w", opts.Delimiter, domain.ErrInvalidInput)
		}
		delim, _ = utf8.DecodeRuneInString(opts.Delimiter)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = transform.NewReader(f, enc.NewDecoder())
	if opts.BOM {
		r = skipBOM(r)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = opts.LazyQuotes
	if opts.RelaxColumnCount {
		cr.FieldsPerRecord = -1
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// Write stores rows at path as UTF-8 CSV prefixed with a BOM so that
// spreadsheet applications detect the encoding.
func Write(fs afero.Fs, path string, rows [][]string) error {
	logger.Debug("CSV.write %s (%d rows)", path, len(rows))

	data, err := Marshal(rows)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, append(append([]byte{}, utf8BOM...), data...), 0644)
}

// Marshal encodes rows as CSV without a byte order mark.
func Marshal(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if c, _, err := br.ReadRune(); err == nil && c != '\ufeff' {
		_ = br.UnreadRune()
	}
	return br
}

// ParseDelimiter accepts the "\t" escape used on command lines.
func ParseDelimiter(s string) string {
	if strings.EqualFold(s, `\t`) || strings.EqualFold(s, "tab") {
		return "\t"
	}
	return s
}
