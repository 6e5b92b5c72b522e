// Package excel converts workbook sheets to CSV files in the workspace.
package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/csvfile"
	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// ExportParams configures ExportCSV.
type ExportParams struct {
	// Filename is the workspace-relative workbook (.xlsx, .xlsm).
	Filename string
	// Sheet is the name of the sheet to export.
	Sheet string
}

// ExportCSV writes one sheet of a workbook as <base>_<sheet>.csv in the
// workspace root and returns that name.
func ExportCSV(f *files.Files, p ExportParams) (string, error) {
	logger.Debug("Office.Excel.exportCSV %s sheet=%q", p.Filename, p.Sheet)
	if p.Filename == "" || p.Sheet == "" {
		return "", fmt.Errorf("export needs a workbook and a sheet: %w", domain.ErrInvalidInput)
	}

	src, err := f.Open(p.Filename)
	if err != nil {
		return "", err
	}
	defer src.Close()

	wb, err := excelize.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", p.Filename, err)
	}
	defer wb.Close()

	if idx, err := wb.GetSheetIndex(p.Sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("sheet %q in %s: %w", p.Sheet, p.Filename, domain.ErrNotFound)
	}

	rows, err := wb.GetRows(p.Sheet)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", p.Sheet, err)
	}

	data, err := csvfile.Marshal(pad(rows))
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(p.Filename), filepath.Ext(p.Filename))
	out := base + "_" + p.Sheet + ".csv"
	if err := f.Write(out, data); err != nil {
		return "", err
	}
	return out, nil
}

// pad extends every row to the widest row; trailing empty cells are
// trimmed by excelize.
func pad(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			rows[i] = append(r, make([]string, width-len(r))...)
		}
	}
	return rows
}
