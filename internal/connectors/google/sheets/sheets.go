// Package sheets is a facade over the Google Sheets v4 API. Each method maps
// to one values call or one batchUpdate request.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Value input options for SetValues.
const (
	InputUserEntered = "USER_ENTERED"
	InputRaw         = "RAW"
)

// Sheets wraps a sheets.Service.
type Sheets struct {
	svc     *sheets.Service
	limiter *google.RateLimiter
}

// New creates a Sheets facade.
func New(svc *sheets.Service) *Sheets {
	return &Sheets{svc: svc, limiter: google.NewRateLimiter(google.ServiceSheets)}
}

// SetValuesParams configures SetValues.
type SetValuesParams struct {
	SpreadsheetID string
	// Range is in A1 notation.
	Range  string
	Values [][]interface{}
	// Parse interprets values as if typed into the UI, so "1" becomes a
	// number and "2024-01-01" a date.
	Parse bool
}

// Values returns the values in an A1 range.
func (s *Sheets) Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	logger.Debug("Google.Spreadsheet.getValues %s %s", spreadsheetID, rng)
	var out [][]interface{}
	err := s.limiter.Do(ctx, func() error {
		res, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return err
		}
		out = res.Values
		return nil
	})
	return out, err
}

// SetValues writes rows into an A1 range.
func (s *Sheets) SetValues(ctx context.Context, p SetValuesParams) (*sheets.UpdateValuesResponse, error) {
	logger.Debug("Google.Spreadsheet.setValues %s %s", p.SpreadsheetID, p.Range)
	input := InputRaw
	if p.Parse {
		input = InputUserEntered
	}

	var out *sheets.UpdateValuesResponse
	err := s.limiter.Do(ctx, func() (err error) {
		out, err = s.svc.Spreadsheets.Values.Update(p.SpreadsheetID, p.Range, &sheets.ValueRange{
			Range:          p.Range,
			MajorDimension: "ROWS",
			Values:         p.Values,
		}).ValueInputOption(input).Context(ctx).Do()
		return err
	})
	return out, err
}

// Create makes a new spreadsheet and returns its ID.
func (s *Sheets) Create(ctx context.Context, title string) (string, error) {
	logger.Debug("Google.Spreadsheet.create %q", title)
	var id string
	err := s.limiter.Do(ctx, func() error {
		res, err := s.svc.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: title},
		}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = res.SpreadsheetId
		return nil
	})
	return id, err
}

func (s *Sheets) get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	var out *sheets.Spreadsheet
	err := s.limiter.Do(ctx, func() (err error) {
		out, err = s.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
		return err
	})
	return out, err
}

// batch sends requests as one atomic batchUpdate.
func (s *Sheets) batch(ctx context.Context, spreadsheetID string, reqs ...*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	var out *sheets.BatchUpdateSpreadsheetResponse
	err := s.limiter.Do(ctx, func() (err error) {
		out, err = s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		return err
	})
	return out, err
}

// Title returns the spreadsheet title.
func (s *Sheets) Title(ctx context.Context, spreadsheetID string) (string, error) {
	logger.Debug("Google.Spreadsheet.getTitle %s", spreadsheetID)
	ss, err := s.get(ctx, spreadsheetID)
	if err != nil {
		return "", err
	}
	if ss.Properties == nil {
		return "", nil
	}
	return ss.Properties.Title, nil
}

// UpdateTitle renames the spreadsheet and returns the new title.
func (s *Sheets) UpdateTitle(ctx context.Context, spreadsheetID, title string) (string, error) {
	logger.Debug("Google.Spreadsheet.updateTitle %s %q", spreadsheetID, title)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		UpdateSpreadsheetProperties: &sheets.UpdateSpreadsheetPropertiesRequest{
			Properties: &sheets.SpreadsheetProperties{Title: title},
			Fields:     "title",
		},
	})
	if err != nil {
		return "", err
	}
	return title, nil
}

// CreateSheet adds a sheet and returns its sheet ID.
func (s *Sheets) CreateSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	logger.Debug("Google.Spreadsheet.createSheet %s %q", spreadsheetID, title)
	res, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
	})
	if err != nil {
		return 0, err
	}
	if len(res.Replies) == 0 || res.Replies[0].AddSheet == nil || res.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("create sheet %q: empty reply", title)
	}
	return res.Replies[0].AddSheet.Properties.SheetId, nil
}

// DeleteSheet removes a sheet.
func (s *Sheets) DeleteSheet(ctx context.Context, spreadsheetID string, sheetID int64) error {
	logger.Debug("Google.Spreadsheet.deleteSheet %s %d", spreadsheetID, sheetID)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{SheetId: sheetID, ForceSendFields: []string{"SheetId"}},
	})
	return err
}

// UpdateSheetTitle renames a sheet and returns the new title.
func (s *Sheets) UpdateSheetTitle(ctx context.Context, spreadsheetID string, sheetID int64, title string) (string, error) {
	logger.Debug("Google.Spreadsheet.updateSheetTitle %s %d %q", spreadsheetID, sheetID, title)
	err := s.UpdateSheetProperties(ctx, spreadsheetID, &sheets.SheetProperties{
		SheetId:         sheetID,
		Title:           title,
		ForceSendFields: []string{"SheetId"},
	}, "title")
	if err != nil {
		return "", err
	}
	return title, nil
}

// SheetIDFromTitle returns the ID of the sheet called title.
func (s *Sheets) SheetIDFromTitle(ctx context.Context, spreadsheetID, title string) (int64, error) {
	logger.Debug("Google.Spreadsheet.getSheetIdFromTitle %s %q", spreadsheetID, title)
	props, err := s.ListSheetProperties(ctx, spreadsheetID, nil)
	if err != nil {
		return 0, err
	}
	for _, p := range props {
		if p.Title == title {
			return p.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q: %w", title, domain.ErrNotFound)
}

// TitleFromSheetID returns the title of a sheet.
func (s *Sheets) TitleFromSheetID(ctx context.Context, spreadsheetID string, sheetID int64) (string, error) {
	logger.Debug("Google.Spreadsheet.getTitleFromSheetId %s %d", spreadsheetID, sheetID)
	props, err := s.ListSheetProperties(ctx, spreadsheetID, &sheetID)
	if err != nil {
		return "", err
	}
	if len(props) == 0 {
		return "", fmt.Errorf("sheet %d: %w", sheetID, domain.ErrNotFound)
	}
	return props[0].Title, nil
}

// CopySheet copies a sheet into another spreadsheet and returns the new sheet ID.
func (s *Sheets) CopySheet(ctx context.Context, spreadsheetID string, sheetID int64, destinationID string) (int64, error) {
	logger.Debug("Google.Spreadsheet.copySheet %s %d -> %s", spreadsheetID, sheetID, destinationID)
	var id int64
	err := s.limiter.Do(ctx, func() error {
		res, err := s.svc.Spreadsheets.Sheets.CopyTo(spreadsheetID, sheetID, &sheets.CopySheetToAnotherSpreadsheetRequest{
			DestinationSpreadsheetId: destinationID,
		}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = res.SheetId
		return nil
	})
	return id, err
}

// SetCellsFormat applies format to every cell in rng.
func (s *Sheets) SetCellsFormat(ctx context.Context, spreadsheetID string, rng *sheets.GridRange, format *sheets.CellFormat) error {
	logger.Debug("Google.Spreadsheet.setCellsFormat %s", spreadsheetID)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range:  rng,
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: "userEnteredFormat",
		},
	})
	return err
}

// ListSheetProperties returns the properties of every sheet, or of sheetID
// only when it is non-nil.
func (s *Sheets) ListSheetProperties(ctx context.Context, spreadsheetID string, sheetID *int64) ([]*sheets.SheetProperties, error) {
	logger.Debug("Google.Spreadsheet.listSheetProperties %s", spreadsheetID)
	ss, err := s.get(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	var out []*sheets.SheetProperties
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if sheetID == nil || sh.Properties.SheetId == *sheetID {
			out = append(out, sh.Properties)
		}
	}
	return out, nil
}

// UpdateSheetProperties updates the listed fields of a sheet's properties.
func (s *Sheets) UpdateSheetProperties(ctx context.Context, spreadsheetID string, props *sheets.SheetProperties, fields string) error {
	logger.Debug("Google.Spreadsheet.updateSheetProperties %s fields=%s", spreadsheetID, fields)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{Properties: props, Fields: fields},
	})
	return err
}

// AddProtectedRange protects a range and returns it with its assigned ID.
func (s *Sheets) AddProtectedRange(ctx context.Context, spreadsheetID string, pr *sheets.ProtectedRange) (*sheets.ProtectedRange, error) {
	logger.Debug("Google.Spreadsheet.addProtectedRange %s", spreadsheetID)
	res, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		AddProtectedRange: &sheets.AddProtectedRangeRequest{ProtectedRange: pr},
	})
	if err != nil {
		return nil, err
	}
	if len(res.Replies) == 0 || res.Replies[0].AddProtectedRange == nil {
		return nil, fmt.Errorf("add protected range: empty reply")
	}
	return res.Replies[0].AddProtectedRange.ProtectedRange, nil
}

// DeleteProtectedRange removes a protected range.
func (s *Sheets) DeleteProtectedRange(ctx context.Context, spreadsheetID string, protectedRangeID int64) error {
	logger.Debug("Google.Spreadsheet.deleteProtectedRange %s %d", spreadsheetID, protectedRangeID)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		DeleteProtectedRange: &sheets.DeleteProtectedRangeRequest{
			ProtectedRangeId: protectedRangeID,
			ForceSendFields:  []string{"ProtectedRangeId"},
		},
	})
	return err
}

// ListProtectedRanges returns the protected ranges of every sheet, or of
// sheetID only when it is non-nil.
func (s *Sheets) ListProtectedRanges(ctx context.Context, spreadsheetID string, sheetID *int64) ([]*sheets.ProtectedRange, error) {
	logger.Debug("Google.Spreadsheet.listProtectedRanges %s", spreadsheetID)
	ss, err := s.get(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	var out []*sheets.ProtectedRange
	for _, sh := range ss.Sheets {
		if sheetID != nil && (sh.Properties == nil || sh.Properties.SheetId != *sheetID) {
			continue
		}
		out = append(out, sh.ProtectedRanges...)
	}
	return out, nil
}

// DimensionRange selects rows and/or columns to delete. Nil bounds leave
// that dimension untouched; a nil end runs to the end of the sheet.
type DimensionRange struct {
	SheetID     int64
	StartColumn *int64
	EndColumn   *int64
	StartRow    *int64
	EndRow      *int64
}

func dimension(sheetID int64, dim string, start, end *int64) *sheets.Request {
	r := &sheets.DimensionRange{SheetId: sheetID, Dimension: dim, ForceSendFields: []string{"SheetId"}}
	if start != nil {
		r.StartIndex = *start
		r.ForceSendFields = append(r.ForceSendFields, "StartIndex")
	}
	if end != nil {
		r.EndIndex = *end
		r.ForceSendFields = append(r.ForceSendFields, "EndIndex")
	}
	return &sheets.Request{DeleteDimension: &sheets.DeleteDimensionRequest{Range: r}}
}

// DeleteDimension deletes the selected columns and rows in one batch.
func (s *Sheets) DeleteDimension(ctx context.Context, spreadsheetID string, rng DimensionRange) error {
	logger.Debug("Google.Spreadsheet.deleteDimension %s sheet=%d", spreadsheetID, rng.SheetID)
	var reqs []*sheets.Request
	if rng.StartColumn != nil || rng.EndColumn != nil {
		reqs = append(reqs, dimension(rng.SheetID, "COLUMNS", rng.StartColumn, rng.EndColumn))
	}
	if rng.StartRow != nil || rng.EndRow != nil {
		reqs = append(reqs, dimension(rng.SheetID, "ROWS", rng.StartRow, rng.EndRow))
	}
	if len(reqs) == 0 {
		return fmt.Errorf("delete dimension: no rows or columns selected: %w", domain.ErrInvalidInput)
	}
	_, err := s.batch(ctx, spreadsheetID, reqs...)
	return err
}

// UpdateSheetSize sets the row and/or column count of a sheet. Zero leaves
// that dimension unchanged; at least one must be positive.
func (s *Sheets) UpdateSheetSize(ctx context.Context, spreadsheetID string, sheetID, rowCount, columnCount int64) error {
	logger.Debug("Google.Spreadsheet.updateSheetSize %s %d rows=%d cols=%d", spreadsheetID, sheetID, rowCount, columnCount)
	if rowCount <= 0 && columnCount <= 0 {
		return fmt.Errorf("specify at least one of row count or column count: %w", domain.ErrInvalidInput)
	}

	var fields []string
	grid := &sheets.GridProperties{}
	if rowCount > 0 {
		grid.RowCount = rowCount
		fields = append(fields, "gridProperties.rowCount")
	}
	if columnCount > 0 {
		grid.ColumnCount = columnCount
		fields = append(fields, "gridProperties.columnCount")
	}
	return s.UpdateSheetProperties(ctx, spreadsheetID, &sheets.SheetProperties{
		SheetId:         sheetID,
		GridProperties:  grid,
		ForceSendFields: []string{"SheetId"},
	}, strings.Join(fields, ","))
}

// SortRange sorts rng by the column at keyColumnIndex, ascending unless desc.
func (s *Sheets) SortRange(ctx context.Context, spreadsheetID string, rng *sheets.GridRange, keyColumnIndex int64, desc bool) error {
	logger.Debug("Google.Spreadsheet.sortRange %s key=%d desc=%t", spreadsheetID, keyColumnIndex, desc)
	order := "ASCENDING"
	if desc {
		order = "DESCENDING"
	}
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		SortRange: &sheets.SortRangeRequest{
			Range: rng,
			SortSpecs: []*sheets.SortSpec{{
				DimensionIndex:  keyColumnIndex,
				SortOrder:       order,
				ForceSendFields: []string{"DimensionIndex"},
			}},
		},
	})
	return err
}

// FindReplaceParams configures FindReplace. Exactly one of Range or
// AllSheets selects the scope.
type FindReplaceParams struct {
	Range           *sheets.GridRange
	AllSheets       bool
	Find            string
	Replacement     string
	MatchCase       bool
	MatchEntireCell bool
	SearchByRegex   bool
	IncludeFormulas bool
}

// FindReplace replaces matching cell contents and returns the number of
// occurrences changed.
func (s *Sheets) FindReplace(ctx context.Context, spreadsheetID string, p FindReplaceParams) (int64, error) {
	logger.Debug("Google.Spreadsheet.findReplace %s find=%q", spreadsheetID, p.Find)
	if (p.Range == nil) == !p.AllSheets {
		return 0, fmt.Errorf("find/replace needs either a range or all sheets: %w", domain.ErrInvalidInput)
	}
	res, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		FindReplace: &sheets.FindReplaceRequest{
			Range:           p.Range,
			AllSheets:       p.AllSheets,
			Find:            p.Find,
			Replacement:     p.Replacement,
			MatchCase:       p.MatchCase,
			MatchEntireCell: p.MatchEntireCell,
			SearchByRegex:   p.SearchByRegex,
			IncludeFormulas: p.IncludeFormulas,
			ForceSendFields: []string{"Replacement"},
		},
	})
	if err != nil {
		return 0, err
	}
	if len(res.Replies) > 0 && res.Replies[0].FindReplace != nil {
		return res.Replies[0].FindReplace.OccurrencesChanged, nil
	}
	return 0, nil
}

// UpdateCellsParams configures UpdateCells. Set Start or Range, not both.
type UpdateCellsParams struct {
	Rows  []*sheets.RowData
	Start *sheets.GridCoordinate
	Range *sheets.GridRange
	// Fields lists the CellData fields to write; "*" means all.
	Fields string
}

// UpdateCells writes cell data.
func (s *Sheets) UpdateCells(ctx context.Context, spreadsheetID string, p UpdateCellsParams) error {
	logger.Debug("Google.Spreadsheet.updateCells %s fields=%s", spreadsheetID, p.Fields)
	_, err := s.batch(ctx, spreadsheetID, &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Rows:   p.Rows,
			Start:  p.Start,
			Range:  p.Range,
			Fields: p.Fields,
		},
	})
	return err
}

// ColumnToIndex converts a column name to its 0-based index:
// A -> 0, Z -> 25, AA -> 26, AZ -> 51, BA -> 52.
func ColumnToIndex(column string) (int64, error) {
	if column == "" {
		return 0, fmt.Errorf("column name is empty: %w", domain.ErrInvalidInput)
	}
	n := int64(-1)
	for _, c := range strings.ToUpper(column) {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("column name %q: %w", column, domain.ErrInvalidInput)
		}
		n = (n+1)*26 + int64(c-'A')
	}
	return n, nil
}
