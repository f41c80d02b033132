// Package sheets is the boundary to the remote spreadsheet service.
//
// The core depends only on the Service interface; GoogleService implements it
// on top of google.golang.org/api/sheets/v4. Raw cell values stay []any at this
// boundary and are coerced to text by the table package.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/logging"
)

// Sentinel errors for remote access.
var (
	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("fetch failed")

	// ErrSheetNotFound indicates the spreadsheet has no sheet with the requested id.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Operations reported in FetchError.Op.
const (
	OpMetadata = "metadata"
	OpValues   = "values"
)

// FetchError wraps any failure talking to the remote service.
type FetchError struct {
	Op            string
	SpreadsheetID string
	Err           error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s for spreadsheet %s: %v", e.Op, e.SpreadsheetID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	ID    int64
	Title string
}

// Metadata describes a spreadsheet's tabs.
type Metadata struct {
	Sheets []Sheet
}

// FindSheet returns the sheet with the given id.
func (m *Metadata) FindSheet(id int64) (Sheet, bool) {
	for _, s := range m.Sheets {
		if s.ID == id {
			return s, true
		}
	}
	return Sheet{}, false
}

// Service is the remote spreadsheet capability consumed by the core.
type Service interface {
	// GetMetadata lists the sheets of a spreadsheet.
	GetMetadata(ctx context.Context, spreadsheetID string) (*Metadata, error)

	// FetchValues returns the rows of scalar values in rangeName.
	FetchValues(ctx context.Context, spreadsheetID, rangeName string) ([][]any, error)
}

// FetchValues resolves loc's sheet id to its title and fetches that sheet's
// values. Every failure is returned as a *FetchError.
func FetchValues(ctx context.Context, svc Service, loc locator.Locator) ([][]any, error) {
	log := logging.FromContext(ctx)

	meta, err := svc.GetMetadata(ctx, loc.SpreadsheetID)
	if err != nil {
		return nil, asFetchError(OpMetadata, loc.SpreadsheetID, err)
	}

	sheet, ok := meta.FindSheet(loc.SheetID)
	if !ok {
		return nil, &FetchError{
			Op:            OpMetadata,
			SpreadsheetID: loc.SpreadsheetID,
			Err:           fmt.Errorf("%w: gid %d", ErrSheetNotFound, loc.SheetID),
		}
	}
	log.Debug().Ctx(ctx).
		Str("locator", loc.String()).
		Str("sheet_title", sheet.Title).
		Msg("resolved sheet title")

	values, err := svc.FetchValues(ctx, loc.SpreadsheetID, RangeForTitle(sheet.Title))
	if err != nil {
		return nil, asFetchError(OpValues, loc.SpreadsheetID, err)
	}
	log.Info().Ctx(ctx).
		Str("locator", loc.String()).
		Int("row_count", len(values)).
		Msg("spreadsheet data retrieved")

	return values, nil
}

// RangeForTitle quotes a sheet title as an A1 range covering the whole sheet.
func RangeForTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func asFetchError(op, spreadsheetID string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, SpreadsheetID: spreadsheetID, Err: err}
}
