// Package locator parses Google Sheets URLs into the (spreadsheet, sheet)
// pair used as both the cache key and the remote fetch argument.
package locator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Sentinel errors for URL parsing. Both are wrapped in a *ParseError.
var (
	// ErrNotSpreadsheetURL indicates the URL does not have the spreadsheet shape at all.
	ErrNotSpreadsheetURL = errors.New("not a spreadsheet URL")

	// ErrInvalidSheetID indicates the URL has a gid fragment that is not an integer.
	ErrInvalidSheetID = errors.New("invalid sheet id")
)

// urlPattern matches https://docs.google.com/spreadsheets/d/<id>/edit[...][#gid=<n>[&...]].
// Range links append "&range=A1" after the gid.
//
//nolint:gochecknoglobals // Compiled once, read-only.
var urlPattern = regexp.MustCompile(
	`^https://docs\.google\.com/spreadsheets/d/([A-Za-z0-9_-]+)/edit[^#]*(?:#gid=([^&]*)(?:&.*)?)?$`,
)

// ParseError is returned when a URL cannot be turned into a Locator.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Locator identifies one sheet of one spreadsheet.
type Locator struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetID       int64  `json:"sheet_id"`
}

// Parse extracts a Locator from a spreadsheet URL. A missing gid fragment
// selects sheet 0.
func Parse(raw string) (Locator, error) {
	m := urlPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return Locator{}, &ParseError{URL: raw, Err: ErrNotSpreadsheetURL}
	}

	loc := Locator{SpreadsheetID: raw[m[2]:m[3]]}

	// Group 2 reports -1 when the fragment is absent; "#gid=" with nothing
	// after it is present but invalid.
	if m[4] >= 0 {
		frag := raw[m[4]:m[5]]
		gid, err := strconv.ParseInt(frag, 10, 64)
		if err != nil {
			return Locator{}, &ParseError{
				URL: raw,
				Err: fmt.Errorf("%w: %q", ErrInvalidSheetID, frag),
			}
		}
		loc.SheetID = gid
	}

	return loc, nil
}

// String returns a compact "<spreadsheet>#<sheet>" form for logs and listings.
func (l Locator) String() string {
	return fmt.Sprintf("%s#%d", l.SpreadsheetID, l.SheetID)
}

// URL rebuilds the canonical edit URL for the locator.
func (l Locator) URL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", l.SpreadsheetID, l.SheetID)
}
