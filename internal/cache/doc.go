// Package cache persists fetched sheets as local JSON documents.
//
// Each (spreadsheet, sheet) pair maps to exactly one file:
//
//	<base_dir>/data/<spreadsheet_id>/<sheet_id>
//
// The document encodes {header, body, columns} with no version tag. Key features:
//   - Deterministic paths derived only from the injected base directory and the locator
//   - Whole-entry replacement on every save (write to a temp file, then rename)
//   - Distinct miss and corrupt errors so callers can tell cold from broken
//   - Listing, per-entry deletion and full clearing for cache maintenance
//
// The store is single-user: there is no cross-process locking.
package cache
