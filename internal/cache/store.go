package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/table"
)

// dataDirName is the subdirectory of the base directory holding sheet entries.
const dataDirName = "data"

// tempSuffix marks in-flight writes; such files are never listed or loaded.
const tempSuffix = ".tmp"

// Common cache errors.
var (
	ErrCacheMiss    = errors.New("cache entry not found")
	ErrCacheCorrupt = errors.New("cache entry corrupt")
	ErrEmptyBaseDir = errors.New("cache base directory cannot be empty")
)

// Store persists one Table per Locator under <baseDir>/data/<spreadsheet>/<sheet>.
// Thread-safe for concurrent access within a process; there is no
// cross-process locking.
type Store struct {
	// baseDir is the application directory injected by the caller.
	baseDir string

	// mu serialises writes against reads of the same process.
	mu sync.RWMutex
}

// NewStore creates a store rooted at baseDir. Nothing is created on disk
// until the first Save.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, ErrEmptyBaseDir
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the application directory the store was created with.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// DataDir returns the directory holding all entries.
func (s *Store) DataDir() string {
	return filepath.Join(s.baseDir, dataDirName)
}

// PathFor maps a locator to its entry path. It is a pure function of the
// base directory and the locator.
func (s *Store) PathFor(loc locator.Locator) string {
	return filepath.Join(s.DataDir(), loc.SpreadsheetID, strconv.FormatInt(loc.SheetID, 10))
}

// Save writes tbl to path, creating parent directories and replacing any
// existing entry. The document is written to a temporary file first and
// renamed into place so readers never observe a partial write.
func (s *Store) Save(path string, tbl *table.Table) error {
	if tbl == nil {
		return errors.New("cannot save nil table")
	}

	data, err := json.Marshal(tbl)
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o750); mkErr != nil {
		return fmt.Errorf("failed to create cache directory: %w", mkErr)
	}

	tempPath := path + tempSuffix
	if writeErr := os.WriteFile(tempPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}

	if renameErr := os.Rename(tempPath, path); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Load reads the entry at path.
// Returns ErrCacheMiss if nothing is stored there and ErrCacheCorrupt if the
// content does not decode into a valid Table.
func (s *Store) Load(path string) (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, path)
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var tbl table.Table
	if unmarshalErr := json.Unmarshal(data, &tbl); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, path, unmarshalErr)
	}
	if tbl.Header == nil || tbl.Body == nil || tbl.Columns == nil {
		return nil, fmt.Errorf("%w: %s: missing header, body or columns", ErrCacheCorrupt, path)
	}
	if validErr := tbl.Validate(); validErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, path, validErr)
	}

	return &tbl, nil
}

// LoadLocator is Load(PathFor(loc)).
func (s *Store) LoadLocator(loc locator.Locator) (*table.Table, error) {
	return s.Load(s.PathFor(loc))
}

// SaveLocator is Save(PathFor(loc), tbl).
func (s *Store) SaveLocator(loc locator.Locator, tbl *table.Table) error {
	return s.Save(s.PathFor(loc), tbl)
}

// Delete removes the entry for loc.
// Returns nil if the entry doesn't exist (idempotent).
func (s *Store) Delete(loc locator.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathFor(loc)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}

	// Drop the spreadsheet directory once its last sheet is gone.
	_ = os.Remove(filepath.Dir(path))
	return nil
}

// Clear removes every entry from the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.DataDir()); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}
	return nil
}

// List returns every stored entry, sorted by spreadsheet then sheet id.
// Files that do not look like entries are skipped.
func (s *Store) List() ([]EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spreadsheets, err := os.ReadDir(s.DataDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []EntryInfo
	for _, dir := range spreadsheets {
		if !dir.IsDir() {
			continue
		}

		sheetDir := filepath.Join(s.DataDir(), dir.Name())
		sheets, readErr := os.ReadDir(sheetDir)
		if readErr != nil {
			continue // Skip directories we can't read
		}

		for _, f := range sheets {
			if f.IsDir() || strings.HasSuffix(f.Name(), tempSuffix) {
				continue
			}
			sheetID, parseErr := strconv.ParseInt(f.Name(), 10, 64)
			if parseErr != nil {
				continue
			}
			info, infoErr := f.Info()
			if infoErr != nil {
				continue
			}
			entries = append(entries, EntryInfo{
				Locator: locator.Locator{SpreadsheetID: dir.Name(), SheetID: sheetID},
				Path:    filepath.Join(sheetDir, f.Name()),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Locator, entries[j].Locator
		if a.SpreadsheetID != b.SpreadsheetID {
			return a.SpreadsheetID < b.SpreadsheetID
		}
		return a.SheetID < b.SheetID
	})

	return entries, nil
}

// Stat returns entry metadata for loc, or ErrCacheMiss.
func (s *Store) Stat(loc locator.Locator) (EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.PathFor(loc)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EntryInfo{}, fmt.Errorf("%w: %s", ErrCacheMiss, path)
		}
		return EntryInfo{}, fmt.Errorf("failed to stat cache file: %w", err)
	}

	return EntryInfo{Locator: loc, Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}
