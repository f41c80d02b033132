package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/table"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewStore_EmptyBaseDir(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, ErrEmptyBaseDir)
}

func TestPathFor(t *testing.T) {
	store, err := NewStore("/home/ann/.gss-search")
	require.NoError(t, err)

	got := store.PathFor(locator.Locator{SpreadsheetID: "ABC123", SheetID: 42})
	assert.Equal(t, filepath.Join("/home/ann/.gss-search", "data", "ABC123", "42"), got)

	// Pure function of its inputs.
	assert.Equal(t, got, store.PathFor(locator.Locator{SpreadsheetID: "ABC123", SheetID: 42}))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	loc := locator.Locator{SpreadsheetID: "ABC123", SheetID: 0}

	tests := []struct {
		name string
		tbl  *table.Table
	}{
		{
			name: "name age",
			tbl:  table.Build([][]string{{"Name", "Age"}, {"Ann", "30"}, {"Bo", "41"}}),
		},
		{
			name: "ragged",
			tbl:  table.Build([][]string{{"h1"}, {"a", "b", "c"}, {"d"}}),
		},
		{
			name: "header only",
			tbl:  table.Build([][]string{{"h1", "h2"}}),
		},
		{
			name: "empty",
			tbl:  table.Empty(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := store.PathFor(loc)
			require.NoError(t, store.Save(path, tt.tbl))

			got, err := store.Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.tbl, got)
		})
	}
}

func TestSave_CreatesParentsAndOverwrites(t *testing.T) {
	store := newTestStore(t)
	loc := locator.Locator{SpreadsheetID: "sheet", SheetID: 9}
	path := store.PathFor(loc)

	first := table.Build([][]string{{"a"}, {"1"}, {"2"}, {"3"}})
	second := table.Build([][]string{{"b"}, {"x"}})

	require.NoError(t, store.Save(path, first))
	require.NoError(t, store.Save(path, second))

	got, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, statErr := os.Stat(path + tempSuffix)
	assert.True(t, os.IsNotExist(statErr), "temp file should not survive a save")
}

func TestSave_NilTable(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.Save(filepath.Join(store.DataDir(), "x", "0"), nil))
}

func TestLoad_Miss(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadLocator(locator.Locator{SpreadsheetID: "nope"})
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NotErrorIs(t, err, ErrCacheCorrupt)
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `{"header":["a"],"body":[`},
		{name: "not json", content: "hello"},
		{name: "wrong shape", content: `{"header":"a","body":[],"columns":[]}`},
		{name: "missing fields", content: `{}`},
		{name: "column invariant broken", content: `{"header":["a","b"],"body":[],"columns":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			path := store.PathFor(locator.Locator{SpreadsheetID: "bad"})
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := store.Load(path)
			assert.ErrorIs(t, err, ErrCacheCorrupt)
		})
	}
}

func TestSaveLoad_DocumentShape(t *testing.T) {
	store := newTestStore(t)
	path := store.PathFor(locator.Locator{SpreadsheetID: "doc"})
	require.NoError(t, store.Save(path, table.Build([][]string{{"Name"}, {"Ann"}})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"header":["Name"],"body":[["Ann"]],"columns":[{"title":"Name","max_content_length":3}]}`,
		string(data))
}

func TestDeleteClearList(t *testing.T) {
	store := newTestStore(t)
	tbl := table.Build([][]string{{"h"}, {"v"}})

	locs := []locator.Locator{
		{SpreadsheetID: "b", SheetID: 0},
		{SpreadsheetID: "a", SheetID: 10},
		{SpreadsheetID: "a", SheetID: 2},
	}
	for _, loc := range locs {
		require.NoError(t, store.SaveLocator(loc, tbl))
	}

	// Stray files are ignored by List.
	require.NoError(t, os.WriteFile(filepath.Join(store.DataDir(), "a", "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.DataDir(), "a", "3.tmp"), []byte("x"), 0o600))

	t.Run("List", func(t *testing.T) {
		entries, err := store.List()
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, locator.Locator{SpreadsheetID: "a", SheetID: 2}, entries[0].Locator)
		assert.Equal(t, locator.Locator{SpreadsheetID: "a", SheetID: 10}, entries[1].Locator)
		assert.Equal(t, locator.Locator{SpreadsheetID: "b", SheetID: 0}, entries[2].Locator)
		for _, e := range entries {
			assert.Positive(t, e.Size)
			assert.Less(t, e.Age(), time.Minute)
		}
	})

	t.Run("Stat", func(t *testing.T) {
		info, err := store.Stat(locs[0])
		require.NoError(t, err)
		assert.Equal(t, store.PathFor(locs[0]), info.Path)

		_, err = store.Stat(locator.Locator{SpreadsheetID: "zzz"})
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(locs[0]))
		require.NoError(t, store.Delete(locs[0]), "delete should be idempotent")

		_, err := store.LoadLocator(locs[0])
		assert.ErrorIs(t, err, ErrCacheMiss)

		entries, err := store.List()
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear())
		entries, err := store.List()
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 45 * time.Second, want: "45s"},
		{in: 30 * time.Minute, want: "30m"},
		{in: time.Hour, want: "1h"},
		{in: 5*time.Hour + 30*time.Minute, want: "5h30m"},
		{in: 48 * time.Hour, want: "2d"},
		{in: 51 * time.Hour, want: "2d3h"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}
