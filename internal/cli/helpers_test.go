package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/gss-search/internal/cache"
	"github.com/rshade/gss-search/internal/cli"
	"github.com/rshade/gss-search/internal/config"
	"github.com/rshade/gss-search/internal/locator"
	"github.com/rshade/gss-search/internal/sheets"
	"github.com/rshade/gss-search/internal/table"
	"github.com/rshade/gss-search/internal/tui"
)

const (
	testSheetURL = "https://docs.google.com/spreadsheets/d/SHEET123/edit#gid=7"
	otherURL     = "https://docs.google.com/spreadsheets/d/OTHER456/edit"
)

var testLoc = locator.Locator{SpreadsheetID: "SHEET123", SheetID: 7}

// fakeService serves one sheet with id 7 titled "People".
type fakeService struct {
	mu        sync.Mutex
	values    [][]any
	valuesErr error
	calls     int
}

func (f *fakeService) GetMetadata(_ context.Context, _ string) (*sheets.Metadata, error) {
	return &sheets.Metadata{Sheets: []sheets.Sheet{{ID: 7, Title: "People"}}}, nil
}

func (f *fakeService) FetchValues(_ context.Context, _, _ string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.values, f.valuesErr
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func peopleValues() [][]any {
	return [][]any{
		{"Name", "City"},
		{"Alice", "Paris"},
		{"Bob", "Berlin"},
	}
}

// fakeSelector records what it was shown and returns a fixed answer.
type fakeSelector struct {
	index int
	err   error

	header string
	query  string
	lines  []string

	// during runs while the selector is open.
	during func(ctx context.Context)
}

func (f *fakeSelector) Select(ctx context.Context, lines []string) (int, error) {
	f.lines = lines
	if f.during != nil {
		f.during(ctx)
	}
	return f.index, f.err
}

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of a
// background refresh.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// harness runs the root command against a temporary base directory.
type harness struct {
	t           *testing.T
	home        string
	svc         *fakeService
	serviceErr  error
	selector    *fakeSelector
	interactive bool
	styled      bool
	clipboard   []string
	clipErr     error

	// stderr of the running command.
	stderr *lockedBuffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "")
	return &harness{
		t:        t,
		home:     t.TempDir(),
		svc:      &fakeService{values: peopleValues()},
		selector: &fakeSelector{},
	}
}

func (h *harness) deps() cli.Deps {
	return cli.Deps{
		NewService: func(_ context.Context, _ *config.Config, _ io.Writer) (sheets.Service, error) {
			if h.serviceErr != nil {
				return nil, h.serviceErr
			}
			return h.svc, nil
		},
		NewSelector: func(header, query string) tui.Selector {
			h.selector.header = header
			h.selector.query = query
			return h.selector
		},
		Interactive:  func() bool { return h.interactive },
		StyledOutput: func() bool { return h.styled },
		CopyToClipboard: func(text string) error {
			if h.clipErr != nil {
				return h.clipErr
			}
			h.clipboard = append(h.clipboard, text)
			return nil
		},
	}
}

// run executes the CLI with stdin and returns stdout and stderr.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout bytes.Buffer
	stderr := &lockedBuffer{}
	h.stderr = stderr

	cmd := cli.NewRootCmdWithDeps("test", h.deps())
	cmd.SetOut(&stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--home", h.home}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (h *harness) store() *cache.Store {
	h.t.Helper()
	store, err := cache.NewStore(h.home)
	require.NoError(h.t, err)
	return store
}

// seed stores rows as the cached copy of loc.
func (h *harness) seed(loc locator.Locator, rows [][]string) {
	h.t.Helper()
	store := h.store()
	require.NoError(h.t, store.Save(store.PathFor(loc), table.Build(rows)))
}

func (h *harness) cached(loc locator.Locator) *table.Table {
	h.t.Helper()
	store := h.store()
	tbl, err := store.Load(store.PathFor(loc))
	require.NoError(h.t, err)
	return tbl
}

var errBoom = errors.New("boom")
