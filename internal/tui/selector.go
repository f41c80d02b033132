package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/gss-search/internal/search"
)

// ErrNothingToSelect is returned when Select is given no lines.
var ErrNothingToSelect = errors.New("nothing to select")

// Selector chooses one of lines and returns its index.
// Cancellation is reported as search.ErrSelectionCancelled.
type Selector interface {
	Select(ctx context.Context, lines []string) (int, error)
}

// ProgramSelector runs SelectModel as a full-screen Bubble Tea program.
type ProgramSelector struct {
	Header string
	Query  string
	Ranker search.Ranker

	// Input and Output default to stdin and stderr, leaving stdout for the
	// selected record.
	Input  io.Reader
	Output io.Writer

	// AltScreen draws the selector on the alternate screen buffer.
	AltScreen bool
}

// NewSelector returns a ProgramSelector on the process terminal with the
// filter pre-filled with query.
func NewSelector(header, query string) *ProgramSelector {
	return &ProgramSelector{
		Header:    header,
		Query:     query,
		Ranker:    search.DefaultRanker,
		Input:     os.Stdin,
		Output:    os.Stderr,
		AltScreen: true,
	}
}

// Select implements Selector.
func (s *ProgramSelector) Select(ctx context.Context, lines []string) (int, error) {
	if len(lines) == 0 {
		return -1, ErrNothingToSelect
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if s.Input != nil {
		opts = append(opts, tea.WithInput(s.Input))
	}
	if s.Output != nil {
		opts = append(opts, tea.WithOutput(s.Output))
	}
	if s.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	model := NewSelectModel(lines, SelectOptions{
		Header:       s.Header,
		InitialQuery: s.Query,
		Ranker:       s.Ranker,
	})
	final, err := tea.NewProgram(model, opts...).Run()
	switch {
	case errors.Is(err, tea.ErrInterrupted):
		return -1, search.ErrSelectionCancelled
	case err != nil:
		return -1, fmt.Errorf("running selector: %w", err)
	}

	result, ok := final.(SelectModel)
	if !ok {
		return -1, fmt.Errorf("unexpected selector model %T", final)
	}
	return result.Result()
}
