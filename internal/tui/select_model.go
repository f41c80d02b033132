package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rshade/gss-search/internal/search"
	listview "github.com/rshade/gss-search/internal/tui/list"
)

// Key names handled by the selector.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// chromeLines is the number of lines drawn around the list: input,
	// header, and status.
	chromeLines = 3

	cursorMarker = "> "
	blankMarker  = "  "
)

// selectState tracks how the selector ended.
type selectState int

const (
	stateSelecting selectState = iota
	stateAccepted
	stateCancelled
)

// SelectOptions configures a SelectModel.
type SelectOptions struct {
	// Header is drawn above the list, typically the rendered header row.
	Header string

	// Prompt precedes the query input.
	Prompt string

	// InitialQuery pre-fills the filter.
	InitialQuery string

	// Ranker scores lines for non-empty queries. Defaults to search.DefaultRanker.
	Ranker search.Ranker
}

// lineRenderer draws candidate lines; it is shared by pointer so the list's
// render function sees size changes.
type lineRenderer struct {
	lines []string
	width int
}

func (r *lineRenderer) render(m search.Match, selected bool) string {
	avail := r.width - runewidth.StringWidth(cursorMarker)
	line := r.lines[m.Index]
	if avail > 0 {
		line = runewidth.Truncate(line, avail, "")
	}

	body := highlight(line, m.MatchedIndexes)
	if selected {
		return CursorStyle.Render(cursorMarker) + SelectedStyle.Render(body)
	}
	return blankMarker + body
}

// highlight styles the bytes at matched offsets.
func highlight(line string, matched []int) string {
	if len(matched) == 0 {
		return line
	}
	hits := make(map[int]struct{}, len(matched))
	for _, i := range matched {
		hits[i] = struct{}{}
	}

	var sb strings.Builder
	for i, r := range line {
		if _, ok := hits[i]; ok {
			sb.WriteString(MatchStyle.Render(string(r)))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SelectModel is the Bubble Tea model for choosing one line by fuzzy query.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type SelectModel struct {
	lines  []string
	header string
	ranker search.Ranker

	input    textinput.Model
	list     *listview.VirtualListModel[search.Match]
	renderer *lineRenderer
	query    string

	width  int
	height int

	state  selectState
	chosen int
}

// NewSelectModel creates a selector over lines. With an empty query every
// line is a candidate in original order.
func NewSelectModel(lines []string, opts SelectOptions) SelectModel {
	if opts.Ranker == nil {
		opts.Ranker = search.DefaultRanker
	}
	if opts.Prompt == "" {
		opts.Prompt = "Search: "
	}

	input := textinput.New()
	input.Prompt = opts.Prompt
	input.Placeholder = "type to filter"
	input.SetValue(opts.InitialQuery)
	input.Focus()

	renderer := &lineRenderer{lines: lines, width: defaultWidth}
	m := SelectModel{
		lines:    lines,
		header:   opts.Header,
		ranker:   opts.Ranker,
		input:    input,
		renderer: renderer,
		query:    opts.InitialQuery,
		width:    defaultWidth,
		height:   defaultHeight,
		chosen:   -1,
	}
	m.list = listview.NewVirtualListModel(
		search.RankWith(m.ranker, m.query, lines), m.listHeight(), m.width, renderer.render)
	return m
}

// Init initializes the model (Bubble Tea interface).
func (m SelectModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys and resizes (Bubble Tea interface).
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer.width = msg.Width
		m.list.SetSize(m.listHeight(), msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case keyEnter:
			if item := m.list.GetSelectedItem(); item != nil {
				m.chosen = item.Index
				m.state = stateAccepted
				return m, tea.Quit
			}
			return m, nil
		case keyEsc, keyCtrlC:
			m.state = stateCancelled
			return m, tea.Quit
		}
		if listview.HandlesKey(msg) {
			m.list.Update(msg)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		m.list.SetItems(search.RankWith(m.ranker, q, m.lines))
	}
	return m, cmd
}

// View renders the selector (Bubble Tea interface).
func (m SelectModel) View() string {
	if m.state != stateSelecting {
		return ""
	}

	status := SubtleStyle.Render(fmt.Sprintf("  %d/%d", m.list.ItemCount(), len(m.lines)))
	header := ""
	if m.header != "" {
		header = HeaderStyle.Render(blankMarker + runewidth.Truncate(m.header, max(m.width-len(blankMarker), 0), ""))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		status,
		header,
		m.list.View(),
	)
}

// Result returns the chosen line index, or search.ErrSelectionCancelled.
func (m SelectModel) Result() (int, error) {
	if m.state != stateAccepted {
		return -1, search.ErrSelectionCancelled
	}
	return m.chosen, nil
}

// Query returns the current filter text.
func (m SelectModel) Query() string {
	return m.query
}

// Candidates returns the indexes of the lines currently listed, best first.
func (m SelectModel) Candidates() []int {
	return search.Indexes(m.list.Items())
}

func (m SelectModel) listHeight() int {
	return max(m.height-chromeLines, 1)
}
