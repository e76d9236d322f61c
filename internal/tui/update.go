package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type resultsMsg struct {
	query   string
	results []search.Result
	err     error
}

type debounceMsg struct {
	query string
}

func (m model) Init() tea.Cmd {
	if m.mode == modeList || m.query != "" {
		return tea.Batch(textinput.Blink, m.fetch(m.query))
	}
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.lay = computeLayout(msg.Width, msg.Height)
		m.ready = true
		m.preview = newViewport(m.lay.previewW, m.lay.panelH)
		m.shown = previewKey{msgIdx: -2}
		return m, m.loadPreview()
	case tea.KeyMsg:
		return m.onKey(msg)
	case tea.MouseMsg:
		return m.onMouse(msg)
	case debounceMsg:
		if msg.query != m.query {
			return m, nil // typing continued
		}
		return m, m.fetch(msg.query)
	case resultsMsg:
		return m.onResults(msg)
	case previewRenderedMsg:
		return m.onPreview(msg), nil
	}
	return m, nil
}

// selected returns the result under the cursor.
func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) keyOf(r search.Result) previewKey {
	return previewKey{sessionID: r.SessionID, msgIdx: r.MsgIdx, group: groupName(m.activeGroup())}
}

func (m model) activeGroup() *classify.Group {
	return filterGroups[m.group]
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Enter):
		if r, ok := m.selected(); ok {
			m.chosen = &r
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, keys.Filter):
		m.cycleGroup()
		if m.mode == modeList && m.query == "" {
			return m, m.loadPreview()
		}
		return m, debounce(m.query)
	case key.Matches(msg, keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(m.lay.panelH / 2)
		return m, nil
	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(m.lay.panelH / 2)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.lay.panelH)
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.lay.panelH)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, debounce(q))
	}
	return m, cmd
}

// cycleGroup advances the category filter and narrows the search to it.
func (m *model) cycleGroup() {
	m.group = (m.group + 1) % len(filterGroups)
	m.opts.Categories = nil
	if g := m.activeGroup(); g != nil {
		m.opts.Categories = lo.Map(g.Categories, func(c classify.Category, _ int) string { return string(c) })
	}
}

func (m model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.results) {
		return m, nil
	}
	m.cursor = next
	m.adjustListScroll(m.lay.panelH)
	return m, m.loadPreview()
}

func (m model) onMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}
	region, item := m.lay.hitTest(msg.X, msg.Y, m.offset)
	wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown

	switch {
	case region == regionPreview && wheel:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case region != regionList:
		return m, nil
	case msg.Button == tea.MouseButtonWheelUp:
		m.offset = max(m.offset-1, 0)
	case msg.Button == tea.MouseButtonWheelDown:
		m.offset = min(m.offset+1, max(len(m.results)-m.lay.panelH/linesPerItem, 0))
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if item < len(m.results) && item != m.cursor {
			return m.moveCursor(item - m.cursor)
		}
	}
	return m, nil
}

func (m model) onResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query {
		return m, nil // stale
	}
	m.cursor, m.offset = 0, 0
	m.shown = previewKey{msgIdx: -2}
	if msg.err != nil {
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	}
	m.results = msg.results
	if len(m.results) == 0 {
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.loadPreview()
}

func (m model) onPreview(msg previewRenderedMsg) model {
	if msg.key == m.shown {
		return m
	}
	if r, ok := m.selected(); ok && m.keyOf(r) != msg.key {
		return m // the selection moved on
	}
	switch {
	case msg.err != nil:
		m.preview.SetContent("Preview error: " + msg.err.Error())
	case msg.hitLine > 0:
		m.preview.SetContent(msg.content)
		m.preview.SetYOffset(msg.hitLine)
	default:
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
	}
	m.shown = msg.key
	return m
}

// fetch runs the query. An empty query lists sessions in list mode and
// clears the results in search mode.
func (m model) fetch(query string) tea.Cmd {
	db, opts, mode := m.db, m.opts, m.mode
	opts.Query = query
	return func() tea.Msg {
		var (
			results []search.Result
			err     error
		)
		switch {
		case query != "":
			results, err = search.Search(db, opts)
		case mode == modeList:
			results, err = search.ListAll(db, opts)
		}
		return resultsMsg{query: query, results: results, err: err}
	}
}

func debounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{query: query}
	})
}

func (m model) loadPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok || m.keyOf(r) == m.shown {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.keyOf(r), m.query, m.activeGroup(), m.lay.previewW)
}
