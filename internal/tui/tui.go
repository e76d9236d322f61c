package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/search"
)

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeList
)

func (md tuiMode) String() string {
	if md == modeList {
		return "sessions"
	}
	return "search"
}

// previewKey identifies a rendered preview. A new render is only kicked off
// when the key of the selection differs from the one on screen.
type previewKey struct {
	sessionID string
	msgIdx    int
	group     string
}

type model struct {
	db   *index.DB
	opts search.Options
	mode tuiMode

	input   textinput.Model
	query   string
	results []search.Result
	cursor  int
	offset  int

	preview viewport.Model
	shown   previewKey
	// group indexes filterGroups.
	group int

	lay      layout
	ready    bool
	quitting bool
	chosen   *search.Result
}

// filterGroups are cycled with tab. The first entry shows everything.
var filterGroups = append([]*classify.Group{nil}, lo.Map(classify.Groups, func(_ classify.Group, i int) *classify.Group {
	return &classify.Groups[i]
})...)

func groupName(g *classify.Group) string {
	if g == nil {
		return "all"
	}
	return g.Name
}

func newModel(db *index.DB, mode tuiMode, query string, opts search.Options) model {
	in := textinput.New()
	in.Placeholder = "Search..."
	if mode == modeList {
		in.Placeholder = "Filter..."
	}
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.TextStyle = styleInput
	in.CharLimit = 256
	in.SetValue(query)
	in.Focus()

	return model{
		db:      db,
		opts:    opts,
		mode:    mode,
		input:   in,
		query:   query,
		preview: viewport.New(0, 0),
		lay:     computeLayout(0, 0),
		shown:   previewKey{msgIdx: -2},
	}
}

// Run opens the search browser with query prefilled. Choosing a result
// copies its resume command to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, newModel(db, modeSearch, query, opts))
}

// RunList opens the browser on all sessions, newest first. Typing switches
// to full-text search within the list.
func RunList(db *index.DB, opts search.Options) error {
	return run(db, newModel(db, modeList, "", opts))
}

func run(db *index.DB, m model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if fm := final.(model); fm.chosen != nil {
		return copyResume(db, fm.chosen.SessionID)
	}
	return nil
}

// copyResume puts the resume command of a session on the clipboard, or
// prints it when no clipboard is available.
func copyResume(db *index.DB, sessionID string) error {
	s, err := db.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	cmd := resumeCommand(s)
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Println(cmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
	return nil
}

// resumeCommand resumes the session in its working directory. Subagent
// transcripts cannot be resumed on their own, so they resume the parent.
func resumeCommand(s *index.SessionRow) string {
	id := s.SessionID
	if s.Kind == "subagent" && s.ParentSessionID != "" {
		id = s.ParentSessionID
	}
	cmd := "claude --resume " + id
	if s.Cwd == "" {
		return cmd
	}
	return fmt.Sprintf("cd %s && %s", s.Cwd, cmd)
}
