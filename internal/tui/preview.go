package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/render"
	"github.com/Zuo-Peng/cc-session-search/internal/search"
)

// previewRenderedMsg carries a finished background render.
type previewRenderedMsg struct {
	key     previewKey
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the whole session in the background, filtered to
// group, with the hit message marked.
func loadPreviewCmd(db *index.DB, r search.Result, k previewKey, query string, group *classify.Group, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, r.SessionID, render.Options{
			HitIdx:  r.MsgIdx,
			Context: -1,
			Width:   width,
			Query:   query,
			Group:   group,
			Color:   true,
		})
		return previewRenderedMsg{key: k, content: content, hitLine: hitLine, err: err}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
