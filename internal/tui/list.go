package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

const projectWidth = 16

// renderList draws the visible slice of results, padded to height.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	end := min(m.offset+height/linesPerItem, len(m.results))
	lines := make([]string, 0, height)
	for i := m.offset; i < end; i++ {
		lines = append(lines, formatResultLine(m.results[i], width, i == m.cursor)...)
	}
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

// formatResultLine renders one result as two rows:
//
//	> project          03-04 summary
//	    [Category] snippet
func formatResultLine(r search.Result, width int, selected bool) []string {
	style := styleProject
	if r.Kind == "subagent" {
		style = styleSubagent
	}
	project := style.Render(runewidth.FillRight(runewidth.Truncate(r.Project, projectWidth, ""), projectWidth))

	date := r.UpdatedAt
	if len(date) >= 10 {
		date = date[5:10]
	}

	marker := "  "
	if selected {
		marker = styleListSelected.Render("> ")
	}
	// marker, project, date and the separating spaces
	summary := fit(oneLine(r.Summary), width-projectWidth-10)
	head := fmt.Sprintf("%s%s %s %s", marker, project, date, summary)

	snippet := strings.NewReplacer(">>>", "", "<<<", "").Replace(oneLine(r.Snippet))
	if r.Category != "" {
		snippet = "[" + classify.Category(r.Category).Label() + "] " + snippet
	}
	body := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(fit(snippet, width-4))

	return []string{head, body}
}

func oneLine(s string) string {
	return strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
}

// fit truncates s to at most w display columns.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "")
}

// adjustListScroll keeps the cursor inside the visible part of the list.
func (m *model) adjustListScroll(listHeight int) {
	visible := max(listHeight/linesPerItem, 1)
	m.offset = min(m.offset, m.cursor)
	m.offset = max(m.offset, m.cursor-visible+1)
}
