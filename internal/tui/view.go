package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// layout holds the panel sizes for one terminal size. The list takes 40%
// of the width and the preview the rest; borders take two columns and two
// rows per panel.
type layout struct {
	listW    int
	previewW int
	panelH   int
}

func computeLayout(width, height int) layout {
	if width <= 0 || height <= 0 {
		return layout{listW: 40, previewW: 60, panelH: 20}
	}
	return layout{
		listW:    max(width*40/100-4, 20),
		previewW: max(width*60/100-4, 20),
		// input row, status bar and the top and bottom borders
		panelH: max(height-6, 5),
	}
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel and, inside the list, to the
// index of the result under the pointer.
func (l layout) hitTest(x, y, offset int) (mouseRegion, int) {
	const top = 2 // input row and top border
	if y < top || y >= top+l.panelH {
		return regionNone, -1
	}
	switch {
	case x >= 1 && x <= l.listW:
		return regionList, offset + (y-top)/linesPerItem
	case x > l.listW+2:
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	list := stylePanelBorder.
		Width(m.lay.listW).
		Height(m.lay.panelH).
		Render(m.renderList(m.lay.listW, m.lay.panelH))

	m.preview.Width = m.lay.previewW
	m.preview.Height = m.lay.panelH
	preview := styleActiveBorder.
		Width(m.lay.previewW).
		Height(m.lay.panelH).
		Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		m.statusBar(),
	)
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%s: %d results", m.mode, len(m.results))}
	if r, ok := m.selected(); ok && r.Tokens > 0 {
		parts = append(parts, fmt.Sprintf("%s tok $%.2f", humanize.Comma(r.Tokens), r.Cost))
	}
	parts = append(parts,
		"tab filter: "+groupName(m.activeGroup()),
		"up/dn/click select",
		"C-u/C-d preview",
		"enter copy resume cmd",
		"esc quit",
	)
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
