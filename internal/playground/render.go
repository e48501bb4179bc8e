package playground

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	zIndexPoint   = 1
	zIndexControl = 10
	zIndexDragged = 50
	zIndexOverlay = 100
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	var view tea.View
	if m.quitting {
		view.SetContent("")
		return view
	}

	canvas := lipgloss.NewCanvas()

	for _, pt := range m.layout.Points() {
		marker := lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Render("◆")
		canvas.AddLayers(lipgloss.NewLayer(marker).
			X(int(pt.Position.X)).
			Y(int(pt.Position.Y)).
			Z(zIndexPoint).
			ID("point-" + pt.ID))
	}

	for _, id := range m.controls {
		if m.layout.IsHidden(id) {
			continue
		}
		pos := m.positionOf(id)
		x := int(pos.X - m.halfSize().Width)
		y := int(pos.Y - m.halfSize().Height)

		z := zIndexControl
		if id == m.active {
			z = zIndexDragged
		}
		canvas.AddLayers(lipgloss.NewLayer(m.renderControl(id)).
			X(x).
			Y(y).
			Z(z).
			ID(id))
	}

	if m.showHelp {
		help := m.renderHelp()
		w := lipgloss.Width(help)
		h := lipgloss.Height(help)
		canvas.AddLayers(lipgloss.NewLayer(help).
			X((m.width - w) / 2).
			Y((m.height - h) / 2).
			Z(zIndexOverlay).
			ID("help"))
	}

	canvas.AddLayers(lipgloss.NewLayer(m.renderStatus()).
		X(0).
		Y(m.height - statusHeight).
		Z(zIndexOverlay).
		ID("status"))

	view.SetContent(lipgloss.Sprint(canvas.Render()))
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	return view
}

func (m *Model) renderControl(id string) string {
	border := lipgloss.RoundedBorder()
	color := lipgloss.Color("8")

	switch {
	case id == m.active && m.snapFlash:
		color = lipgloss.Color("10")
	case id == m.active:
		color = lipgloss.Color("12")
	case m.selected[id]:
		color = lipgloss.Color("11")
	default:
		if _, ok := m.registry.PositionGroupOf(id); ok {
			color = lipgloss.Color("14")
		}
	}

	label := id
	if icon := m.layout.Attr("icons", id); icon != "" {
		label = icon + " " + id
	}

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(color).
		Width(controlWidth - 2).
		Align(lipgloss.Center).
		Render(truncate(label, controlWidth-2))
}

func (m *Model) renderStatus() string {
	left := m.status
	if m.selecting {
		left = "[select] " + left
	}
	if m.hasPreview {
		for id, p := range m.preview {
			left = fmt.Sprintf("%s  (%.0f, %.0f)", id, p.X, p.Y)
			break
		}
	}

	right := fmt.Sprintf("%d buttons · %d groups · %d points",
		len(m.controls), len(m.registry.PositionGroups()), len(m.layout.Points()))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	bar := " " + left + strings.Repeat(" ", gap) + right + " "

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#1a1a2e")).
		Foreground(lipgloss.Color("#a0a0b0")).
		Width(m.width).
		Render(bar)
}

func (m *Model) renderHelp() string {
	rows := []string{
		"hold + drag   move a button (snaps to edges, centers, points)",
		"G             toggle selection mode",
		"g             group selection (moves together)",
		"U             panel from selection",
		"u             ungroup",
		"m             add magnetic point",
		"x             remove last magnetic point",
		"p / r         save / restore preset",
		"e             export layout to clipboard",
		"R             reset positions",
		"q             quit",
	}
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")).
		Bold(true).
		Render("Pinboard playground")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 2).
		Render(title + "\n\n" + strings.Join(rows, "\n"))
}

func truncate(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}
