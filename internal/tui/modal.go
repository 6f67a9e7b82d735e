package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func modalBodyWidth(termWidth int) int {
	w := termWidth - 12
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(termWidth int, title, content string) string {
	bodyW := modalBodyWidth(termWidth)

	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Render(truncateText(title, bodyW-2))

	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(content)

	box := lipgloss.JoinVertical(lipgloss.Left, header, body)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Render(box)
}

// renderAlertModal is the blocking error surface for explicit CRUD failures:
// the backend's detail message plus a single dismiss affordance.
func renderAlertModal(termWidth int, title, detail string) string {
	bodyW := modalBodyWidth(termWidth)
	msg := lipgloss.NewStyle().
		Foreground(colorErrorFg).
		Width(bodyW - 2).
		Render(detail)
	help := styleMuted().Render("enter/esc: dismiss")
	return renderModalBox(termWidth, title, msg+"\n\n"+help)
}

type confirmFocus int

const (
	confirmFocusConfirm confirmFocus = iota
	confirmFocusCancel
)

func renderConfirmModal(termWidth int, title, body string, focus confirmFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render("Delete")
	cancel := btnBase.Render("Cancel")
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render("Delete")
	} else {
		cancel = btnActive.Render("Cancel")
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)
	help := styleMuted().Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{body, "", controls, "", help}, "\n")
	return renderModalBox(termWidth, title, content)
}

// placeCentered renders the modal centered in the full terminal area.
// Overlaying on a dimmed backdrop is unreliable across terminals, so the
// modal replaces the view while open.
func placeCentered(modal string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
