package tui

import (
	"fmt"
	"strings"

	"valos-cli/internal/model"
	"valos-cli/internal/optimistic"

	"github.com/charmbracelet/lipgloss"
)

type boardSelection struct {
	Col  int
	Item int
	// LeadID is the stable selected lead id (preferred over Item index for
	// tracking focus across moves and refetches).
	LeadID int64
}

type boardColumn struct {
	status model.LeadStatus
	leads  []model.Lead
}

type leadBoard struct {
	cols []boardColumn
}

// buildLeadBoard groups leads into the fixed pipeline columns. The search
// filter matches company, owner, location and project code,
// case-insensitively; filtering is display-only and never mutates the set.
func buildLeadBoard(leads []model.Lead, search string) leadBoard {
	cols := make([]boardColumn, 0, len(model.PipelineStatuses))
	for _, st := range model.PipelineStatuses {
		cols = append(cols, boardColumn{status: st})
	}

	search = strings.ToLower(strings.TrimSpace(search))
	match := func(l model.Lead) bool {
		if search == "" {
			return true
		}
		for _, f := range []string{l.CompanyName, l.Owner, l.Location, l.ProjectCode} {
			if strings.Contains(strings.ToLower(f), search) {
				return true
			}
		}
		return false
	}

	for _, l := range leads {
		if !match(l) {
			continue
		}
		for i := range cols {
			if cols[i].status == l.Status {
				cols[i].leads = append(cols[i].leads, l)
				break
			}
		}
		// Unknown statuses are not shown; the sales table still lists them.
	}

	return leadBoard{cols: cols}
}

func (b leadBoard) indexOfLead(id int64) (int, int, bool) {
	if id == 0 {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ii := range b.cols[ci].leads {
			if b.cols[ci].leads[ii].ID == id {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}

func (b leadBoard) clamp(sel boardSelection) boardSelection {
	if len(b.cols) == 0 {
		return boardSelection{Col: 0, Item: -1}
	}

	// Prefer stable selection by id when present.
	if ci, ii, ok := b.indexOfLead(sel.LeadID); ok {
		sel.Col = ci
		sel.Item = ii
	} else {
		sel.LeadID = 0
	}

	if sel.Col < 0 {
		sel.Col = 0
	}
	if sel.Col >= len(b.cols) {
		sel.Col = len(b.cols) - 1
	}

	n := len(b.cols[sel.Col].leads)
	if n == 0 {
		sel.Item = -1
		return sel
	}
	if sel.Item < 0 {
		sel.Item = 0
	}
	if sel.Item >= n {
		sel.Item = n - 1
	}
	sel.LeadID = b.cols[sel.Col].leads[sel.Item].ID
	return sel
}

func (b leadBoard) selectedLead(sel boardSelection) (model.Lead, bool) {
	sel = b.clamp(sel)
	if sel.Col < 0 || sel.Col >= len(b.cols) {
		return model.Lead{}, false
	}
	if sel.Item < 0 || sel.Item >= len(b.cols[sel.Col].leads) {
		return model.Lead{}, false
	}
	return b.cols[sel.Col].leads[sel.Item], true
}

func priorityGlyph(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "▲"
	case model.PriorityLow:
		return "▽"
	default:
		return "•"
	}
}

func renderLeadBoard(board leadBoard, sel boardSelection, set *optimistic.LeadSet, width, height int) string {
	n := len(board.cols)
	if n == 0 {
		return normalizePane("", width, height)
	}
	sel = board.clamp(sel)

	gap := 2
	avail := width - gap*(n-1)
	if avail < n {
		avail = n
	}
	colW := avail / n
	if colW < 12 {
		colW = 12
	}
	innerW := colW - 2
	if innerW < 1 {
		innerW = 1
	}

	muted := styleMuted()
	cardStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	cardSelectedStyle := cardStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	renderCard := func(l model.Lead, selected bool) string {
		title := strings.TrimSpace(l.CompanyName)
		if title == "" {
			title = "(unnamed)"
		}
		lines := []string{
			truncateText(priorityGlyph(l.Priority)+" "+title, innerW),
		}
		meta := strings.TrimSpace(l.Owner)
		if l.Location != "" {
			meta += " · " + l.Location
		}
		if meta != "" {
			lines = append(lines, muted.Render(truncateText(meta, innerW)))
		}
		switch set.StateOf(l.ID) {
		case optimistic.StatePending:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorPendingFg).Render(truncateText("~ saving", innerW)))
		case optimistic.StateReconciling:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorReconcilingFg).Render(truncateText("! syncing", innerW)))
		}

		inner := normalizePane(strings.Join(lines, "\n"), innerW, 0)
		if selected {
			return cardSelectedStyle.Render(inner)
		}
		return cardStyle.Render(inner)
	}

	renderCol := func(colIdx int, c boardColumn) string {
		head := fmt.Sprintf("%s (%d)", c.status.Label(), len(c.leads))
		head = truncateText(head, colW)
		hs := lipgloss.NewStyle().Bold(true).Foreground(statusColor(string(c.status)))
		if colIdx == sel.Col {
			hs = hs.Underline(true)
		}

		lines := []string{hs.Width(colW).Render(head)}
		if len(c.leads) == 0 {
			lines = append(lines, muted.Render("(empty)"))
			return normalizePane(strings.Join(lines, "\n"), colW, height)
		}
		lines = append(lines, "")

		for i, l := range c.leads {
			card := renderCard(l, colIdx == sel.Col && i == sel.Item)
			lines = append(lines, strings.Split(card, "\n")...)
			if i < len(c.leads)-1 {
				sepW := colW - 2
				if sepW < 0 {
					sepW = 0
				}
				lines = append(lines, muted.Render(" "+strings.Repeat("─", sepW)+" "))
			}
		}
		return normalizePane(strings.Join(lines, "\n"), colW, height)
	}

	rendered := make([]string, 0, n)
	for i, c := range board.cols {
		rendered = append(rendered, renderCol(i, c))
	}

	out := rendered[0]
	sep := strings.Repeat(" ", gap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, height)
}
