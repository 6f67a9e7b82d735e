package tui

import (
	"fmt"
	"strconv"
	"strings"

	"valos-cli/internal/model"
	"valos-cli/internal/quote"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.modal {
	case modalAlert:
		return placeCentered(renderAlertModal(m.width, m.alertTitle, m.alertBody), m.width, m.height)
	case modalConfirmDelete:
		return placeCentered(renderConfirmModal(m.width, "Confirm delete", m.confirmBody, m.confirmFocus), m.width, m.height)
	case modalLeadForm, modalCostingForm:
		return placeCentered(m.renderForm(), m.width, m.height)
	}

	if m.view == viewLogin {
		return m.renderLogin()
	}

	header := m.renderTabs()
	var body string
	bodyH := m.height - 3
	switch m.view {
	case viewDashboard:
		body = m.renderDashboard(bodyH)
	case viewBoard:
		body = m.renderBoard(bodyH)
	case viewSales:
		body = m.renderSales(bodyH)
	case viewCostings:
		body = m.renderCostings(bodyH)
	case viewQuotation:
		body = m.renderQuotation(bodyH)
	case viewPerformance:
		body = m.renderPerformance(bodyH)
	}

	return strings.Join([]string{header, body, m.renderFooter()}, "\n")
}

func (m appModel) renderTabs() string {
	tabs := []view{viewDashboard, viewBoard, viewSales, viewCostings, viewQuotation, viewPerformance}
	parts := make([]string, 0, len(tabs))
	active := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(colorChromeMutedFg).Padding(0, 1)
	for i, v := range tabs {
		label := strconv.Itoa(i+1) + " " + v.title()
		if v == m.view {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return normalizePane(row, m.width, 1)
}

func (m appModel) renderFooter() string {
	left := m.footerHelp()
	right := m.client.Session.Username()
	if m.statusLine != "" {
		right = m.statusLine + "  " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return normalizePane(styleMuted().Render(left)+strings.Repeat(" ", gap)+styleMuted().Render(right), m.width, 1)
}

func (m appModel) footerHelp() string {
	switch m.view {
	case viewBoard:
		return "←→: column  ↑↓: card  shift+←→: move  p: priority  enter: detail  /: search  r: refresh  q: quit"
	case viewSales:
		return "↑↓: row  n/p: page  /: search  f: status filter  a: add  e: edit  d: delete  r: refresh  q: quit"
	case viewCostings:
		return "↑↓: row  n/p: page  /: search  a: add  e: edit  D: duplicate  d: delete  r: refresh  q: quit"
	case viewQuotation:
		return "↑↓: row  ←→: project  enter: edit qty  s: save  x: export  r: refresh  q: quit"
	case viewPerformance:
		return "r: refresh  q: quit"
	default:
		return "1-6: views  r: refresh  q: quit"
	}
}

func (m appModel) renderLogin() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("VALOS")
	subtitle := styleMuted().Render("internal sales panel")

	lines := []string{
		title + "  " + subtitle,
		"",
		"Username: " + m.login.username.View(),
		"Password: " + m.login.password.View(),
		"",
	}
	if m.login.busy {
		lines = append(lines, styleMuted().Render("Signing in…"))
	} else if m.login.errText != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render(m.login.errText))
	} else {
		lines = append(lines, styleMuted().Render("tab: switch field   enter: sign in   ctrl+c: quit"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
	return placeCentered(box, m.width, m.height)
}

func statCard(label, value string, accent lipgloss.TerminalColor, w int) string {
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	content := valueStyle.Render(value) + "\n" + styleMuted().Render(label)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Width(w).
		Padding(0, 1).
		Render(content)
}

func (m appModel) renderDashboard(height int) string {
	cardW := (m.width - 8) / 4
	if cardW < 14 {
		cardW = 14
	}

	// Fresh totals when fetched, cached snapshot totals until then.
	leadsVal := strconv.Itoa(m.leadsTotal)
	leadsNote := ""
	if m.leadsLoading && m.leadsTotal == 0 {
		leadsVal = strconv.Itoa(m.cachedLeads)
		leadsNote = " (cached)"
	}
	costVal := strconv.Itoa(m.costingsTotal)
	costNote := ""
	if m.costingsLoading && m.costingsTotal == 0 {
		costVal = strconv.Itoa(m.cachedCostings)
		costNote = " (cached)"
	}

	// A failed stats fetch contributes safe zeros instead of erroring the
	// whole dashboard.
	var st model.LeadStats
	if m.stats != nil {
		st = *m.stats
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("leads"+leadsNote, leadsVal, colorStatusNew, cardW), " ",
		statCard("costings"+costNote, costVal, colorStatusQualified, cardW), " ",
		statCard("active pipeline", strconv.Itoa(st.ActivePipeline()), colorStatusContacted, cardW), " ",
		statCard("conversion", fmt.Sprintf("%.1f%%", st.ConversionRate()), colorStatusConverted, cardW),
	)

	lines := []string{"", cards, ""}
	if m.leadsErr != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render("leads: "+m.leadsErr))
	}
	if m.costingsErr != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render("costings: "+m.costingsErr))
	}
	if m.statsErr != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render("stats: "+m.statsErr))
	}

	lines = append(lines, "", styleMuted().Render("Recent leads"))
	leads := m.leadSet.Leads()
	max := 8
	if len(leads) < max {
		max = len(leads)
	}
	for _, l := range leads[:max] {
		st := lipgloss.NewStyle().Foreground(statusColor(string(l.Status)))
		lines = append(lines, "  "+padCell(l.CompanyName, 28)+" "+padCell(l.Owner, 16)+" "+st.Render(l.Status.Label()))
	}

	return normalizePane(strings.Join(lines, "\n"), m.width, height)
}

func (m appModel) renderBoard(height int) string {
	var top string
	if m.boardSearching || m.boardSearch.Value() != "" {
		top = "Search: " + m.boardSearch.View()
	} else {
		top = styleMuted().Render("/ to search")
	}
	top = normalizePane(top, m.width, 1)

	board := buildLeadBoard(m.leadSet.Leads(), m.boardSearch.Value())
	sel := board.clamp(m.boardSel)

	boardW := m.width
	detailW := 0
	if m.boardDetail {
		detailW = m.width / 3
		if detailW < 24 {
			detailW = 24
		}
		boardW = m.width - detailW - 1
	}

	rendered := renderLeadBoard(board, sel, m.leadSet, boardW, height-1)
	if !m.boardDetail {
		return top + "\n" + rendered
	}

	detail := m.renderLeadDetail(board, sel, detailW, height-1)
	return top + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered, " ", detail)
}

func (m appModel) renderLeadDetail(board leadBoard, sel boardSelection, width, height int) string {
	lead, ok := board.selectedLead(sel)
	if !ok {
		return normalizePane(styleMuted().Render("(no lead selected)"), width, height)
	}

	bold := lipgloss.NewStyle().Bold(true)
	lines := []string{
		bold.Render(truncateText(lead.CompanyName, width)),
		styleMuted().Render(truncateText(lead.Owner, width)),
		"",
	}
	add := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, truncateText(styleMuted().Render(label+": ")+value, width))
	}
	add("Status", lead.Status.Label())
	add("Priority", string(lead.Priority))
	add("Email", lead.Email)
	add("Phone", lead.Phone)
	add("Location", lead.Location)
	add("Project", lead.ProjectCode)
	add("Segment", lead.Segment)

	if strings.TrimSpace(lead.Notes) != "" {
		lines = append(lines, "", styleMuted().Render("Notes"))
		lines = append(lines, strings.Split(renderMarkdown(lead.Notes, width-2), "\n")...)
	}

	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func (m appModel) renderSales(height int) string {
	var top string
	filter := "all"
	if m.salesStatus != "" {
		filter = string(m.salesStatus)
	}
	if m.salesSearching {
		top = "Search: " + m.salesSearch.View()
	} else {
		top = styleMuted().Render(fmt.Sprintf("filter: %s   page: %d/%d   total: %d", filter,
			m.salesSkip/50+1, maxInt(model.TotalPages(m.leadsTotal, 50), 1), m.leadsTotal))
	}
	top = normalizePane(top, m.width, 1)

	cols := []int{24, 14, 20, 14, 12, 11}
	header := tableHeader([]string{"Company", "Owner", "Email", "Location", "Project", "Status"}, cols)

	leads := m.leadSet.Leads()
	rows := make([]string, 0, len(leads))
	for i, l := range leads {
		cells := "  " + padCell(l.CompanyName, cols[0]) + padCell(l.Owner, cols[1]) + padCell(l.Email, cols[2]) +
			padCell(l.Location, cols[3]) + padCell(l.ProjectCode, cols[4]) +
			lipgloss.NewStyle().Foreground(statusColor(string(l.Status))).Render(padCell(l.Status.Label(), cols[5]))
		if i == m.salesIdx {
			cells = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(cells)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		note := "(no leads)"
		if m.leadsErr != "" {
			note = m.leadsErr
		} else if m.leadsLoading {
			note = "loading…"
		}
		rows = append(rows, styleMuted().Render("  "+note))
	}

	return top + "\n" + normalizePane(header+"\n"+strings.Join(rows, "\n"), m.width, height-1)
}

func (m appModel) renderCostings(height int) string {
	var top string
	if m.costSearching {
		top = "Search: " + m.costSearch.View()
	} else {
		top = styleMuted().Render(fmt.Sprintf("page: %d/%d   total: %d",
			m.costSkip/50+1, maxInt(model.TotalPages(m.costingsTotal, 50), 1), m.costingsTotal))
	}
	top = normalizePane(top, m.width, 1)

	cols := []int{10, 26, 8, 8, 12, 10}
	header := tableHeader([]string{"Project", "Product", "SKU", "MOQ", "Unit price", "Status"}, cols)

	rows := make([]string, 0, len(m.costings))
	for i, c := range m.costings {
		cells := "  " + padCell(c.ProjectCode, cols[0]) + padCell(c.ProductName, cols[1]) + padCell(c.SkuML, cols[2]) +
			padCell(strconv.Itoa(c.MOQ), cols[3]) + padCell(quote.FormatMoney(c.FinalUnitPrice.Value()), cols[4]) +
			padCell(c.Status, cols[5])
		if i == m.costIdx {
			cells = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(cells)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		note := "(no costings)"
		if m.costingsErr != "" {
			note = m.costingsErr
		} else if m.costingsLoading {
			note = "loading…"
		}
		rows = append(rows, styleMuted().Render("  "+note))
	}

	return top + "\n" + normalizePane(header+"\n"+strings.Join(rows, "\n"), m.width, height-1)
}

func (m appModel) renderQuotation(height int) string {
	q := m.quotation

	if len(q.projects) == 0 {
		note := "(no projects; add costings with project codes first)"
		if m.costingsLoading {
			note = "loading…"
		}
		return normalizePane(styleMuted().Render(note), m.width, height)
	}

	// Project picker.
	parts := make([]string, 0, len(q.projects))
	active := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(colorChromeMutedFg).Padding(0, 1)
	for i, code := range q.projects {
		if i == q.projIdx {
			parts = append(parts, active.Render(code))
		} else {
			parts = append(parts, inactive.Render(code))
		}
	}
	picker := normalizePane(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width, 1)

	cols := []int{26, 8, 12, 10, 14}
	header := tableHeader([]string{"Product", "SKU", "Unit price", "Qty", "Total"}, cols)

	rows := make([]string, 0, len(q.items))
	for i, it := range q.items {
		qtyCell := q.qtyText[it.ID]
		if i == q.row && q.editing {
			qtyCell += "▏"
		}
		cells := "  " + padCell(it.ProductName, cols[0]) + padCell(it.SkuML, cols[1]) +
			padCell(quote.FormatMoney(it.FinalUnitPrice.Value()), cols[2]) +
			padCell(qtyCell, cols[3]) +
			padCell(quote.FormatMoney(quote.RowTotal(it, q.quantities)), cols[4])
		if i == q.row {
			cells = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(cells)
		}
		rows = append(rows, cells)
	}

	grand := quote.GrandTotal(q.items, q.quantities)
	summary := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  %d items   total qty %d   grand total %s",
			len(q.items), quote.TotalQuantity(q.quantities), quote.FormatMoney(grand)))

	lines := []string{picker, header}
	lines = append(lines, rows...)
	lines = append(lines, "", summary)
	if q.status != "" {
		lines = append(lines, styleMuted().Render("  "+q.status))
	}
	return normalizePane(strings.Join(lines, "\n"), m.width, height)
}

func (m appModel) renderPerformance(height int) string {
	var st model.LeadStats
	if m.stats != nil {
		st = *m.stats
	}

	cardW := (m.width - 8) / 4
	if cardW < 14 {
		cardW = 14
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("total leads", strconv.Itoa(st.Total), colorStatusNew, cardW), " ",
		statCard("active pipeline", strconv.Itoa(st.ActivePipeline()), colorStatusContacted, cardW), " ",
		statCard("conversion", fmt.Sprintf("%.1f%%", st.ConversionRate()), colorStatusConverted, cardW), " ",
		statCard("loss", fmt.Sprintf("%.1f%%", st.LossRate()), colorStatusLost, cardW),
	)

	counts := map[model.LeadStatus]int{
		model.StatusNew:       st.New,
		model.StatusContacted: st.Contacted,
		model.StatusQualified: st.Qualified,
		model.StatusConverted: st.Converted,
		model.StatusLost:      st.Lost,
	}

	lines := []string{"", cards, "", styleMuted().Render("Pipeline breakdown")}
	for _, status := range model.PipelineStatuses {
		n := counts[status]
		bar := ""
		if st.Total > 0 {
			w := n * 30 / st.Total
			bar = strings.Repeat("█", w)
		}
		style := lipgloss.NewStyle().Foreground(statusColor(string(status)))
		lines = append(lines, fmt.Sprintf("  %s %4d  %s",
			padCell(status.Label(), 12), n, style.Render(bar)))
	}
	if m.statsErr != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render(m.statsErr))
	}
	lines = append(lines, "", styleMuted().Render("auto-refreshes every 30s"))

	return normalizePane(strings.Join(lines, "\n"), m.width, height)
}

func (m appModel) renderForm() string {
	f := m.form
	if f == nil {
		return ""
	}
	lines := make([]string, 0, len(f.fields)+3)
	for i, fl := range f.fields {
		label := padCell(fl.label, 14)
		if i == f.focus {
			label = lipgloss.NewStyle().Bold(true).Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		lines = append(lines, label+" "+fl.input.View())
	}
	lines = append(lines, "", styleMuted().Render("tab: next field   enter: save   esc: cancel"))
	return renderModalBox(m.width, f.title, strings.Join(lines, "\n"))
}

func tableHeader(labels []string, widths []int) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, l := range labels {
		b.WriteString(padCell(l, widths[i]))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg).Render(b.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
