package tui

import (
	"strconv"
	"strings"

	"valos-cli/internal/model"
	"valos-cli/internal/quote"

	tea "github.com/charmbracelet/bubbletea"
)

// quotationState drives the quotation view. Quantities live in two layers:
// qtyText holds the raw text as typed (so a partially entered or invalid
// value is never rewritten under the cursor) and quantities holds the parsed
// value the totals are computed from. Invalid or empty text parses to 0.
type quotationState struct {
	projects []string
	projIdx  int

	items      []model.Costing
	quantities quote.Quantities
	qtyText    map[int64]string

	row     int
	editing bool
	status  string
}

func newQuotationState() quotationState {
	return quotationState{
		quantities: quote.Quantities{},
		qtyText:    map[int64]string{},
	}
}

func (q *quotationState) projectCode() string {
	if q.projIdx < 0 || q.projIdx >= len(q.projects) {
		return ""
	}
	return q.projects[q.projIdx]
}

// syncItems installs a freshly fetched costing list. The project picker
// follows the distinct project codes; the selected project is kept when it
// still exists. Quantities survive for items still present, new items are
// seeded.
func (q *quotationState) syncItems(all []model.Costing) {
	selected := q.projectCode()
	q.projects = quote.ProjectCodes(all)

	q.projIdx = 0
	for i, code := range q.projects {
		if code == selected {
			q.projIdx = i
			break
		}
	}

	code := q.projectCode()
	if code == "" {
		q.items = nil
		q.quantities = quote.Quantities{}
		q.qtyText = map[int64]string{}
		return
	}
	if code != selected {
		q.selectProject(all, q.projIdx)
		return
	}

	q.items = quote.FilterByProject(all, code)
	for _, it := range q.items {
		if _, ok := q.quantities[it.ID]; !ok {
			q.quantities[it.ID] = quote.SeedQuantity
			q.qtyText[it.ID] = strconv.Itoa(quote.SeedQuantity)
		}
	}
	if q.row >= len(q.items) {
		q.row = len(q.items) - 1
	}
	if q.row < 0 {
		q.row = 0
	}
}

// selectProject switches the picker. Every quantity is reseeded wholesale;
// entered quantities never leak between projects.
func (q *quotationState) selectProject(all []model.Costing, idx int) {
	if idx < 0 || idx >= len(q.projects) {
		return
	}
	q.projIdx = idx
	q.items = quote.FilterByProject(all, q.projects[idx])
	q.quantities = quote.SeedQuantities(q.items)
	q.qtyText = make(map[int64]string, len(q.items))
	for _, it := range q.items {
		q.qtyText[it.ID] = strconv.Itoa(quote.SeedQuantity)
	}
	q.row = 0
	q.editing = false
	q.status = ""
}

// setQtyText records raw input for one row and reparses it. parseInt||0
// semantics: garbage and empty both mean 0, never an error.
func (q *quotationState) setQtyText(id int64, text string) {
	q.qtyText[id] = text
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		n = 0
	}
	q.quantities[id] = n
}

func (q *quotationState) selectedItem() (model.Costing, bool) {
	if q.row < 0 || q.row >= len(q.items) {
		return model.Costing{}, false
	}
	return q.items[q.row], true
}

func (q *quotationState) build() model.Quotation {
	return quote.Build(q.projectCode(), q.items, q.quantities)
}

func (m appModel) updateQuotationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := &m.quotation

	if q.editing {
		it, ok := q.selectedItem()
		if !ok {
			q.editing = false
			return m, nil
		}
		switch msg.String() {
		case "enter", "esc":
			q.editing = false
			return m, nil
		case "backspace":
			t := q.qtyText[it.ID]
			if t != "" {
				q.setQtyText(it.ID, t[:len(t)-1])
			}
			return m, nil
		default:
			if len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9' {
				q.setQtyText(it.ID, q.qtyText[it.ID]+string(msg.Runes))
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "up", "k":
		if q.row > 0 {
			q.row--
		}
		return m, nil
	case "down", "j":
		if q.row < len(q.items)-1 {
			q.row++
		}
		return m, nil
	case "left", "h", "[":
		if q.projIdx > 0 {
			q.selectProject(m.costings, q.projIdx-1)
		}
		return m, nil
	case "right", "l", "]":
		if q.projIdx < len(q.projects)-1 {
			q.selectProject(m.costings, q.projIdx+1)
		}
		return m, nil
	case "enter":
		if _, ok := q.selectedItem(); ok {
			q.editing = true
		}
		return m, nil
	case "0":
		// Shortcut: zero out the selected row.
		if it, ok := q.selectedItem(); ok {
			q.setQtyText(it.ID, "0")
		}
		return m, nil
	case "s":
		if q.projectCode() == "" || len(q.items) == 0 {
			return m, nil
		}
		return m, saveQuotationCmd(m.client, q.build())
	case "x":
		if q.projectCode() == "" {
			return m, nil
		}
		return m, exportQuotationCmd(m.client, q.projectCode())
	case "r":
		return m, m.refetchCostings()
	}
	return m, nil
}
