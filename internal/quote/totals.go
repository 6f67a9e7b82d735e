// Package quote computes quotation totals. Everything here is a pure
// function of the current item set and quantity map, so callers may
// recompute on every render.
package quote

import (
	"fmt"
	"math"

	"valos-cli/internal/model"
)

// SeedQuantity is the quantity every line item starts with when a project
// is selected.
const SeedQuantity = 10000

// Quantities maps costing id -> user-entered quantity. Missing entries
// count as 0.
type Quantities map[int64]int

// SeedQuantities builds a fresh quantity map for a project's items, every
// item at SeedQuantity. Selecting a new project replaces the old map
// wholesale; quantities are never merged across projects.
func SeedQuantities(items []model.Costing) Quantities {
	q := make(Quantities, len(items))
	for _, it := range items {
		q[it.ID] = SeedQuantity
	}
	return q
}

// RowTotal is quantity × unit price. Missing quantities and unparsable
// prices both contribute 0, never NaN and never an error.
func RowTotal(item model.Costing, quantities Quantities) float64 {
	qty := quantities[item.ID]
	if qty < 0 {
		qty = 0
	}
	return float64(qty) * item.FinalUnitPrice.Value()
}

// GrandTotal sums RowTotal over all items; 0 for an empty set.
// Accumulation stays in full precision; rounding happens only at display
// time so per-row rounding error cannot compound.
func GrandTotal(items []model.Costing, quantities Quantities) float64 {
	var sum float64
	for _, it := range items {
		sum += RowTotal(it, quantities)
	}
	return sum
}

// TotalQuantity sums all entered quantities for the summary card.
func TotalQuantity(quantities Quantities) int {
	var sum int
	for _, q := range quantities {
		if q > 0 {
			sum += q
		}
	}
	return sum
}

// FilterByProject returns the costings belonging to one project code,
// preserving input order.
func FilterByProject(items []model.Costing, projectCode string) []model.Costing {
	out := make([]model.Costing, 0, len(items))
	for _, it := range items {
		if it.ProjectCode == projectCode {
			out = append(out, it)
		}
	}
	return out
}

// ProjectCodes returns the distinct non-empty project codes in first-seen
// order, which drives the project picker.
func ProjectCodes(items []model.Costing) []string {
	seen := map[string]bool{}
	var codes []string
	for _, it := range items {
		code := it.ProjectCode
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// Build assembles the quotation payload the backend expects, with per-item
// totals and the grand total computed from the same inputs the view shows.
func Build(projectCode string, items []model.Costing, quantities Quantities) model.Quotation {
	q := model.Quotation{
		ProjectCode: projectCode,
		Items:       make([]model.QuotationItem, 0, len(items)),
	}
	for _, it := range items {
		q.Items = append(q.Items, model.QuotationItem{
			CostingID:   it.ID,
			ProductName: it.ProductName,
			Quantity:    quantities[it.ID],
			UnitPrice:   it.FinalUnitPrice.Value(),
			Total:       RowTotal(it, quantities),
		})
	}
	q.GrandTotal = GrandTotal(items, quantities)
	return q
}

// FormatMoney renders a value with two decimals for display. This is the
// only place rounding happens.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}
