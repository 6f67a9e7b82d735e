package quote

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"

	"valos-cli/internal/model"
)

func moneyFromJSON(t *testing.T, raw string) model.Money {
	t.Helper()
	var m model.Money
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return m
}

func TestRowTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string // raw JSON
		qty      int
		haveQty  bool
		expected float64
	}{
		{name: "numeric string price", price: `"12.50"`, qty: 3, haveQty: true, expected: 37.50},
		{name: "integer string price", price: `"7"`, qty: 2, haveQty: true, expected: 14},
		{name: "json number price", price: `19.99`, qty: 10, haveQty: true, expected: 199.9},
		{name: "zero quantity", price: `"12.50"`, qty: 0, haveQty: true, expected: 0},
		{name: "missing quantity", price: `"12.50"`, expected: 0},
		{name: "empty string price", price: `""`, qty: 5, haveQty: true, expected: 0},
		{name: "garbage price", price: `"n/a"`, qty: 5, haveQty: true, expected: 0},
		{name: "nan string price", price: `"NaN"`, qty: 5, haveQty: true, expected: 0},
		{name: "infinity string price", price: `"Infinity"`, qty: 5, haveQty: true, expected: 0},
		{name: "negative infinity string price", price: `"-Inf"`, qty: 5, haveQty: true, expected: 0},
		{name: "null price", price: `null`, qty: 5, haveQty: true, expected: 0},
		{name: "negative quantity clamps to zero", price: `"10"`, qty: -3, haveQty: true, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := model.Costing{ID: 1, FinalUnitPrice: moneyFromJSON(t, tt.price)}
			q := Quantities{}
			if tt.haveQty {
				q[item.ID] = tt.qty
			}
			got := RowTotal(item, q)
			if math.IsNaN(got) {
				t.Fatalf("RowTotal returned NaN for price %s", tt.price)
			}
			if got != tt.expected {
				t.Fatalf("RowTotal = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGrandTotalScenario(t *testing.T) {
	// items = [{id:1, unitPrice:"12.50"}, {id:2, unitPrice:"7"}],
	// quantities = {1: 3, 2: 0} -> rowTotals = [37.50, 0], grandTotal = 37.50.
	items := []model.Costing{
		{ID: 1, FinalUnitPrice: moneyFromJSON(t, `"12.50"`)},
		{ID: 2, FinalUnitPrice: moneyFromJSON(t, `"7"`)},
	}
	q := Quantities{1: 3, 2: 0}

	if got := RowTotal(items[0], q); got != 37.50 {
		t.Fatalf("row 1 = %v, want 37.50", got)
	}
	if got := RowTotal(items[1], q); got != 0 {
		t.Fatalf("row 2 = %v, want 0", got)
	}
	if got := GrandTotal(items, q); got != 37.50 {
		t.Fatalf("grand total = %v, want 37.50", got)
	}
}

func TestGrandTotalAdditivity(t *testing.T) {
	items := []model.Costing{
		{ID: 1, FinalUnitPrice: moneyFromJSON(t, `"3.33"`)},
		{ID: 2, FinalUnitPrice: moneyFromJSON(t, `"0.07"`)},
		{ID: 3, FinalUnitPrice: moneyFromJSON(t, `"100"`)},
		{ID: 4, FinalUnitPrice: moneyFromJSON(t, `""`)},
	}
	q := Quantities{1: 11, 2: 10000, 3: 1, 4: 9}

	var sum float64
	for _, it := range items {
		sum += RowTotal(it, q)
	}
	if got := GrandTotal(items, q); got != sum {
		t.Fatalf("grand total %v does not equal sum of row totals %v", got, sum)
	}
}

func TestGrandTotalEmptySet(t *testing.T) {
	if got := GrandTotal(nil, Quantities{}); got != 0 {
		t.Fatalf("grand total of empty set = %v, want 0", got)
	}
}

func TestGrandTotalIdempotent(t *testing.T) {
	items := []model.Costing{{ID: 1, FinalUnitPrice: moneyFromJSON(t, `"2.25"`)}}
	q := Quantities{1: 4}
	first := GrandTotal(items, q)
	second := GrandTotal(items, q)
	if first != second {
		t.Fatalf("two calls with unchanged inputs differ: %v vs %v", first, second)
	}
}

func TestSeedQuantitiesResetsWholesale(t *testing.T) {
	oldItems := []model.Costing{{ID: 1}, {ID: 2}}
	q := SeedQuantities(oldItems)
	q[1] = 7 // user edit

	newItems := []model.Costing{
		{ID: 3, FinalUnitPrice: moneyFromJSON(t, `"2.00"`)},
		{ID: 4, FinalUnitPrice: moneyFromJSON(t, `"1.50"`)},
	}
	q = SeedQuantities(newItems)

	if len(q) != 2 {
		t.Fatalf("expected exactly the new project's items, got %d entries", len(q))
	}
	if _, ok := q[1]; ok {
		t.Fatalf("old project quantity leaked into the new map")
	}
	for _, it := range newItems {
		if q[it.ID] != SeedQuantity {
			t.Fatalf("item %d seeded with %d, want %d", it.ID, q[it.ID], SeedQuantity)
		}
	}

	// grandTotal = 10000 * sum(unitPrices of new project's items).
	want := float64(SeedQuantity) * (2.00 + 1.50)
	if got := GrandTotal(newItems, q); got != want {
		t.Fatalf("seeded grand total = %v, want %v", got, want)
	}
}

func TestBuild(t *testing.T) {
	items := []model.Costing{
		{ID: 1, ProjectCode: "VL-01", ProductName: "Amber 50ml", FinalUnitPrice: moneyFromJSON(t, `"12.50"`)},
		{ID: 2, ProjectCode: "VL-01", ProductName: "Amber 100ml", FinalUnitPrice: moneyFromJSON(t, `"7"`)},
	}
	q := Quantities{1: 3}

	quotation := Build("VL-01", items, q)
	if quotation.ProjectCode != "VL-01" {
		t.Fatalf("project code = %q", quotation.ProjectCode)
	}
	if len(quotation.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(quotation.Items))
	}
	if quotation.Items[0].Total != 37.50 || quotation.Items[1].Total != 0 {
		t.Fatalf("item totals = %v, %v", quotation.Items[0].Total, quotation.Items[1].Total)
	}
	if quotation.Items[0].UnitPrice != 12.50 {
		t.Fatalf("unit price = %v, want 12.50", quotation.Items[0].UnitPrice)
	}
	if quotation.GrandTotal != 37.50 {
		t.Fatalf("grand total = %v, want 37.50", quotation.GrandTotal)
	}
}

func TestProjectCodesAndFilter(t *testing.T) {
	items := []model.Costing{
		{ID: 1, ProjectCode: "B"},
		{ID: 2, ProjectCode: "A"},
		{ID: 3, ProjectCode: "B"},
		{ID: 4, ProjectCode: ""},
	}

	codes := ProjectCodes(items)
	if len(codes) != 2 || codes[0] != "B" || codes[1] != "A" {
		t.Fatalf("project codes = %v, want [B A] in first-seen order", codes)
	}

	filtered := FilterByProject(items, "B")
	if len(filtered) != 2 || filtered[0].ID != 1 || filtered[1].ID != 3 {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{37.5, "37.50"},
		{0, "0.00"},
		{199.999, "200.00"},
		{math.NaN(), "0.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
