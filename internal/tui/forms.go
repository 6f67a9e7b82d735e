package tui

import (
	"errors"
	"strconv"
	"strings"

	"valos-cli/internal/api"
	"valos-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

// formState backs the lead and costing modal forms. A non-zero leadID or
// costingID means the form edits an existing record; otherwise it creates.
type formState struct {
	title     string
	fields    []formField
	focus     int
	leadID    int64
	costingID int64
}

func newField(key, label, value string) formField {
	in := textinput.New()
	in.Placeholder = label
	in.CharLimit = 256
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func newLeadForm(lead *model.Lead) *formState {
	f := &formState{title: "New lead"}
	var l model.Lead
	if lead != nil {
		l = *lead
		f.leadID = l.ID
		f.title = "Edit lead"
	}
	f.fields = []formField{
		newField("company_name", "Company", l.CompanyName),
		newField("owner", "Owner", l.Owner),
		newField("email", "Email", l.Email),
		newField("phone", "Phone", l.Phone),
		newField("location", "Location", l.Location),
		newField("project_code", "Project code", l.ProjectCode),
		newField("segment", "Segment", l.Segment),
		newField("notes", "Notes", l.Notes),
		newField("status", "Status", string(l.Status)),
	}
	f.fields[0].input.Focus()
	return f
}

func newCostingForm(costing *model.Costing) *formState {
	f := &formState{title: "New costing"}
	var c model.Costing
	if costing != nil {
		c = *costing
		f.costingID = c.ID
		f.title = "Edit costing"
	}
	f.fields = []formField{
		newField("project_code", "Project code", c.ProjectCode),
		newField("product_name", "Product name", c.ProductName),
		newField("sku_ml", "SKU (ml)", c.SkuML),
		newField("moq", "MOQ", intField(c.MOQ)),
		newField("bottle_cost", "Bottle cost", moneyField(c.BottleCost)),
		newField("cap_cost", "Cap cost", moneyField(c.CapCost)),
		newField("label_cost", "Label cost", moneyField(c.LabelCost)),
		newField("box_cost", "Box cost", moneyField(c.BoxCost)),
		newField("final_unit_price", "Final unit price", moneyField(c.FinalUnitPrice)),
		newField("status", "Status", c.Status),
	}
	f.fields[0].input.Focus()
	return f
}

func intField(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func moneyField(m model.Money) string {
	if m.IsZero() {
		return ""
	}
	return strconv.FormatFloat(m.Value(), 'f', -1, 64)
}

func (f *formState) focusNext() {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + 1) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *formState) focusPrev() {
	f.fields[f.focus].input.Blur()
	f.focus--
	if f.focus < 0 {
		f.focus = len(f.fields) - 1
	}
	f.fields[f.focus].input.Focus()
}

func (f *formState) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fl := range f.fields {
		out[fl.key] = strings.TrimSpace(fl.input.Value())
	}
	return out
}

// lead assembles a create payload. Company and owner are required up front
// so an obviously incomplete form never reaches the backend.
func (f *formState) lead() (model.Lead, error) {
	v := f.values()
	if v["company_name"] == "" || v["owner"] == "" {
		return model.Lead{}, errors.New("company and owner are required")
	}
	status := model.LeadStatus(v["status"])
	if status == "" {
		status = model.StatusNew
	}
	if !status.Valid() {
		return model.Lead{}, errors.New("unknown status " + v["status"])
	}
	return model.Lead{
		CompanyName: v["company_name"],
		Owner:       v["owner"],
		Email:       v["email"],
		Phone:       v["phone"],
		Location:    v["location"],
		ProjectCode: v["project_code"],
		Segment:     v["segment"],
		Notes:       v["notes"],
		Status:      status,
	}, nil
}

// leadUpdate assembles a partial update carrying every field, since the form
// was seeded with the current values and any of them may have been edited.
func (f *formState) leadUpdate() (api.LeadUpdate, error) {
	v := f.values()
	if v["company_name"] == "" || v["owner"] == "" {
		return api.LeadUpdate{}, errors.New("company and owner are required")
	}
	status := model.LeadStatus(v["status"])
	if status != "" && !status.Valid() {
		return api.LeadUpdate{}, errors.New("unknown status " + v["status"])
	}

	str := func(key string) *string {
		s := v[key]
		return &s
	}
	patch := api.LeadUpdate{
		CompanyName: str("company_name"),
		Owner:       str("owner"),
		Email:       str("email"),
		Phone:       str("phone"),
		Location:    str("location"),
		ProjectCode: str("project_code"),
		Segment:     str("segment"),
		Notes:       str("notes"),
	}
	if status != "" {
		patch.Status = &status
	}
	return patch, nil
}

// costingUpdate assembles the full-update payload for an existing costing.
// Numeric fields must parse; empty means 0.
func (f *formState) costingUpdate() (api.CostingUpdate, error) {
	v := f.values()
	if v["project_code"] == "" || v["product_name"] == "" {
		return api.CostingUpdate{}, errors.New("project code and product name are required")
	}

	num := func(key string) (float64, error) {
		s := v[key]
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n < 0 {
			return 0, errors.New("invalid " + key + " " + strconv.Quote(s))
		}
		return n, nil
	}

	var moq int
	if v["moq"] != "" {
		n, err := strconv.Atoi(v["moq"])
		if err != nil || n < 0 {
			return api.CostingUpdate{}, errors.New("invalid moq " + strconv.Quote(v["moq"]))
		}
		moq = n
	}

	out := api.CostingUpdate{
		ProjectCode: v["project_code"],
		ProductName: v["product_name"],
		SkuML:       v["sku_ml"],
		MOQ:         moq,
		Status:      v["status"],
	}
	var err error
	if out.BottleCost, err = num("bottle_cost"); err != nil {
		return api.CostingUpdate{}, err
	}
	if out.CapCost, err = num("cap_cost"); err != nil {
		return api.CostingUpdate{}, err
	}
	if out.LabelCost, err = num("label_cost"); err != nil {
		return api.CostingUpdate{}, err
	}
	if out.BoxCost, err = num("box_cost"); err != nil {
		return api.CostingUpdate{}, err
	}
	if out.FinalUnitPrice, err = num("final_unit_price"); err != nil {
		return api.CostingUpdate{}, err
	}
	return out, nil
}
