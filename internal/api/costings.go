package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"valos-cli/internal/model"
)

type CostingListParams struct {
	Skip        int
	Limit       int // defaults to 50
	ProjectCode string
	Status      string
	Search      string
}

func (p CostingListParams) values() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip))
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if p.ProjectCode != "" {
		q.Set("project_code", p.ProjectCode)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (c *Client) ListCostings(ctx context.Context, p CostingListParams) (*model.CostingPage, error) {
	var page model.CostingPage
	if err := c.get(ctx, "/costings/", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetCosting(ctx context.Context, id int64) (*model.Costing, error) {
	var out model.Costing
	if err := c.get(ctx, fmt.Sprintf("/costing/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCosting posts a new costing as a multipart form, skipping empty
// fields the way the backend's form endpoint expects.
func (c *Client) CreateCosting(ctx context.Context, fields map[string]string) (*model.Costing, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Stable field order keeps requests reproducible in tests.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(fields[k])
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out model.Costing
	if err := c.do(ctx, http.MethodPost, "/costing/new/form/", nil, &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CostingUpdate is the full-update payload for PUT /costing/{id}/edit/.
// Every field is sent: the endpoint replaces the record, so a zero here
// really means "clear the value", never "keep the old one". Callers that
// want to touch only some fields seed the rest from the current costing.
type CostingUpdate struct {
	ProjectCode    string  `json:"project_code"`
	ProductName    string  `json:"product_name"`
	SkuML          string  `json:"sku_ml"`
	MOQ            int     `json:"moq"`
	BottleCost     float64 `json:"bottle_cost"`
	CapCost        float64 `json:"cap_cost"`
	LabelCost      float64 `json:"label_cost"`
	BoxCost        float64 `json:"box_cost"`
	FinalUnitPrice float64 `json:"final_unit_price"`
	Status         string  `json:"status"`
}

// CostingUpdateFrom seeds a full-update payload with a costing's current
// values so partial edits don't clear the untouched fields.
func CostingUpdateFrom(c *model.Costing) CostingUpdate {
	return CostingUpdate{
		ProjectCode:    c.ProjectCode,
		ProductName:    c.ProductName,
		SkuML:          c.SkuML,
		MOQ:            c.MOQ,
		BottleCost:     c.BottleCost.Value(),
		CapCost:        c.CapCost.Value(),
		LabelCost:      c.LabelCost.Value(),
		BoxCost:        c.BoxCost.Value(),
		FinalUnitPrice: c.FinalUnitPrice.Value(),
		Status:         c.Status,
	}
}

func (c *Client) UpdateCosting(ctx context.Context, id int64, payload CostingUpdate) (*model.Costing, error) {
	var out model.Costing
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/costing/%d/edit/", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DuplicateCosting(ctx context.Context, id int64) (*model.Costing, error) {
	var out model.Costing
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/costing/%d/duplicate/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCosting(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/costing/%d/", id), nil, nil, "", nil)
}
