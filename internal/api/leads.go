package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"valos-cli/internal/model"
)

const defaultPageLimit = 50

type LeadListParams struct {
	Skip     int
	Limit    int // defaults to 50
	Status   model.LeadStatus
	Location string
	Search   string
}

func (p LeadListParams) values() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip))
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (c *Client) ListLeads(ctx context.Context, p LeadListParams) (*model.LeadPage, error) {
	var page model.LeadPage
	if err := c.get(ctx, "/leads/", p.values(), &page); err != nil {
		return nil, err
	}
	// The backend does not persist priorities; seed the local default.
	for i := range page.Items {
		if page.Items[i].Priority == "" {
			page.Items[i].Priority = model.DefaultPriority
		}
	}
	return &page, nil
}

func (c *Client) LeadStats(ctx context.Context) (*model.LeadStats, error) {
	var st model.LeadStats
	if err := c.get(ctx, "/leads/stats/", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	var l model.Lead
	if err := c.get(ctx, fmt.Sprintf("/leads/%d/", id), nil, &l); err != nil {
		return nil, err
	}
	if l.Priority == "" {
		l.Priority = model.DefaultPriority
	}
	return &l, nil
}

func (c *Client) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	var out model.Lead
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/", lead, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeadUpdate is a partial update; nil fields are left untouched by the
// backend.
type LeadUpdate struct {
	CompanyName *string           `json:"company_name,omitempty"`
	Owner       *string           `json:"owner,omitempty"`
	Email       *string           `json:"email,omitempty"`
	Phone       *string           `json:"phone,omitempty"`
	Location    *string           `json:"location,omitempty"`
	ProjectCode *string           `json:"project_code,omitempty"`
	Segment     *string           `json:"segment,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
	Status      *model.LeadStatus `json:"status,omitempty"`
}

func (c *Client) UpdateLead(ctx context.Context, id int64, patch LeadUpdate) (*model.Lead, error) {
	var out model.Lead
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/leads/%d/", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLeadStatus persists a pipeline move. It carries only the changed
// field, which is what the optimistic board flow needs.
func (c *Client) UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus) error {
	body := map[string]model.LeadStatus{"status": status}
	return c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/leads/%d/status/", id), body, nil)
}

func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/leads/%d/", id), nil, nil, "", nil)
}
