package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"valos-cli/internal/model"
)

type QuotationListParams struct {
	Skip        int
	Limit       int // defaults to 50
	ProjectCode string
}

func (c *Client) ListQuotations(ctx context.Context, p QuotationListParams) (*model.QuotationPage, error) {
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

	var page model.QuotationPage
	if err := c.get(ctx, "/quotations/", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetQuotationByProject(ctx context.Context, projectCode string) (*model.Quotation, error) {
	var out model.Quotation
	if err := c.get(ctx, "/quotation/"+url.PathEscape(projectCode)+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateQuotation(ctx context.Context, q model.Quotation) (*model.Quotation, error) {
	var out model.Quotation
	if err := c.sendJSON(ctx, http.MethodPost, "/quotations/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateQuotation(ctx context.Context, id int64, q model.Quotation) (*model.Quotation, error) {
	var out model.Quotation
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/quotations/%d/", id), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuotation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/quotations/%d/", id), nil, nil, "", nil)
}

// ExportQuotationExcel downloads the backend-rendered xlsx for a project.
func (c *Client) ExportQuotationExcel(ctx context.Context, projectCode string) ([]byte, error) {
	var raw []byte
	if err := c.get(ctx, "/quotation/"+url.PathEscape(projectCode)+"/export/", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
