package model

// List endpoints share one pagination envelope:
// { items: [...], total, skip, limit, has_more }.

type LeadPage struct {
	Items   []Lead `json:"items"`
	Total   int    `json:"total"`
	Skip    int    `json:"skip"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"has_more"`
}

type CostingPage struct {
	Items   []Costing `json:"items"`
	Total   int       `json:"total"`
	Skip    int       `json:"skip"`
	Limit   int       `json:"limit"`
	HasMore bool      `json:"has_more"`
}

type QuotationPage struct {
	Items   []Quotation `json:"items"`
	Total   int         `json:"total"`
	Skip    int         `json:"skip"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"has_more"`
}

// TotalPages is the page count for a given limit (at least 1 when total > 0).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
