package model

import "time"

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusLost      LeadStatus = "lost"
)

// PipelineStatuses is the fixed column order of the lead board.
var PipelineStatuses = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusConverted,
	StatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, st := range PipelineStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s LeadStatus) Label() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusContacted:
		return "Contacted"
	case StatusQualified:
		return "Qualified"
	case StatusConverted:
		return "Converted"
	case StatusLost:
		return "Lost"
	default:
		return string(s)
	}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when a lead arrives from the backend, which
// does not persist priorities.
const DefaultPriority = PriorityMedium

// Next cycles high -> medium -> low -> high. Priorities are a local,
// cosmetic annotation; they never travel back to the backend.
func (p Priority) Next() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

type Lead struct {
	ID          int64      `json:"id"`
	CompanyName string     `json:"company_name"`
	Owner       string     `json:"owner"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Location    string     `json:"location,omitempty"`
	ProjectCode string     `json:"project_code,omitempty"`
	Segment     string     `json:"segment,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Status      LeadStatus `json:"status"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`

	// Priority is local-only. It is filled with DefaultPriority on fetch
	// and dropped from outgoing payloads.
	Priority Priority `json:"-"`
}

type Costing struct {
	ID             int64      `json:"id"`
	ProjectCode    string     `json:"project_code"`
	ProductName    string     `json:"product_name"`
	SkuML          string     `json:"sku_ml,omitempty"`
	MOQ            int        `json:"moq,omitempty"`
	BottleCost     Money      `json:"bottle_cost,omitempty"`
	CapCost        Money      `json:"cap_cost,omitempty"`
	LabelCost      Money      `json:"label_cost,omitempty"`
	BoxCost        Money      `json:"box_cost,omitempty"`
	FinalUnitPrice Money      `json:"final_unit_price"`
	Status         string     `json:"status,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

type QuotationItem struct {
	CostingID   int64   `json:"costing_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type Quotation struct {
	ID          int64           `json:"id,omitempty"`
	ProjectCode string          `json:"project_code"`
	Items       []QuotationItem `json:"items"`
	GrandTotal  float64         `json:"grand_total"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Converted int `json:"converted"`
	Lost      int `json:"lost"`
}

// CountLeads derives stats from a full lead list. Used when the dedicated
// stats endpoint is unavailable.
func CountLeads(leads []Lead) LeadStats {
	st := LeadStats{Total: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case StatusNew:
			st.New++
		case StatusContacted:
			st.Contacted++
		case StatusQualified:
			st.Qualified++
		case StatusConverted:
			st.Converted++
		case StatusLost:
			st.Lost++
		}
	}
	return st
}

// ActivePipeline counts leads still in play (not converted, not lost).
func (s LeadStats) ActivePipeline() int {
	return s.New + s.Contacted + s.Qualified
}

// ConversionRate returns converted/total as a percentage, 0 for an empty set.
func (s LeadStats) ConversionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Converted) / float64(s.Total) * 100
}

// LossRate returns lost/total as a percentage, 0 for an empty set.
func (s LeadStats) LossRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Lost) / float64(s.Total) * 100
}
