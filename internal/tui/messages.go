package tui

import (
	"time"

	"valos-cli/internal/model"
)

type view int

const (
	viewLogin view = iota
	viewDashboard
	viewBoard
	viewSales
	viewCostings
	viewQuotation
	viewPerformance
)

func (v view) title() string {
	switch v {
	case viewLogin:
		return "Login"
	case viewDashboard:
		return "Dashboard"
	case viewBoard:
		return "Lead Tracker"
	case viewSales:
		return "Sales Database"
	case viewCostings:
		return "Costings"
	case viewQuotation:
		return "Quotation"
	case viewPerformance:
		return "Performance"
	default:
		return "?"
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalAlert
	modalConfirmDelete
	modalLeadForm
	modalCostingForm
)

// Every list fetch carries the sequence number it was issued under. A
// response is applied only when its seq is still the latest for that
// collection, so a slow earlier response cannot overwrite a newer one.
type leadsFetchedMsg struct {
	seq  int
	page *model.LeadPage
	err  error
}

type costingsFetchedMsg struct {
	seq  int
	page *model.CostingPage
	err  error
}

type statsFetchedMsg struct {
	seq   int
	stats *model.LeadStats
	err   error
}

type loginDoneMsg struct {
	username string
	err      error
}

// statusSavedMsg resolves one in-flight board persist.
type statusSavedMsg struct {
	id  int64
	err error
}

// leadMutatedMsg resolves an explicit CRUD call from the sales view.
type leadMutatedMsg struct {
	action string // "create", "update", "delete"
	err    error
}

type costingMutatedMsg struct {
	action string // "create", "update", "duplicate", "delete"
	err    error
}

type quotationSavedMsg struct {
	quotation *model.Quotation
	err       error
}

type exportDoneMsg struct {
	path string
	size int
	err  error
}

// collectionChangedMsg arrives through the notify publisher when a mutation
// was confirmed; observing views refetch.
type collectionChangedMsg struct {
	collection string
}

// unauthorizedMsg is sent by the client's 401 hook.
type unauthorizedMsg struct{}

type perfTickMsg time.Time

type cachedCountsMsg struct {
	leads    int
	costings int
}
