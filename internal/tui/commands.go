package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"valos-cli/internal/api"
	"valos-cli/internal/model"
	"valos-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const fetchTimeout = 30 * time.Second

func fetchCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), fetchTimeout)
}

func fetchLeadsCmd(client *api.Client, seq int, params api.LeadListParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := client.ListLeads(ctx, params)
		return leadsFetchedMsg{seq: seq, page: page, err: err}
	}
}

func fetchCostingsCmd(client *api.Client, seq int, params api.CostingListParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := client.ListCostings(ctx, params)
		return costingsFetchedMsg{seq: seq, page: page, err: err}
	}
}

// fetchStatsCmd prefers the stats endpoint and falls back to counting a full
// list when it 404s.
func fetchStatsCmd(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		st, err := client.LeadStats(ctx)
		if err == nil {
			return statsFetchedMsg{seq: seq, stats: st}
		}
		if apiErr, ok := err.(*api.Error); ok && apiErr.Status == 404 {
			page, lerr := client.ListLeads(ctx, api.LeadListParams{Limit: 1000})
			if lerr != nil {
				return statsFetchedMsg{seq: seq, err: lerr}
			}
			counted := model.CountLeads(page.Items)
			return statsFetchedMsg{seq: seq, stats: &counted}
		}
		return statsFetchedMsg{seq: seq, err: err}
	}
}

func loginCmd(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.Login(ctx, username, password)
		return loginDoneMsg{username: username, err: err}
	}
}

func saveStatusCmd(client *api.Client, id int64, status model.LeadStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		err := client.UpdateLeadStatus(ctx, id, status)
		return statusSavedMsg{id: id, err: err}
	}
}

func createLeadCmd(client *api.Client, lead model.Lead) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.CreateLead(ctx, lead)
		return leadMutatedMsg{action: "create", err: err}
	}
}

func updateLeadCmd(client *api.Client, id int64, patch api.LeadUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.UpdateLead(ctx, id, patch)
		return leadMutatedMsg{action: "update", err: err}
	}
}

func deleteLeadCmd(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		err := client.DeleteLead(ctx, id)
		return leadMutatedMsg{action: "delete", err: err}
	}
}

func createCostingCmd(client *api.Client, fields map[string]string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.CreateCosting(ctx, fields)
		return costingMutatedMsg{action: "create", err: err}
	}
}

func updateCostingCmd(client *api.Client, id int64, payload api.CostingUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.UpdateCosting(ctx, id, payload)
		return costingMutatedMsg{action: "update", err: err}
	}
}

func duplicateCostingCmd(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		_, err := client.DuplicateCosting(ctx, id)
		return costingMutatedMsg{action: "duplicate", err: err}
	}
}

func deleteCostingCmd(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		err := client.DeleteCosting(ctx, id)
		return costingMutatedMsg{action: "delete", err: err}
	}
}

func saveQuotationCmd(client *api.Client, q model.Quotation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		saved, err := client.CreateQuotation(ctx, q)
		return quotationSavedMsg{quotation: saved, err: err}
	}
}

func exportQuotationCmd(client *api.Client, projectCode string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		b, err := client.ExportQuotationExcel(ctx, projectCode)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path := fmt.Sprintf("quotation_%s.xlsx", projectCode)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, size: len(b)}
	}
}

func perfTickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return perfTickMsg(t)
	})
}

// loadCachedCountsCmd reads the last-known totals from the snapshot cache so
// the dashboard has something to show while fresh fetches are in flight.
func loadCachedCountsCmd() tea.Cmd {
	return func() tea.Msg {
		cache, err := store.OpenCache()
		if err != nil {
			return cachedCountsMsg{}
		}
		defer cache.Close()
		leads, costings := cache.Counts(context.Background())
		return cachedCountsMsg{leads: leads, costings: costings}
	}
}

// snapshotLeadsCmd refreshes the offline cache after a successful fetch.
func snapshotLeadsCmd(page *model.LeadPage) tea.Cmd {
	return func() tea.Msg {
		cache, err := store.OpenCache()
		if err != nil {
			return nil
		}
		defer cache.Close()
		_ = cache.PutLeads(context.Background(), page.Items, page.Total)
		return nil
	}
}

func snapshotCostingsCmd(page *model.CostingPage) tea.Cmd {
	return func() tea.Msg {
		cache, err := store.OpenCache()
		if err != nil {
			return nil
		}
		defer cache.Close()
		_ = cache.PutCostings(context.Background(), page.Items, page.Total)
		return nil
	}
}
