package store

import (
	"context"
	"path/filepath"
	"testing"

	"valos-cli/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCacheAt(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	leads := []model.Lead{
		{ID: 1, CompanyName: "Acme", Status: model.StatusNew},
		{ID: 2, CompanyName: "Globex", Status: model.StatusLost},
	}
	if err := c.PutLeads(ctx, leads, 42); err != nil {
		t.Fatalf("put leads: %v", err)
	}

	got, snap, err := c.Leads(ctx)
	if err != nil {
		t.Fatalf("load leads: %v", err)
	}
	if len(got) != 2 || got[0].CompanyName != "Acme" {
		t.Fatalf("leads = %+v", got)
	}
	if snap.Total != 42 {
		t.Fatalf("total = %d, want 42 (backend-reported size, not page size)", snap.Total)
	}
	if snap.FetchedAt.IsZero() {
		t.Fatal("fetched_at not recorded")
	}
	// Priorities are local-only and absent from cached payloads; the default
	// must be restored on load.
	if got[0].Priority != model.DefaultPriority {
		t.Fatalf("priority = %s, want default", got[0].Priority)
	}
}

func TestCacheReplacesSnapshot(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if err := c.PutLeads(ctx, []model.Lead{{ID: 1}}, 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.PutLeads(ctx, []model.Lead{{ID: 2}, {ID: 3}}, 2); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, snap, err := c.Leads(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("snapshot not replaced wholesale: %+v", got)
	}
	if snap.Total != 2 {
		t.Fatalf("total = %d, want 2", snap.Total)
	}
}

func TestCacheCounts(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	leads, costings := c.Counts(ctx)
	if leads != 0 || costings != 0 {
		t.Fatalf("empty cache counts = %d, %d", leads, costings)
	}

	_ = c.PutLeads(ctx, nil, 7)
	_ = c.PutCostings(ctx, []model.Costing{{ID: 1, ProjectCode: "VL-01"}}, 3)

	leads, costings = c.Counts(ctx)
	if leads != 7 || costings != 3 {
		t.Fatalf("counts = %d, %d, want 7, 3", leads, costings)
	}
}

func TestCacheCostingsKeepMoneyValues(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	in := []model.Costing{{ID: 9, ProjectCode: "VL-02", FinalUnitPrice: model.MoneyFromFloat(12.5)}}
	if err := c.PutCostings(ctx, in, 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _, err := c.Costings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].FinalUnitPrice.Value() != 12.5 {
		t.Fatalf("costings = %+v", got)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("VALOS_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg == nil || cfg.APIBaseURL != "" || cfg.Session != nil {
		t.Fatalf("expected empty defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("VALOS_CONFIG_DIR", t.TempDir())

	in := &GlobalConfig{
		APIBaseURL: "https://valos.example.com/api",
		Session:    &SavedSession{Token: "tok", Username: "admin"},
		TUI:        &TUIConfig{Theme: "dark"},
	}
	if err := SaveConfig(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.APIBaseURL != in.APIBaseURL {
		t.Fatalf("api url = %q", out.APIBaseURL)
	}
	if out.Session == nil || out.Session.Token != "tok" || out.Session.Username != "admin" {
		t.Fatalf("session = %+v", out.Session)
	}
	if out.TUI == nil || out.TUI.Theme != "dark" {
		t.Fatalf("tui = %+v", out.TUI)
	}
}
