package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

// runCLI executes the root command against a fake backend and returns the
// decoded stdout envelope.
func runCLI(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	if err != nil {
		return nil, err
	}
	var env map[string]any
	if uerr := json.Unmarshal(stdout.Bytes(), &env); uerr != nil {
		t.Fatalf("stdout is not json: %v\nstdout:\n%s", uerr, stdout.String())
	}
	return env, nil
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, `{"detail": "bad form"}`, http.StatusBadRequest)
			return
		}
		if r.FormValue("password") != "secret" {
			http.Error(w, `{"detail": "invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "tok-1", "token_type": "bearer"}`))
	})
	mux.HandleFunc("POST /auth/logout/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("GET /leads/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, `{"detail": "not authenticated"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"items": [
			{"id": 1, "company_name": "Acme", "owner": "ana", "status": "new"},
			{"id": 2, "company_name": "Globex", "owner": "bo", "status": "converted"}
		], "total": 2, "skip": 0, "limit": 50, "has_more": false}`))
	})
	mux.HandleFunc("PATCH /leads/1/status/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "contacted" {
			http.Error(w, `{"detail": "unexpected status"}`, http.StatusBadRequest)
			return
		}
	})
	mux.HandleFunc("GET /leads/stats/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 4, "new": 1, "contacted": 1, "converted": 1, "lost": 1}`))
	})
	mux.HandleFunc("GET /costings/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"id": 10, "project_code": "VL-01", "product_name": "Amber 50ml", "final_unit_price": "12.50"},
			{"id": 11, "project_code": "VL-01", "product_name": "Citrus 30ml", "final_unit_price": 7}
		], "total": 2, "skip": 0, "limit": 50, "has_more": false}`))
	})
	mux.HandleFunc("GET /costing/10/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 10, "project_code": "VL-01", "product_name": "Amber 50ml",
			"sku_ml": "50", "moq": 500, "bottle_cost": "0.80", "final_unit_price": "12.50", "status": "draft"}`))
	})
	mux.HandleFunc("PUT /costing/10/edit/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		// Full update: untouched fields must arrive with their current values.
		if body["project_code"] != "VL-01" || body["product_name"] != "Amber 50ml" {
			http.Error(w, `{"detail": "untouched fields were cleared"}`, http.StatusBadRequest)
			return
		}
		if moq, _ := body["moq"].(float64); moq != 500 {
			http.Error(w, `{"detail": "moq was cleared"}`, http.StatusBadRequest)
			return
		}
		if price, _ := body["final_unit_price"].(float64); price != 9.95 {
			http.Error(w, `{"detail": "price not applied"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"id": 10, "project_code": "VL-01", "product_name": "Amber 50ml", "final_unit_price": "9.95"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T) {
	t.Helper()
	srv := fakeBackend(t)
	t.Setenv("VALOS_CONFIG_DIR", t.TempDir())
	t.Setenv("VALOS_API_URL", srv.URL)
	t.Setenv("VALOS_PASSWORD", "secret")
}

func TestLoginThenListLeads(t *testing.T) {
	setupEnv(t)

	env, err := runCLI(t, "login", "--username", "admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	if data["loggedIn"] != true {
		t.Fatalf("login envelope = %#v", env)
	}

	// The saved session must carry over to the next invocation.
	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"leads", "list"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("leads list: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stdout.String(), "Acme") {
		t.Fatalf("listing missing lead: %s", stdout.String())
	}
}

func TestLoginBadPasswordFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("VALOS_PASSWORD", "wrong")

	if _, err := runCLI(t, "login", "--username", "admin"); err == nil {
		t.Fatal("expected login to fail")
	}
}

func TestLeadsMove(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	env, err := runCLI(t, "leads", "move", "1", "contacted")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	if data["status"] != "contacted" {
		t.Fatalf("move envelope = %#v", env)
	}
}

func TestLeadsMoveRejectsUnknownStatus(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "leads", "move", "1", "archived"); err == nil {
		t.Fatal("expected unknown status to be rejected before any request")
	}
}

func TestCostingsEditKeepsUntouchedFields(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	env, err := runCLI(t, "costings", "edit", "10", "--price", "9.95")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	if data["final_unit_price"].(float64) != 9.95 {
		t.Fatalf("edit envelope = %#v", env)
	}
}

func TestQuoteBuildSeedsAndOverrides(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	env, err := runCLI(t, "quote", "build", "VL-01", "--qty", "11=7")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	// Item 10 stays at the 10000 seed (125000.00); item 11 overridden to 7 (49.00).
	if got := data["grand_total"].(float64); got != 125049 {
		t.Fatalf("grand_total = %v, want 125049", got)
	}
	items, _ := data["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items = %#v", items)
	}
	first, _ := items[0].(map[string]any)
	if first["quantity"].(float64) != 10000 {
		t.Fatalf("seed quantity not applied: %#v", first)
	}
}

func TestQuoteBuildRejectsForeignCosting(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := runCLI(t, "quote", "build", "VL-01", "--qty", "99=5"); err == nil {
		t.Fatal("expected override for a costing outside the project to fail")
	}
}

func TestPerfComputesRates(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	env, err := runCLI(t, "perf")
	if err != nil {
		t.Fatalf("perf: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	if data["conversionRate"].(float64) != 25 {
		t.Fatalf("conversionRate = %v, want 25", data["conversionRate"])
	}
	if data["activePipeline"].(float64) != 2 {
		t.Fatalf("activePipeline = %v, want 2", data["activePipeline"])
	}
}

func TestOfflineListUsesCache(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}
	// Warm the cache online, then point at a dead backend.
	if _, err := runCLI(t, "leads", "list"); err != nil {
		t.Fatalf("online list: %v", err)
	}
	t.Setenv("VALOS_API_URL", "http://127.0.0.1:1")

	env, err := runCLI(t, "leads", "list", "--offline")
	if err != nil {
		t.Fatalf("offline list: %v", err)
	}
	items, _ := env["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("cached items = %#v", env)
	}
}

func TestCSVOutput(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "login", "--username", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"leads", "list", "--format", "csv"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("csv list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got:\n%s", stdout.String())
	}
	if !strings.Contains(lines[0], "company_name") {
		t.Fatalf("header = %q", lines[0])
	}
}
