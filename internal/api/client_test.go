package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"valos-cli/internal/model"
	"valos-cli/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New()
	sess.Init("test-token", "admin")
	return NewClient(srv.URL, sess), sess
}

func TestListLeadsSendsParamsAndBearer(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(model.LeadPage{
			Items: []model.Lead{{ID: 1, CompanyName: "Acme", Status: model.StatusNew}},
			Total: 1, Limit: 25, HasMore: false,
		})
	})

	page, err := c.ListLeads(context.Background(), LeadListParams{
		Skip: 50, Limit: 25, Status: model.StatusNew, Search: "acme",
	})
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if gotPath != "/leads/" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotQuery["skip"][0] != "50" || gotQuery["limit"][0] != "25" ||
		gotQuery["status"][0] != "new" || gotQuery["search"][0] != "acme" {
		t.Fatalf("query = %v", gotQuery)
	}
	if len(page.Items) != 1 || page.Items[0].CompanyName != "Acme" {
		t.Fatalf("page = %+v", page)
	}
	// The backend never sends priorities; the local default must be seeded.
	if page.Items[0].Priority != model.DefaultPriority {
		t.Fatalf("priority = %q, want default", page.Items[0].Priority)
	}
}

func TestListLeadsDefaultsLimit(t *testing.T) {
	var gotLimit string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(model.LeadPage{})
	})
	if _, err := c.ListLeads(context.Background(), LeadListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotLimit != "50" {
		t.Fatalf("limit = %q, want the 50 default", gotLimit)
	}
}

func TestErrorCarriesBackendDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail": "company_name is required"}`)
	})

	_, err := c.CreateLead(context.Background(), model.Lead{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Detail != "company_name is required" {
		t.Fatalf("error = %+v", apiErr)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("400 must not match ErrUnauthorized")
	}
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "token expired"}`)
	})

	hookFired := false
	c.OnUnauthorized = func() { hookFired = true }

	_, err := c.ListLeads(context.Background(), LeadListParams{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("session must be cleared on 401")
	}
	if !hookFired {
		t.Fatal("OnUnauthorized hook did not fire")
	}
}

func TestLoginInstallsSession(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected a multipart form: %v", err)
		}
		if r.FormValue("username") != "admin" || r.FormValue("password") != "secret" {
			t.Errorf("credentials = %q / %q", r.FormValue("username"), r.FormValue("password"))
		}
		_, _ = io.WriteString(w, `{"access_token": "fresh", "token_type": "bearer"}`)
	})
	sess.Clear()

	resp, err := c.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "fresh" {
		t.Fatalf("token = %q", resp.AccessToken)
	}
	if sess.Token() != "fresh" || sess.Username() != "admin" {
		t.Fatalf("session not initialized: token=%q user=%q", sess.Token(), sess.Username())
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	sess.Clear()
	if _, err := c.Login(context.Background(), "admin", "secret"); err == nil {
		t.Fatal("expected an error when the response has no access token")
	}
}

func TestLogoutClearsSessionEvenOnServerError(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if err := c.Logout(context.Background()); err == nil {
		t.Fatal("expected the backend error to propagate")
	}
	if sess.Authenticated() {
		t.Fatal("session must be cleared regardless of the logout response")
	}
}

func TestUpdateLeadStatusPatchesSingleField(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	})

	if err := c.UpdateLeadStatus(context.Background(), 7, model.StatusContacted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/leads/7/status/" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if strings.TrimSpace(gotBody) != `{"status":"contacted"}` {
		t.Fatalf("body = %q, want only the changed field", gotBody)
	}
}

func TestCreateCostingSkipsEmptyFormFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if r.FormValue("product_name") != "Amber 50ml" {
			t.Errorf("product_name = %q", r.FormValue("product_name"))
		}
		if _, ok := r.MultipartForm.Value["sku_ml"]; ok {
			t.Error("empty field must be omitted from the form")
		}
		_ = json.NewEncoder(w).Encode(model.Costing{ID: 3, ProductName: "Amber 50ml"})
	})

	out, err := c.CreateCosting(context.Background(), map[string]string{
		"product_name": "Amber 50ml",
		"sku_ml":       "   ",
	})
	if err != nil {
		t.Fatalf("create costing: %v", err)
	}
	if out.ID != 3 {
		t.Fatalf("costing = %+v", out)
	}
}

func TestUpdateCostingSendsZeroedFields(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_ = json.NewEncoder(w).Encode(model.Costing{ID: 5})
	})

	payload := CostingUpdate{ProjectCode: "VL-01", ProductName: "Amber 50ml", FinalUnitPrice: 12.5}
	if _, err := c.UpdateCosting(context.Background(), 5, payload); err != nil {
		t.Fatalf("update costing: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/costing/5/edit/" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	// PUT replaces the record: a cleared cost must travel as an explicit
	// zero, or the backend would keep the stale value.
	for _, want := range []string{`"bottle_cost":0`, `"moq":0`, `"sku_ml":""`} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("body %q missing %q", gotBody, want)
		}
	}
}

func TestCostingMoneyParsesDefensively(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items": [
			{"id": 1, "project_code": "VL-01", "final_unit_price": "12.50"},
			{"id": 2, "project_code": "VL-01", "final_unit_price": 7},
			{"id": 3, "project_code": "VL-01", "final_unit_price": ""},
			{"id": 4, "project_code": "VL-01", "final_unit_price": null}
		], "total": 4, "skip": 0, "limit": 50, "has_more": false}`)
	})

	page, err := c.ListCostings(context.Background(), CostingListParams{})
	if err != nil {
		t.Fatalf("list costings: %v", err)
	}
	want := []float64{12.5, 7, 0, 0}
	for i, it := range page.Items {
		if it.FinalUnitPrice.Value() != want[i] {
			t.Fatalf("item %d price = %v, want %v", it.ID, it.FinalUnitPrice.Value(), want[i])
		}
	}
}

func TestExportQuotationExcelReturnsRawBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00} // xlsx magic
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quotation/VL-01/export/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(payload)
	})

	b, err := c.ExportQuotationExcel(context.Background(), "VL-01")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(b) != string(payload) {
		t.Fatalf("bytes = %v", b)
	}
}

func TestStatsFallbackErrorIsTyped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.LeadStats(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected a typed 404, got %v", err)
	}
}
