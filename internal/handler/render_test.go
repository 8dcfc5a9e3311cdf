package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/billman/internal/cache"
	"github.com/hitoshi/billman/internal/model"
)

func TestNewRenderer_ParsesAllPages(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, page := range []string{pageLogin, pageDashboard, pageInvoices, pageInvoiceForm, pageCustomers} {
		if _, ok := renderer.pages[page]; !ok {
			t.Errorf("expected page %s to be parsed", page)
		}
	}
}

func TestRenderer_RenderDashboard(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := renderer.Render(pageDashboard, dashboardPage{
		basePage: newBasePage("Dashboard", "dashboard"),
		Cards: &model.CardData{
			InvoiceCount:  13,
			CustomerCount: 6,
			TotalPaid:     118600,
			TotalPending:  12550,
		},
		Revenue: []revenueBar{{Month: "Jan", Revenue: 200000, BarPercent: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := string(body)
	if !strings.Contains(html, "$1186.00") {
		t.Error("expected formatted paid total")
	}
	if !strings.Contains(html, "13") {
		t.Error("expected invoice count")
	}
	if !strings.Contains(html, "Jan") {
		t.Error("expected revenue month label")
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := renderer.Render("missing.html", nil); err == nil {
		t.Error("expected error for unknown page")
	}
}

// TestPageServer_CSRFTokenSubstitution はキャッシュにはプレースホルダーを保存し、
// 配信時にリクエストごとのトークンへ差し替えることを検証する。
func TestPageServer_CSRFTokenSubstitution(t *testing.T) {
	pageCache := cache.New(time.Minute)
	defer pageCache.Stop()

	ps := newTestPageServer(t, pageCache)

	data := invoicesPage{
		basePage:   newBasePage("Invoices", "invoices"),
		Page:       1,
		TotalPages: 1,
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-alpha"})
	rec := httptest.NewRecorder()

	ps.RenderAndCache(rec, req, pageInvoices, data)

	body := rec.Body.String()
	if strings.Contains(body, csrfPlaceholder) {
		t.Error("expected placeholder to be substituted in response")
	}
	if !strings.Contains(body, "token-alpha") {
		t.Error("expected response to contain the request's CSRF token")
	}

	// キャッシュ本体はプレースホルダーのまま保存される
	cached, ok := pageCache.Get("/dashboard/invoices")
	if !ok {
		t.Fatal("expected page to be cached")
	}
	if !strings.Contains(string(cached), csrfPlaceholder) {
		t.Error("expected cached body to retain the placeholder")
	}

	// 別クライアントには別トークンで配信される
	req2 := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
	req2.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-beta"})
	rec2 := httptest.NewRecorder()

	if !ps.TryServeCached(rec2, req2) {
		t.Fatal("expected cache hit")
	}
	if !strings.Contains(rec2.Body.String(), "token-beta") {
		t.Error("expected cached response to carry the second client's token")
	}
}

func TestPageServer_TryServeCached_NoCache(t *testing.T) {
	ps := newTestPageServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	if ps.TryServeCached(rec, req) {
		t.Error("expected no cache hit when cache is disabled")
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"2024-06-15", "Jun 15, 2024"},
		{"2023-01-02", "Jan 2, 2023"},
		{"not-a-date", "not-a-date"},
	}

	for _, tt := range tests {
		if got := formatDate(tt.iso); got != tt.want {
			t.Errorf("formatDate(%q) = %q, want %q", tt.iso, got, tt.want)
		}
	}
}
