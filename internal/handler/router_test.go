package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/billman/internal/metrics"
	"github.com/hitoshi/billman/internal/middleware"
	"github.com/hitoshi/billman/internal/model"
)

// mockSessionFinder はテスト用のSessionFinderモック。
type mockSessionFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFunc == nil {
		return nil, nil
	}
	return m.findByIDFunc(ctx, id)
}

func newTestRouter(t *testing.T, finder middleware.SessionFinder) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		LoginRate:       rate.Limit(1000),
		LoginBurst:      1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	return NewRouter(&RouterDeps{
		Logger:        slog.New(slog.NewJSONHandler(&strings.Builder{}, nil)),
		SessionFinder: finder,
		RateLimiter:   rl,
		CSRFConfig:    middleware.CSRFConfig{},
		AuthService:   &mockAuthService{},
		AuthConfig:    AuthHandlerConfig{SessionMaxAge: 86400},
		InvoiceActions: &mockInvoiceActions{},
		InvoiceRepo:    &mockInvoiceRepo{},
		CustomerRepo:   &mockCustomerRepo{},
		RevenueRepo:    &mockRevenueRepo{},
		Pages:          newTestPageServer(t, nil),
		Metrics:        collector,
		Gatherer:       reg,
	})
}

// mockRevenueRepo はテスト用のRevenueRepositoryモック。
type mockRevenueRepo struct {
	listMonthlyFunc func(ctx context.Context) ([]model.Revenue, error)
}

func (m *mockRevenueRepo) ListMonthly(ctx context.Context) ([]model.Revenue, error) {
	if m.listMonthlyFunc == nil {
		return nil, nil
	}
	return m.listMonthlyFunc(ctx)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_RootRedirectsToDashboard(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != DashboardPath {
		t.Errorf("expected redirect to %s, got %s", DashboardPath, loc)
	}
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != middleware.LoginPath {
		t.Errorf("expected redirect to %s, got %s", middleware.LoginPath, loc)
	}
}

func TestRouter_DashboardWithValidSession(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	router := newTestRouter(t, finder)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dashboard") {
		t.Error("expected dashboard page body")
	}
}

func TestRouter_LoginPageIsPublic(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_MutationRequiresCSRF(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	router := newTestRouter(t, finder)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices/create", strings.NewReader("customerId=c"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 without CSRF token, got %d", rec.Code)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected X-Frame-Options DENY, got %q", got)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &mockSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}
