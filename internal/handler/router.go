package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/billman/internal/metrics"
	"github.com/hitoshi/billman/internal/middleware"
	"github.com/hitoshi/billman/internal/repository"
)

// Pinger はヘルスチェックに必要なデータベース接続のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 請求書・ダッシュボード
	InvoiceActions InvoiceActionService
	InvoiceRepo    repository.InvoiceRepository
	CustomerRepo   repository.CustomerRepository
	RevenueRepo    repository.RevenueRepository

	// レンダリング
	Pages *PageServer

	// 観測
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// ヘルスチェック
	DB Pinger
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging →（認証ルート: CSRF → LoginRateLimit）
//	                           →（保護ルート: Session → CSRF → GeneralRateLimit）
//
// /metricsと/healthzは認証グループの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// nilの*Collectorを非nilインターフェースとして渡さないための変換
	var httpMetrics middleware.HTTPMetricsRecorder
	var loginMetrics LoginMetrics
	if deps.Metrics != nil {
		httpMetrics = deps.Metrics
		loginMetrics = deps.Metrics
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.Pages, loginMetrics, deps.AuthConfig)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceActions, deps.InvoiceRepo, deps.CustomerRepo, deps.Pages)
	dashboardHandler := NewDashboardHandler(deps.InvoiceRepo, deps.RevenueRepo, deps.Pages)
	customerHandler := NewCustomerHandler(deps.CustomerRepo, deps.Pages)

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
	})

	// ログインフロー: CSRF + ログイン試行レート制限
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.LoginMiddleware())

		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/logout", authHandler.Logout)

		r.Route(DashboardPath, func(r chi.Router) {
			r.Get("/", dashboardHandler.Show)

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceHandler.List)
				r.Get("/create", invoiceHandler.ShowCreate)
				r.Post("/create", invoiceHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/edit", invoiceHandler.ShowEdit)
					r.Post("/edit", invoiceHandler.Update)
					r.Post("/delete", invoiceHandler.Delete)
				})
			})

			r.Get("/customers", customerHandler.List)
		})
	})

	return r
}
