package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// latestInvoicesLimit はダッシュボードに表示する最新請求書の件数。
const latestInvoicesLimit = 5

// DashboardHandler はダッシュボード概要ページのHTTPハンドラー。
type DashboardHandler struct {
	invoices repository.InvoiceRepository
	revenue  repository.RevenueRepository
	pages    *PageServer
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(invoices repository.InvoiceRepository, revenue repository.RevenueRepository, pages *PageServer) *DashboardHandler {
	return &DashboardHandler{
		invoices: invoices,
		revenue:  revenue,
		pages:    pages,
	}
}

// revenueBar は売上チャートの1本分のレンダリングデータ。
type revenueBar struct {
	Month      string
	Revenue    int64
	BarPercent int // 最大値を100とした相対高さ
}

// dashboardPage はダッシュボード概要のレンダリングデータ。
type dashboardPage struct {
	basePage
	Cards   *model.CardData
	Revenue []revenueBar
	Latest  []model.InvoiceWithCustomer
}

// Show はサマリーカード・月別売上・最新請求書を表示する。
// GET /dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	if h.pages.TryServeCached(w, r) {
		return
	}

	cards, err := h.invoices.CardData(r.Context())
	if err != nil {
		slog.Error("failed to fetch card data", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	revenue, err := h.revenue.ListMonthly(r.Context())
	if err != nil {
		slog.Error("failed to fetch revenue", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	latest, err := h.invoices.ListLatest(r.Context(), latestInvoicesLimit)
	if err != nil {
		slog.Error("failed to fetch latest invoices", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.pages.RenderAndCache(w, r, pageDashboard, dashboardPage{
		basePage: newBasePage("Dashboard", "dashboard"),
		Cards:    cards,
		Revenue:  buildRevenueBars(revenue),
		Latest:   latest,
	})
}

// buildRevenueBars は月別売上を最大値基準の相対高さに変換する。
func buildRevenueBars(revenue []model.Revenue) []revenueBar {
	var maxRevenue int64
	for _, rv := range revenue {
		if rv.Revenue > maxRevenue {
			maxRevenue = rv.Revenue
		}
	}

	bars := make([]revenueBar, 0, len(revenue))
	for _, rv := range revenue {
		percent := 0
		if maxRevenue > 0 {
			percent = int(rv.Revenue * 100 / maxRevenue)
		}
		bars = append(bars, revenueBar{
			Month:      rv.Month,
			Revenue:    rv.Revenue,
			BarPercent: percent,
		})
	}
	return bars
}
