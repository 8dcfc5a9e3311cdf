package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// CustomerHandler は顧客ページのHTTPハンドラー。
type CustomerHandler struct {
	customers repository.CustomerRepository
	pages     *PageServer
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(customers repository.CustomerRepository, pages *PageServer) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		pages:     pages,
	}
}

// customersPage は顧客一覧ページのレンダリングデータ。
type customersPage struct {
	basePage
	Customers []model.CustomerWithTotals
	Query     string
}

// List は請求書集計付きの顧客一覧を表示する。
// GET /dashboard/customers?query=
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.pages.TryServeCached(w, r) {
		return
	}

	query := r.URL.Query().Get("query")

	customers, err := h.customers.ListFilteredWithTotals(r.Context(), query)
	if err != nil {
		slog.Error("failed to list customers", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.pages.RenderAndCache(w, r, pageCustomers, customersPage{
		basePage:  newBasePage("Customers", "customers"),
		Customers: customers,
		Query:     query,
	})
}
