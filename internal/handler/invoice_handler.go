package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/billman/internal/invoice"
	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// invoicesPerPage は請求書一覧の1ページあたりの件数。
const invoicesPerPage = 6

// InvoiceActionService は請求書ミューテーションのサービスインターフェース。
type InvoiceActionService interface {
	CreateInvoice(ctx context.Context, form invoice.Form) invoice.ActionResult
	UpdateInvoice(ctx context.Context, id string, form invoice.Form) invoice.ActionResult
	DeleteInvoice(ctx context.Context, id string) invoice.ActionResult
}

// InvoiceHandler は請求書ページのHTTPハンドラー。
type InvoiceHandler struct {
	actions   InvoiceActionService
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	pages     *PageServer
}

// NewInvoiceHandler はInvoiceHandlerを生成する。
func NewInvoiceHandler(actions InvoiceActionService, invoices repository.InvoiceRepository, customers repository.CustomerRepository, pages *PageServer) *InvoiceHandler {
	return &InvoiceHandler{
		actions:   actions,
		invoices:  invoices,
		customers: customers,
		pages:     pages,
	}
}

// invoicesPage は請求書一覧ページのレンダリングデータ。
type invoicesPage struct {
	basePage
	Invoices   []model.InvoiceWithCustomer
	Query      string
	Message    string
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

// invoiceFormPage は請求書作成・編集フォームのレンダリングデータ。
type invoiceFormPage struct {
	basePage
	Heading     string
	Action      string
	SubmitLabel string
	Customers   []*model.Customer
	Form        invoice.Form
	Errors      map[string][]string
	Message     string
}

// List は検索とページネーション付きの請求書一覧を表示する。
// GET /dashboard/invoices?query=&page=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	// フラッシュメッセージ付きのレスポンスは一度きりの表示であり、
	// 共有キャッシュに載せると他クライアントにも表示されてしまう
	hasFlash := r.URL.Query().Get("message") != ""

	if !hasFlash && h.pages.TryServeCached(w, r) {
		return
	}

	query := r.URL.Query().Get("query")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	total, err := h.invoices.CountFiltered(r.Context(), query)
	if err != nil {
		slog.Error("failed to count invoices", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := (total + invoicesPerPage - 1) / invoicesPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	rows, err := h.invoices.ListFiltered(r.Context(), query, invoicesPerPage, (page-1)*invoicesPerPage)
	if err != nil {
		slog.Error("failed to list invoices", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := invoicesPage{
		basePage:   newBasePage("Invoices", "invoices"),
		Invoices:   rows,
		Query:      query,
		Message:    r.URL.Query().Get("message"),
		Page:       page,
		TotalPages: totalPages,
	}
	if page > 1 {
		data.PrevURL = listPageURL(query, page-1)
	}
	if page < totalPages {
		data.NextURL = listPageURL(query, page+1)
	}

	if hasFlash {
		h.pages.Render(w, r, pageInvoices, data)
		return
	}
	h.pages.RenderAndCache(w, r, pageInvoices, data)
}

// ShowCreate は請求書作成フォームを表示する。
// GET /dashboard/invoices/create
func (h *InvoiceHandler) ShowCreate(w http.ResponseWriter, r *http.Request) {
	if h.pages.TryServeCached(w, r) {
		return
	}

	customers, err := h.customers.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list customers", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.pages.RenderAndCache(w, r, pageInvoiceForm, invoiceFormPage{
		basePage:    newBasePage("Create Invoice", "invoices"),
		Heading:     "Create Invoice",
		Action:      "/dashboard/invoices/create",
		SubmitLabel: "Create Invoice",
		Customers:   customers,
	})
}

// Create はフォームを検証して請求書を作成する。
// 成功時は一覧へ303リダイレクト、検証失敗時はフォームを再表示する。
// POST /dashboard/invoices/create
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := parseInvoiceForm(w, r)
	if !ok {
		return
	}

	result := h.actions.CreateInvoice(r.Context(), form)
	if result.Redirect != "" {
		http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
		return
	}

	h.renderFormWithResult(w, r, invoiceFormPage{
		basePage:    newBasePage("Create Invoice", "invoices"),
		Heading:     "Create Invoice",
		Action:      "/dashboard/invoices/create",
		SubmitLabel: "Create Invoice",
		Form:        form,
		Errors:      result.FieldErrors,
		Message:     result.Message,
	})
}

// ShowEdit は請求書編集フォームを表示する。
// GET /dashboard/invoices/{id}/edit
func (h *InvoiceHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	if h.pages.TryServeCached(w, r) {
		return
	}

	id := chi.URLParam(r, "id")

	inv, err := h.invoices.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to find invoice",
			slog.String("invoice_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if inv == nil {
		http.NotFound(w, r)
		return
	}

	customers, err := h.customers.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list customers", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.pages.RenderAndCache(w, r, pageInvoiceForm, invoiceFormPage{
		basePage:    newBasePage("Edit Invoice", "invoices"),
		Heading:     "Edit Invoice",
		Action:      "/dashboard/invoices/" + inv.ID + "/edit",
		SubmitLabel: "Edit Invoice",
		Customers:   customers,
		Form: invoice.Form{
			CustomerID: inv.CustomerID,
			Amount:     centsToAmountInput(inv.Amount),
			Status:     string(inv.Status),
		},
	})
}

// Update はフォームを検証して請求書を更新する。
// POST /dashboard/invoices/{id}/edit
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, ok := parseInvoiceForm(w, r)
	if !ok {
		return
	}

	result := h.actions.UpdateInvoice(r.Context(), id, form)
	if result.Redirect != "" {
		http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
		return
	}

	h.renderFormWithResult(w, r, invoiceFormPage{
		basePage:    newBasePage("Edit Invoice", "invoices"),
		Heading:     "Edit Invoice",
		Action:      "/dashboard/invoices/" + id + "/edit",
		SubmitLabel: "Edit Invoice",
		Form:        form,
		Errors:      result.FieldErrors,
		Message:     result.Message,
	})
}

// Delete は請求書を削除し、結果メッセージ付きで一覧へ誘導する。
// POST /dashboard/invoices/{id}/delete
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result := h.actions.DeleteInvoice(r.Context(), id)

	dest := invoice.InvoicesPath
	if result.Message != "" {
		dest += "?message=" + url.QueryEscape(result.Message)
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// renderFormWithResult は検証・永続化失敗時のフォーム再表示を行う。
// 顧客一覧の取得に失敗した場合は選択肢なしで再表示する。
func (h *InvoiceHandler) renderFormWithResult(w http.ResponseWriter, r *http.Request, data invoiceFormPage) {
	customers, err := h.customers.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list customers", slog.String("error", err.Error()))
	}
	data.Customers = customers

	h.pages.Render(w, r, pageInvoiceForm, data)
}

// parseInvoiceForm はリクエストから請求書フォームの生入力を取り出す。
func parseInvoiceForm(w http.ResponseWriter, r *http.Request) (invoice.Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return invoice.Form{}, false
	}

	return invoice.Form{
		CustomerID: r.PostFormValue("customerId"),
		Amount:     r.PostFormValue("amount"),
		Status:     r.PostFormValue("status"),
	}, true
}

// centsToAmountInput はセント金額を編集フォームのドル入力値に変換する。
func centsToAmountInput(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return sign + strconv.FormatInt(cents/100, 10)
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// listPageURL は一覧ページのURLを組み立てる。
func listPageURL(query string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("query", query)
	}
	v.Set("page", strconv.Itoa(page))
	return invoice.InvoicesPath + "?" + v.Encode()
}
