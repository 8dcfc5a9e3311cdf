// Package handler はHTTPハンドラーとページレンダリングを提供する。
package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/billman/internal/cache"
	"github.com/hitoshi/billman/internal/currency"
	"github.com/hitoshi/billman/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// csrfPlaceholder はキャッシュされるHTMLに埋め込むトークンの仮文字列。
// レンダーキャッシュは全クライアントで共有されるため、クライアント固有の
// CSRFトークンをキャッシュ本体に焼き込めない。レンダリング時はこの
// プレースホルダーで描画し、レスポンス書き込み時にリクエストごとの
// トークンへ差し替える。
const csrfPlaceholder = "__CSRF_TOKEN__"

// ページテンプレート名
const (
	pageLogin       = "login.html"
	pageDashboard   = "dashboard.html"
	pageInvoices    = "invoices.html"
	pageInvoiceForm = "invoice_form.html"
	pageCustomers   = "customers.html"
)

// basePage は全ページ共通のレンダリングデータ。
type basePage struct {
	Title     string
	ActiveNav string // サイドバーで強調するナビ項目（空ならナビ非表示）
	CSRFToken string
}

// newBasePage は共通データを生成する。CSRFトークンはプレースホルダーで
// 描画し、書き込み時に差し替える。
func newBasePage(title, activeNav string) basePage {
	return basePage{
		Title:     title,
		ActiveNav: activeNav,
		CSRFToken: csrfPlaceholder,
	}
}

// Renderer は埋め込みテンプレートからHTMLページを描画する。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer は全ページテンプレートをパースしたRendererを生成する。
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"formatCurrency": currency.FormatUSD,
		"formatDate":     formatDate,
	}

	names := []string{pageLogin, pageDashboard, pageInvoices, pageInvoiceForm, pageCustomers}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render は指定ページをレイアウト込みで描画したHTMLを返す。
func (r *Renderer) Render(page string, data any) ([]byte, error) {
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page template: %s", page)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// CacheMetrics はページキャッシュのヒット率計測に必要なインターフェース。
type CacheMetrics interface {
	RecordPageCacheHit()
	RecordPageCacheMiss()
}

// PageServer はレンダリングとページキャッシュの出し入れをまとめる。
// キャッシュキーはクエリ文字列込みのリクエストURI。
type PageServer struct {
	renderer *Renderer
	cache    *cache.PageCache
	metrics  CacheMetrics
}

// NewPageServer はPageServerを生成する。cacheとmetricsはnil許容。
func NewPageServer(renderer *Renderer, pageCache *cache.PageCache, metrics CacheMetrics) *PageServer {
	return &PageServer{
		renderer: renderer,
		cache:    pageCache,
		metrics:  metrics,
	}
}

// TryServeCached はキャッシュ済みのページがあればそれを配信する。
// 配信した場合trueを返し、ハンドラーはデータ取得と再描画を省略できる。
func (s *PageServer) TryServeCached(w http.ResponseWriter, r *http.Request) bool {
	if s.cache == nil {
		return false
	}

	body, ok := s.cache.Get(r.URL.RequestURI())
	if !ok {
		if s.metrics != nil {
			s.metrics.RecordPageCacheMiss()
		}
		return false
	}

	if s.metrics != nil {
		s.metrics.RecordPageCacheHit()
	}
	s.write(w, r, body)
	return true
}

// RenderAndCache はページを描画してキャッシュに保存し、配信する。
// キャッシュにはトークン差し替え前の本体を保存する。
func (s *PageServer) RenderAndCache(w http.ResponseWriter, r *http.Request, page string, data any) {
	body, err := s.renderer.Render(page, data)
	if err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		s.cache.Set(r.URL.RequestURI(), body)
	}
	s.write(w, r, body)
}

// Render はページを描画して配信する。キャッシュには保存しない。
// フォーム再表示などリクエスト固有の内容を含むレスポンスに使用する。
func (s *PageServer) Render(w http.ResponseWriter, r *http.Request, page string, data any) {
	body, err := s.renderer.Render(page, data)
	if err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.write(w, r, body)
}

// write はCSRFプレースホルダーをリクエストのトークンへ差し替えて書き込む。
func (s *PageServer) write(w http.ResponseWriter, r *http.Request, body []byte) {
	token := middleware.CSRFTokenFromRequest(r)
	body = bytes.ReplaceAll(body, []byte(csrfPlaceholder), []byte(token))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// formatDate はISO形式（YYYY-MM-DD）の日付を表示用に変換する。
// パースできない場合は入力をそのまま返す。
func formatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Jan 2, 2006")
}
