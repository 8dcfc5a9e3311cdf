package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/billman/internal/auth"
	"github.com/hitoshi/billman/internal/middleware"
	"github.com/hitoshi/billman/internal/model"
)

// DashboardPath はログイン成功後の誘導先。
const DashboardPath = "/dashboard"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, creds auth.Credentials) (*model.Session, string, error)
	Logout(ctx context.Context, sessionID string) error
}

// LoginMetrics はログイン失敗の計測に必要なインターフェース。
type LoginMetrics interface {
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はログイン/ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	pages   *PageServer
	metrics LoginMetrics
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil許容。
func NewAuthHandler(service AuthServiceInterface, pages *PageServer, metrics LoginMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		pages:   pages,
		metrics: metrics,
		config:  config,
	}
}

// loginPage はログインページのレンダリングデータ。
type loginPage struct {
	basePage
	Email        string
	ErrorMessage string
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, pageLogin, loginPage{
		basePage: newBasePage("Login", ""),
	})
}

// Login は資格情報を検証し、成功時はセッションを発行してダッシュボードへ誘導する。
// 認証失敗はログインフォームをメッセージ付きで再表示する。
// 分類できないエラー（インフラ障害など）は500として扱う。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	creds := auth.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	session, message, err := h.service.Authenticate(r.Context(), creds)
	if err != nil {
		slog.Error("authentication error", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if message != "" {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}
		h.pages.Render(w, r, pageLogin, loginPage{
			basePage:     newBasePage("Login", ""),
			Email:        creds.Email,
			ErrorMessage: message,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Logout はセッションを破棄し、ログインページへ誘導する。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
