// Package auth は資格情報認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// 認証失敗のユーザー向けメッセージ
const (
	msgInvalidCredentials = "Invalid credentials."
	msgSomethingWrong     = "Something went wrong."
)

// MethodCredentials はユーザー名/パスワード方式の認証方式名。
const MethodCredentials = "credentials"

// Credentials は1回の認証呼び出しにのみ使われる資格情報ペア。
// 認証呼び出しを超えて保持してはならない。
type Credentials struct {
	Email    string
	Password string
}

// Verifier は外部の本人性検証能力のインターフェース。
// 方式名（"credentials"等）をキーに資格情報を検証し、成功時はユーザーIDを返す。
// 分類済みの失敗は*model.AuthErrorとして返すこと。
type Verifier interface {
	Verify(ctx context.Context, method string, creds Credentials) (string, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier    Verifier
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(verifier Verifier, sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		verifier:    verifier,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Authenticate は資格情報を検証し、結果を分類する。
// 成功時はセッションを発行して返す（メッセージなし）。
// 分類済みの認証失敗はユーザー向けメッセージに変換して返す:
// CredentialsSigninは"Invalid credentials."、それ以外は"Something went wrong."。
// AuthError以外のエラーはインフラ障害の可能性が高いため、資格情報の問題として
// 偽装せず、そのまま呼び出し側へ伝播させる。
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*model.Session, string, error) {
	userID, err := s.verifier.Verify(ctx, MethodCredentials, creds)
	if err != nil {
		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			if authErr.Kind == model.AuthKindCredentialsSignin {
				return nil, msgInvalidCredentials, nil
			}
			slog.Warn("authentication failed",
				slog.String("kind", authErr.Kind),
			)
			return nil, msgSomethingWrong, nil
		}
		return nil, "", err
	}

	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", userID))
	return session, "", nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
