package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/billman/internal/model"
	"github.com/hitoshi/billman/internal/repository"
)

// BcryptCost はパスワードハッシュのコストパラメータ。
const BcryptCost = 12

// CredentialsVerifier はusersテーブルのbcryptハッシュに対して
// 資格情報を検証するVerifier実装。
type CredentialsVerifier struct {
	userRepo repository.UserRepository
}

// NewCredentialsVerifier はCredentialsVerifierを生成する。
func NewCredentialsVerifier(userRepo repository.UserRepository) *CredentialsVerifier {
	return &CredentialsVerifier{userRepo: userRepo}
}

// Verify は資格情報を検証し、成功時はユーザーIDを返す。
// ユーザー不在とパスワード不一致はどちらもCredentialsSigninとして報告し、
// 存在有無を外部から区別できないようにする。
// データベース障害は分類せずそのまま返す。
func (v *CredentialsVerifier) Verify(ctx context.Context, method string, creds Credentials) (string, error) {
	if method != MethodCredentials {
		return "", &model.AuthError{Kind: model.AuthKindUnsupportedMethod}
	}

	user, err := v.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", model.NewCredentialsSigninError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return "", model.NewCredentialsSigninError()
	}

	return user.ID, nil
}

// HashPassword はパスワードをbcryptでハッシュする。シードデータ投入で使用する。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// compile-time interface check
var _ Verifier = (*CredentialsVerifier)(nil)
