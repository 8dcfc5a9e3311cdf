package model

import "fmt"

// AuthError は認証レイヤーが分類済みの失敗として報告するエラーを表す。
// Kindは失敗の種別を示す文字列で、呼び出し側はKindに応じてユーザー向け
// メッセージを選択する。AuthError以外のエラーは認証レイヤーの障害では
// ないため、握りつぶさず上位に伝播させること。
type AuthError struct {
	Kind string
}

// 定義済みの認証失敗種別
const (
	// AuthKindCredentialsSignin は資格情報の不一致を示す。
	AuthKindCredentialsSignin = "CredentialsSignin"
	// AuthKindUnsupportedMethod は未対応の認証方式が指定されたことを示す。
	AuthKindUnsupportedMethod = "UnsupportedMethod"
)

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Kind)
}

// NewCredentialsSigninError は資格情報不一致のAuthErrorを生成する。
func NewCredentialsSigninError() *AuthError {
	return &AuthError{Kind: AuthKindCredentialsSignin}
}
