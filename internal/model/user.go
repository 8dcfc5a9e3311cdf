package model

import "time"

// User はダッシュボードにログインできるユーザーを表す。
// PasswordHashはbcryptハッシュを保持する。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
