// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/billman/internal/model"
)

// InvoiceRepository は請求書データの永続化インターフェース。
// 書き込みは1操作につき単一のパラメータ化SQL文を発行する。
type InvoiceRepository interface {
	// FindByID は指定IDの請求書を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Invoice, error)

	// Create は請求書を作成する。
	Create(ctx context.Context, invoice *model.Invoice) error

	// Update は指定IDの請求書のcustomer_id、amount、statusのみを更新する。
	// idとdateは不変。対象行が存在しない場合もエラーにはならない（last-writer-wins）。
	Update(ctx context.Context, invoice *model.Invoice) error

	// DeleteByID は指定IDの請求書を削除する。
	// 対象行が既に存在しない場合も成功扱いとする（冪等削除）。
	DeleteByID(ctx context.Context, id string) error

	// ListFiltered は検索語にマッチする請求書一覧を顧客情報付きで返す。
	// 顧客名・メール・金額・日付・ステータスを対象にILIKE検索し、日付降順で返す。
	ListFiltered(ctx context.Context, query string, limit, offset int) ([]model.InvoiceWithCustomer, error)

	// CountFiltered は検索語にマッチする請求書の総数を返す。
	CountFiltered(ctx context.Context, query string) (int, error)

	// ListLatest は日付降順で最新の請求書を顧客情報付きで返す。
	ListLatest(ctx context.Context, limit int) ([]model.InvoiceWithCustomer, error)

	// CardData はダッシュボードのサマリー集計を返す。
	CardData(ctx context.Context) (*model.CardData, error)
}

// CustomerRepository は顧客データの読み取りインターフェース。
// 顧客はこの系では読み取り専用で、変更は行わない。
type CustomerRepository interface {
	// ListAll は全顧客を名前昇順で返す。請求書フォームの選択肢に使用する。
	ListAll(ctx context.Context) ([]*model.Customer, error)

	// ListFilteredWithTotals は検索語にマッチする顧客を請求書集計付きで返す。
	ListFilteredWithTotals(ctx context.Context, query string) ([]model.CustomerWithTotals, error)
}

// RevenueRepository は月別売上データの読み取りインターフェース。
type RevenueRepository interface {
	// ListMonthly は月別売上を返す。
	ListMonthly(ctx context.Context) ([]model.Revenue, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。パスワードはハッシュ済みであること。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}
