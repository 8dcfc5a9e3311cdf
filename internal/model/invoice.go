// Package model はドメインモデルを定義する。
package model

// InvoiceStatus は請求書の支払い状態を表す。
type InvoiceStatus string

const (
	// InvoiceStatusPending は未払いの請求書を示す。
	InvoiceStatusPending InvoiceStatus = "pending"
	// InvoiceStatusPaid は支払い済みの請求書を示す。
	InvoiceStatusPaid InvoiceStatus = "paid"
)

// IsValid はステータスが定義済みの値かどうかを返す。
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Invoice は請求書を表す。
// Amountは最小通貨単位（セント）の整数で保持し、浮動小数点誤差を排除する。
// IDとDateは作成時にサーバーが割り当て、以後変更されない。
type Invoice struct {
	ID         string
	CustomerID string
	Amount     int64 // セント単位
	Status     InvoiceStatus
	Date       string // ISO形式（YYYY-MM-DD）、作成日
}

// InvoiceWithCustomer は請求書と顧客情報を結合した一覧表示用の行。
type InvoiceWithCustomer struct {
	Invoice
	CustomerName     string
	CustomerEmail    string
	CustomerImageURL string
}

// Revenue は月別売上を表す。ダッシュボードのチャート表示に使用する。
type Revenue struct {
	Month   string // "Jan", "Feb" 等
	Revenue int64  // セント単位
}

// CardData はダッシュボード上部のサマリーカードに表示する集計値。
type CardData struct {
	InvoiceCount  int
	CustomerCount int
	TotalPaid     int64 // セント単位
	TotalPending  int64 // セント単位
}
