package model

// Customer は顧客を表す。この系では読み取り専用で、請求書からIDで参照される。
type Customer struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// CustomerWithTotals は顧客と請求書集計を結合した一覧表示用の行。
type CustomerWithTotals struct {
	Customer
	TotalInvoices int
	TotalPending  int64 // セント単位
	TotalPaid     int64 // セント単位
}
