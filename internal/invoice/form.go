// Package invoice は請求書フォームの検証とミューテーションのドメインロジックを提供する。
package invoice

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/billman/internal/model"
)

// フィールドごとの検証エラーメッセージ
const (
	msgSelectCustomer = "Please select a customer."
	msgAmountTooSmall = "Please enter an amount greater than $0."
	msgSelectStatus   = "Please select an invoice status."
)

// Form はユーザーが送信した請求書フォームの生の文字列入力。
// 1回の検証+ミューテーションサイクルの間だけ存在し、永続化されない。
// idとdateはサーバー割り当てのためフォームに含まれない。
type Form struct {
	CustomerID string
	Amount     string
	Status     string
}

// Fields は検証を通過した正規化済みフィールド。
// AmountCentsは入力金額を round(amount*100) したセント整数。
type Fields struct {
	CustomerID  string
	AmountCents int64
	Status      model.InvoiceStatus
}

// Validate はフォームを検証し、正規化済みフィールドまたはフィールド別
// エラーマップのどちらか一方を返す。両方を同時に返すことはない。
// いずれかのフィールドが不正な場合、全フィールドのエラーを蓄積して返し、
// 副作用は一切発生しない。
func (f Form) Validate() (*Fields, map[string][]string) {
	fieldErrors := make(map[string][]string)

	customerID := strings.TrimSpace(f.CustomerID)
	if customerID == "" {
		fieldErrors["customerId"] = append(fieldErrors["customerId"], msgSelectCustomer)
	}

	amountCents, ok := coerceAmountToCents(f.Amount)
	if !ok {
		fieldErrors["amount"] = append(fieldErrors["amount"], msgAmountTooSmall)
	}

	status := model.InvoiceStatus(f.Status)
	if !status.IsValid() {
		fieldErrors["status"] = append(fieldErrors["status"], msgSelectStatus)
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &Fields{
		CustomerID:  customerID,
		AmountCents: amountCents,
		Status:      status,
	}, nil
}

// coerceAmountToCents は文字列金額をセント整数に変換する。
// 十進数として正確にパースし、浮動小数点の誤差を持ち込まない。
// 数値でない入力、および0以下の金額は失敗として扱う。
func coerceAmountToCents(raw string) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	if d.Sign() <= 0 {
		return 0, false
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), true
}
