// Package currency は最小通貨単位（セント）で保持した金額の表示変換を提供する。
// 金額の演算と永続化は常にint64のセントで行い、浮動小数点は表示にも使わない。
package currency

import "fmt"

// FormatUSD はセント金額を "$12.34" 形式の文字列に変換する。
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
