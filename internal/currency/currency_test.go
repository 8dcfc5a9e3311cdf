package currency

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{"dollars and cents", 1234, "$12.34"},
		{"zero", 0, "$0.00"},
		{"cents only", 5, "$0.05"},
		{"exact dollars", 2500, "$25.00"},
		{"single cent digit padded", 1201, "$12.01"},
		{"negative", -1234, "-$12.34"},
		{"large amount", 123456789, "$1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUSD(tt.cents); got != tt.want {
				t.Errorf("FormatUSD(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}
