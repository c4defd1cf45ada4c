package payment

import "testing"

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{1180, 118000},
		{1062, 106200},
		{500.5, 50050},
		{0.01, 1},
		{99.999, 10000},
	}
	for _, tt := range tests {
		if got := MinorUnits(tt.amount); got != tt.want {
			t.Fatalf("MinorUnits(%v): expected %d, got %d", tt.amount, tt.want, got)
		}
	}
}
