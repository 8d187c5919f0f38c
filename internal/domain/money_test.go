package domain

import "testing"

func TestMoneySubClamped(t *testing.T) {
	tests := []struct {
		name string
		a, b Money
		want Money
	}{
		{"normal", 10_000_000, 3_000_000, 7_000_000},
		{"exact", 5_000_000, 5_000_000, 0},
		{"overshoot clamps", 5_000_000, 8_000_000, 0},
		{"zero", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SubClamped(tt.b); got != tt.want {
				t.Errorf("SubClamped(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMoneyCompare(t *testing.T) {
	if Money(100).Compare(200) != -1 {
		t.Error("100 should compare less than 200")
	}
	if Money(200).Compare(100) != 1 {
		t.Error("200 should compare greater than 100")
	}
	if Money(100).Compare(100) != 0 {
		t.Error("100 should compare equal to 100")
	}
}

func TestMoneyDivRoundHalfUp(t *testing.T) {
	tests := []struct {
		m    Money
		n    int64
		want Money
	}{
		{10, 3, 3},   // 3.33 → 3
		{11, 2, 6},   // 5.5 → 6
		{9, 2, 5},    // 4.5 → 5 (half up, not banker's)
		{100, 4, 25}, // exact
		{-11, 2, -6},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := tt.m.DivRoundHalfUp(tt.n); got != tt.want {
			t.Errorf("DivRoundHalfUp(%d, %d) = %d, want %d", tt.m, tt.n, got, tt.want)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := Money(1_500_000).Format(); got != "Rp 1.500.000" {
		t.Errorf("Format() = %q, want %q", got, "Rp 1.500.000")
	}
	if got := Money(-25_000).Format(); got != "-Rp 25.000" {
		t.Errorf("Format() = %q, want %q", got, "-Rp 25.000")
	}
	if got := Money(0).Format(); got != "Rp 0" {
		t.Errorf("Format() = %q, want %q", got, "Rp 0")
	}
}
