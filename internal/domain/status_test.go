package domain

import (
	"testing"
	"time"
)

func TestClassifyJamaah(t *testing.T) {
	total := Money(10_000_000)

	tests := []struct {
		name         string
		totalDue     Money
		paid         Money
		lastCategory string
		cancelled    bool
		want         string
	}{
		{"nothing paid", total, 0, "", false, StatusPending},
		{"dp paid", total, 3_000_000, CategoryDP, false, StatusDP},
		{"installment after dp", total, 7_000_000, CategoryCicilan, false, StatusCicilan},
		{"paid in full", total, 10_000_000, CategoryPelunasan, false, StatusLunas},
		{"overpaid still lunas", total, 12_000_000, CategoryPelunasan, false, StatusLunas},
		{"cancelled wins over lunas", total, 10_000_000, CategoryPelunasan, true, StatusDibatalkan},
		{"cancelled wins over pending", total, 0, "", true, StatusDibatalkan},
		{"zero total is pending", 0, 0, "", false, StatusPending},
		{"zero total with payments still pending", 0, 5_000_000, CategoryLainnya, false, StatusPending},
		{"partial with lainnya is cicilan", total, 2_000_000, CategoryLainnya, false, StatusCicilan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyJamaah(tt.totalDue, tt.paid, tt.lastCategory, tt.cancelled)
			if got != tt.want {
				t.Errorf("ClassifyJamaah(%d, %d, %q, %v) = %q, want %q",
					tt.totalDue, tt.paid, tt.lastCategory, tt.cancelled, got, tt.want)
			}
		})
	}
}

func TestClassifyVendorDebt(t *testing.T) {
	total := Money(5_000_000)
	today, _ := time.Parse(DateLayout, "2024-02-01")

	tests := []struct {
		name    string
		total   Money
		paid    Money
		dueDate string
		want    string
	}{
		{"nothing paid", total, 0, "2024-01-01", DebtStatusUnpaid},
		{"partial past due", total, 2_000_000, "2024-01-01", DebtStatusOverdue},
		{"fully paid past due", total, 5_000_000, "2024-01-01", DebtStatusPaid},
		{"partial before due", total, 2_000_000, "2024-06-01", DebtStatusPartial},
		{"partial no due date", total, 2_000_000, "", DebtStatusPartial},
		{"zero total", 0, 0, "", DebtStatusUnpaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyVendorDebt(tt.total, tt.paid, tt.dueDate, today)
			if got != tt.want {
				t.Errorf("ClassifyVendorDebt(%d, %d, %q) = %q, want %q",
					tt.total, tt.paid, tt.dueDate, got, tt.want)
			}
		})
	}
}
