package domain

import (
	"errors"
	"testing"
	"time"
)

var testToday, _ = time.Parse(DateLayout, "2024-02-01")

func newJamaahAccount(totalDue Money) *BalanceAccount {
	return &BalanceAccount{
		ID:       "acc-1",
		Kind:     AccountKindJamaah,
		TotalDue: totalDue,
	}
}

func newDebtAccount(totalDue Money) *BalanceAccount {
	acc := &BalanceAccount{
		ID:       "debt-1",
		Kind:     AccountKindVendorDebt,
		TotalDue: totalDue,
	}
	acc.Recompute(testToday)
	return acc
}

func income(gross, discount Money, category string) PaymentRecord {
	return PaymentRecord{
		Direction:   DirectionIncome,
		Category:    category,
		GrossAmount: gross,
		Discount:    discount,
		NetAmount:   gross - discount,
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	acc := newJamaahAccount(20_000_000)
	acc.Payments = []PaymentRecord{
		income(5_000_000, 0, CategoryDP),
		income(4_000_000, 500_000, CategoryCicilan),
	}

	acc.Recompute(testToday)
	paid1, rem1, st1 := acc.PaidAmount, acc.RemainingAmount, acc.Status
	acc.Recompute(testToday)

	if acc.PaidAmount != paid1 || acc.RemainingAmount != rem1 || acc.Status != st1 {
		t.Errorf("recompute is not idempotent: (%d, %d, %q) vs (%d, %d, %q)",
			paid1, rem1, st1, acc.PaidAmount, acc.RemainingAmount, acc.Status)
	}
}

func TestRecomputeDPThenSettlement(t *testing.T) {
	acc := newJamaahAccount(20_000_000)

	acc.Payments = append(acc.Payments, income(5_000_000, 0, CategoryDP))
	acc.Recompute(testToday)
	if acc.PaidAmount != 5_000_000 {
		t.Errorf("paid = %d, want 5000000", acc.PaidAmount)
	}
	if acc.Status != StatusDP {
		t.Errorf("status = %q, want %q", acc.Status, StatusDP)
	}

	acc.Payments = append(acc.Payments, income(15_000_000, 0, CategoryPelunasan))
	acc.Recompute(testToday)
	if acc.PaidAmount != 20_000_000 {
		t.Errorf("paid = %d, want 20000000", acc.PaidAmount)
	}
	if acc.RemainingAmount != 0 {
		t.Errorf("remaining = %d, want 0", acc.RemainingAmount)
	}
	if acc.Status != StatusLunas {
		t.Errorf("status = %q, want %q", acc.Status, StatusLunas)
	}
}

func TestRecomputeDiscountCreditsNet(t *testing.T) {
	acc := newJamaahAccount(20_000_000)
	acc.Payments = append(acc.Payments, income(10_000_000, 1_000_000, CategoryDP))
	acc.Recompute(testToday)

	if acc.PaidAmount != 9_000_000 {
		t.Errorf("paid = %d, want net 9000000 (not gross)", acc.PaidAmount)
	}
}

func TestRecomputeDebtUsesGross(t *testing.T) {
	acc := newDebtAccount(5_000_000)
	// Discounts never apply to debt payments even if a row carried one.
	acc.Payments = append(acc.Payments, PaymentRecord{
		Direction:   DirectionExpense,
		Category:    CategoryHotel,
		GrossAmount: 2_000_000,
		NetAmount:   2_000_000,
	})
	acc.Recompute(testToday)

	if acc.PaidAmount != 2_000_000 {
		t.Errorf("paid = %d, want 2000000", acc.PaidAmount)
	}
	if acc.Status != DebtStatusPartial {
		t.Errorf("status = %q, want %q", acc.Status, DebtStatusPartial)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	acc := newJamaahAccount(10_000_000)
	acc.Payments = append(acc.Payments, income(15_000_000, 0, CategoryPelunasan))
	acc.Recompute(testToday)

	if acc.RemainingAmount < 0 {
		t.Errorf("remaining = %d, must never be negative", acc.RemainingAmount)
	}
	if acc.RemainingAmount != 0 {
		t.Errorf("remaining = %d, want 0", acc.RemainingAmount)
	}
}

func TestValidateApplyDiscountBound(t *testing.T) {
	acc := newJamaahAccount(10_000_000)
	acc.Recompute(testToday)

	err := acc.ValidateApply(&PaymentInput{
		Direction:   DirectionIncome,
		Category:    CategoryDP,
		GrossAmount: 1_000_000,
		Discount:    2_000_000,
		Method:      "cash",
		OccurredOn:  "2024-01-15",
	})
	var invalidDiscount *ErrInvalidDiscount
	if !errors.As(err, &invalidDiscount) {
		t.Errorf("expected ErrInvalidDiscount, got %v", err)
	}
}

func TestValidateApplyRejectsNonPositiveGross(t *testing.T) {
	acc := newJamaahAccount(10_000_000)
	acc.Recompute(testToday)

	for _, gross := range []Money{0, -5_000} {
		err := acc.ValidateApply(&PaymentInput{
			Direction:   DirectionIncome,
			Category:    CategoryDP,
			GrossAmount: gross,
			Method:      "cash",
			OccurredOn:  "2024-01-15",
		})
		var invalidAmount *ErrInvalidAmount
		if !errors.As(err, &invalidAmount) {
			t.Errorf("gross %d: expected ErrInvalidAmount, got %v", gross, err)
		}
	}
}

func TestValidateApplyRejectsBadCategory(t *testing.T) {
	acc := newJamaahAccount(10_000_000)
	acc.Recompute(testToday)

	err := acc.ValidateApply(&PaymentInput{
		Direction:   DirectionIncome,
		Category:    "tiket_pesawat", // expense category on an income account
		GrossAmount: 1_000_000,
		Method:      "cash",
		OccurredOn:  "2024-01-15",
	})
	var invalidCategory *ErrInvalidCategory
	if !errors.As(err, &invalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestValidateApplyRejectsBadDate(t *testing.T) {
	acc := newJamaahAccount(10_000_000)
	acc.Recompute(testToday)

	err := acc.ValidateApply(&PaymentInput{
		Direction:   DirectionIncome,
		Category:    CategoryDP,
		GrossAmount: 1_000_000,
		Method:      "cash",
		OccurredOn:  "15/01/2024",
	})
	var invalidDate *ErrInvalidDate
	if !errors.As(err, &invalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDebtCeiling(t *testing.T) {
	acc := newDebtAccount(1_000_000)
	acc.Payments = append(acc.Payments, PaymentRecord{
		Direction:   DirectionExpense,
		Category:    CategoryHotel,
		GrossAmount: 800_000,
		NetAmount:   800_000,
	})
	acc.Recompute(testToday)

	// Over the ceiling: rejected, state untouched.
	err := acc.ValidateApply(&PaymentInput{
		Direction:   DirectionExpense,
		Category:    CategoryHotel,
		GrossAmount: 300_000,
		Method:      "transfer",
		OccurredOn:  "2024-01-15",
	})
	var overpay *ErrOverpayment
	if !errors.As(err, &overpay) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}
	if acc.PaidAmount != 800_000 {
		t.Errorf("paid changed to %d after rejected payment", acc.PaidAmount)
	}

	// Exactly the remaining amount: accepted and drives status to paid.
	exact := &PaymentInput{
		Direction:   DirectionExpense,
		Category:    CategoryHotel,
		GrossAmount: 200_000,
		Method:      "transfer",
		OccurredOn:  "2024-01-15",
	}
	if err := acc.ValidateApply(exact); err != nil {
		t.Fatalf("payment of exact remaining rejected: %v", err)
	}
	acc.Payments = append(acc.Payments, PaymentRecord{
		Direction:   DirectionExpense,
		Category:    CategoryHotel,
		GrossAmount: 200_000,
		NetAmount:   200_000,
	})
	acc.Recompute(testToday)
	if acc.Status != DebtStatusPaid {
		t.Errorf("status = %q, want %q", acc.Status, DebtStatusPaid)
	}
}

func TestJamaahOverpaymentTolerated(t *testing.T) {
	acc := newJamaahAccount(1_000_000)
	acc.Recompute(testToday)

	err := acc.ValidateApply(&PaymentInput{
		Direction:   DirectionIncome,
		Category:    CategoryPelunasan,
		GrossAmount: 3_000_000,
		Method:      "bank_bca",
		OccurredOn:  "2024-01-15",
	})
	if err != nil {
		t.Errorf("jamaah overpayment should be tolerated, got %v", err)
	}
}

func TestApplyPatchCannotBreakInvariants(t *testing.T) {
	p := PaymentRecord{
		ID:          "pay-1",
		AccountID:   "acc-1",
		Direction:   DirectionIncome,
		Category:    CategoryDP,
		GrossAmount: 5_000_000,
		Discount:    0,
		NetAmount:   5_000_000,
		Method:      "cash",
		OccurredOn:  "2024-01-10",
	}

	bigDiscount := Money(6_000_000)
	if _, err := p.ApplyPatch(&PaymentPatch{Discount: &bigDiscount}); err == nil {
		t.Error("patch with discount > gross should be rejected")
	}

	newGross := Money(8_000_000)
	newDiscount := Money(1_000_000)
	updated, err := p.ApplyPatch(&PaymentPatch{GrossAmount: &newGross, Discount: &newDiscount})
	if err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}
	if updated.NetAmount != 7_000_000 {
		t.Errorf("net = %d, want 7000000", updated.NetAmount)
	}
	if updated.AccountID != "acc-1" {
		t.Errorf("patch must not re-target the payment, accountId = %q", updated.AccountID)
	}
	// Original untouched.
	if p.GrossAmount != 5_000_000 || p.NetAmount != 5_000_000 {
		t.Error("ApplyPatch mutated the original record")
	}
}
