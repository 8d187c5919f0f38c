package domain

import "time"

// Account kinds. A jamaah account tracks what a pilgrim owes the agency;
// a vendor-debt account tracks what the agency owes a supplier.
const (
	AccountKindJamaah     = "jamaah"
	AccountKindVendorDebt = "vendor_debt"
)

// BalanceAccount is the aggregate holding a total due and its payments.
// PaidAmount, RemainingAmount and Status are derived: Recompute is the
// only code path that changes them, so they can never drift from the
// payment rows.
type BalanceAccount struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	OwnerID         string    `json:"ownerId"`
	TotalDue        Money     `json:"totalDue"`
	PaidAmount      Money     `json:"paidAmount"`
	RemainingAmount Money     `json:"remainingAmount"`
	Status          string    `json:"status"`
	Cancelled       bool      `json:"cancelled"`
	DueDate         string    `json:"dueDate,omitempty"`
	Description     string    `json:"description,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Payments in insertion order (entry order, not occurredOn order).
	Payments []PaymentRecord `json:"payments,omitempty"`
}

// AccountSummary is the read-model view of an account's derived state.
type AccountSummary struct {
	AccountID       string `json:"accountId"`
	Kind            string `json:"kind"`
	TotalDue        Money  `json:"totalDue"`
	PaidAmount      Money  `json:"paidAmount"`
	RemainingAmount Money  `json:"remainingAmount"`
	Status          string `json:"status"`
}

// Direction returns the payment direction this account accepts.
func (a *BalanceAccount) Direction() string {
	if a.Kind == AccountKindVendorDebt {
		return DirectionExpense
	}
	return DirectionIncome
}

// Recompute derives paid, remaining and status from the payment list.
// Jamaah payments credit their net amount (gross minus discount); debt
// payments credit gross. Remaining clamps to zero because totalDue edits
// or discounts can legitimately push paid past total. Idempotent.
func (a *BalanceAccount) Recompute(today time.Time) {
	var paid Money
	lastCategory := ""
	for _, p := range a.Payments {
		if a.Kind == AccountKindVendorDebt {
			paid = paid.Add(p.GrossAmount)
		} else {
			paid = paid.Add(p.NetAmount)
		}
		lastCategory = p.Category
	}

	a.PaidAmount = paid
	a.RemainingAmount = a.TotalDue.SubClamped(paid)

	if a.Kind == AccountKindVendorDebt {
		a.Status = ClassifyVendorDebt(a.TotalDue, paid, a.DueDate, today)
	} else {
		a.Status = ClassifyJamaah(a.TotalDue, paid, lastCategory, a.Cancelled)
	}
}

// ValidateApply checks a prospective payment against the account's current
// state. Field-level rules run first; the debt ceiling is the one
// account-dependent rule: vendor debts reject any payment that exceeds the
// remaining balance, while jamaah accounts tolerate overshoot (the front
// end hints that the balance will settle but does not block it).
func (a *BalanceAccount) ValidateApply(in *PaymentInput) error {
	if in.Direction != a.Direction() {
		return &ErrValidation{Field: "direction", Message: "direction does not match account kind"}
	}
	if err := ValidatePaymentInput(in); err != nil {
		return err
	}
	if a.Kind == AccountKindVendorDebt && in.GrossAmount > a.RemainingAmount {
		return &ErrOverpayment{Remaining: a.RemainingAmount, Amount: in.GrossAmount}
	}
	return nil
}

// Summary returns the derived-state view of the account.
func (a *BalanceAccount) Summary() *AccountSummary {
	return &AccountSummary{
		AccountID:       a.ID,
		Kind:            a.Kind,
		TotalDue:        a.TotalDue,
		PaidAmount:      a.PaidAmount,
		RemainingAmount: a.RemainingAmount,
		Status:          a.Status,
	}
}
