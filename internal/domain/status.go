package domain

import "time"

// Jamaah payment statuses.
const (
	StatusPending    = "pending"
	StatusDP         = "dp"
	StatusCicilan    = "cicilan"
	StatusLunas      = "lunas"
	StatusDibatalkan = "dibatalkan"
)

// Vendor debt statuses.
const (
	DebtStatusUnpaid  = "unpaid"
	DebtStatusPartial = "partial"
	DebtStatusOverdue = "overdue"
	DebtStatusPaid    = "paid"
)

// ClassifyJamaah maps a jamaah account's state to its payment status.
// Priority-ordered decision list; the first matching rule wins:
//
//  1. cancelled flag → dibatalkan, overriding everything else
//  2. totalDue = 0 → pending (unset package price, degenerate account)
//  3. paid ≥ total → lunas
//  4. paid = 0 → pending
//  5. partial with the most recent payment categorised dp → dp
//  6. otherwise → cicilan
//
// Whether a partial balance shows as dp or cicilan is decided by the last
// payment's category, not by a percentage-of-total heuristic.
func ClassifyJamaah(totalDue, paid Money, lastCategory string, cancelled bool) string {
	switch {
	case cancelled:
		return StatusDibatalkan
	case totalDue.IsZero():
		return StatusPending
	case paid.Compare(totalDue) >= 0:
		return StatusLunas
	case paid.IsZero():
		return StatusPending
	case lastCategory == CategoryDP:
		return StatusDP
	default:
		return StatusCicilan
	}
}

// ClassifyVendorDebt maps a vendor-debt account's state to its status.
// Overdue takes priority over partial once the due date has passed.
// dueDate is a calendar date; an empty or unparseable value means no deadline.
func ClassifyVendorDebt(totalDue, paid Money, dueDate string, today time.Time) string {
	switch {
	case totalDue.IsZero():
		return DebtStatusUnpaid
	case paid.Compare(totalDue) >= 0:
		return DebtStatusPaid
	case paid.IsZero():
		return DebtStatusUnpaid
	}
	if dueDate != "" {
		if due, err := time.Parse(DateLayout, dueDate); err == nil {
			if due.Before(today.Truncate(24 * time.Hour)) {
				return DebtStatusOverdue
			}
		}
	}
	return DebtStatusPartial
}
