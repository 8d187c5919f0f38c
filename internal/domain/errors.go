package domain

import "fmt"

// Error types for consistent error handling across the back office.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidAmount indicates a zero or negative gross amount.
type ErrInvalidAmount struct {
	Amount Money
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount: %d, must be positive", int64(e.Amount))
}

// ErrInvalidDiscount indicates a discount that is negative or exceeds the gross amount.
type ErrInvalidDiscount struct {
	Gross    Money
	Discount Money
}

func (e *ErrInvalidDiscount) Error() string {
	return fmt.Sprintf("invalid discount: %d on gross %d", int64(e.Discount), int64(e.Gross))
}

// ErrInvalidCategory indicates a category outside the account's allowed set.
type ErrInvalidCategory struct {
	Category  string
	Direction string
}

func (e *ErrInvalidCategory) Error() string {
	return fmt.Sprintf("invalid category '%s' for direction '%s'", e.Category, e.Direction)
}

// ErrInvalidDate indicates an unparseable calendar date.
type ErrInvalidDate struct {
	Field string
	Value string
}

func (e *ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date on '%s': %q, expected YYYY-MM-DD", e.Field, e.Value)
}

// ErrOverpayment indicates a vendor-debt payment that exceeds the remaining balance.
type ErrOverpayment struct {
	Remaining Money
	Amount    Money
}

func (e *ErrOverpayment) Error() string {
	return fmt.Sprintf("overpayment: amount %d exceeds remaining %d", int64(e.Amount), int64(e.Remaining))
}

// ErrConcurrentModification indicates an optimistic-lock conflict on an account.
type ErrConcurrentModification struct {
	AccountID string
}

func (e *ErrConcurrentModification) Error() string {
	return fmt.Sprintf("concurrent modification of account %s", e.AccountID)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a resource already exists (e.g. duplicate email or package code).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
