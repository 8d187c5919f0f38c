package domain

import "time"

// Payment directions. Naming follows the agency's bookkeeping vocabulary:
// pemasukan = money in (jamaah payments), pengeluaran = money out (vendor costs).
const (
	DirectionIncome  = "pemasukan"
	DirectionExpense = "pengeluaran"
)

// Income categories.
const (
	CategoryDP        = "dp"
	CategoryCicilan   = "cicilan"
	CategoryPelunasan = "pelunasan"
	CategoryLainnya   = "lainnya"
)

// Expense categories (vendor cost buckets).
const (
	CategoryTiketPesawat     = "tiket_pesawat"
	CategoryHotel            = "hotel"
	CategoryHotelTransit     = "hotel_transit"
	CategoryTransport        = "transport"
	CategoryVisaHandling     = "visa_handling"
	CategoryMuthawif         = "muthawif"
	CategoryKonsumsi         = "konsumsi"
	CategoryManasik          = "manasik"
	CategoryTourLeader       = "tour_leader"
	CategoryOperasionalKtr   = "operasional_kantor"
	CategoryATKKantor        = "atk_kantor"
	CategoryKeperluanKantor  = "keperluan_kantor_lainnya"
	CategoryUjroh            = "ujroh"
)

var incomeCategories = map[string]bool{
	CategoryDP:        true,
	CategoryCicilan:   true,
	CategoryPelunasan: true,
	CategoryLainnya:   true,
}

var expenseCategories = map[string]bool{
	CategoryTiketPesawat:    true,
	CategoryHotel:           true,
	CategoryHotelTransit:    true,
	CategoryTransport:       true,
	CategoryVisaHandling:    true,
	CategoryMuthawif:        true,
	CategoryKonsumsi:        true,
	CategoryManasik:         true,
	CategoryTourLeader:      true,
	CategoryOperasionalKtr:  true,
	CategoryATKKantor:       true,
	CategoryKeperluanKantor: true,
	CategoryUjroh:           true,
	CategoryLainnya:         true,
}

// Payment methods.
var paymentMethods = map[string]bool{
	"cash":         true,
	"transfer":     true,
	"bank_bca":     true,
	"bank_mandiri": true,
	"bank_bni":     true,
	"bank_bri":     true,
	"bank_syariah": true,
}

// DateLayout is the calendar-date format used throughout the ledger.
// Payments carry a date only, no time-of-day semantics.
const DateLayout = "2006-01-02"

// PaymentRecord is a single recorded transaction against a balance account.
type PaymentRecord struct {
	ID              string `json:"id"`
	AccountID       string `json:"accountId"`
	Direction       string `json:"direction"`
	Category        string `json:"category"`
	GrossAmount     Money  `json:"grossAmount"`
	Discount        Money  `json:"discount"`
	NetAmount       Money  `json:"netAmount"`
	Method          string `json:"method"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
	Description     string `json:"description,omitempty"`
	OccurredOn      string `json:"occurredOn"`
	ReceiptURL      string `json:"receiptUrl,omitempty"`
	PackageID       string `json:"packageId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PaymentInput carries the caller-supplied fields for a new payment.
type PaymentInput struct {
	Direction       string `json:"direction"`
	Category        string `json:"category"`
	GrossAmount     Money  `json:"grossAmount"`
	Discount        Money  `json:"discount"`
	Method          string `json:"method"`
	ReferenceNumber string `json:"referenceNumber"`
	Description     string `json:"description"`
	OccurredOn      string `json:"occurredOn"`
	ReceiptURL      string `json:"receiptUrl"`
	PackageID       string `json:"packageId"`
}

// PaymentPatch carries the editable fields of an existing payment.
// A payment can never be re-targeted to a different account, so there is
// no accountId here.
type PaymentPatch struct {
	Category        *string `json:"category"`
	GrossAmount     *Money  `json:"grossAmount"`
	Discount        *Money  `json:"discount"`
	Method          *string `json:"method"`
	ReferenceNumber *string `json:"referenceNumber"`
	Description     *string `json:"description"`
	OccurredOn      *string `json:"occurredOn"`
}

// ValidCategory reports whether category belongs to the closed set for direction.
func ValidCategory(direction, category string) bool {
	switch direction {
	case DirectionIncome:
		return incomeCategories[category]
	case DirectionExpense:
		return expenseCategories[category]
	default:
		return false
	}
}

// ValidMethod reports whether method is a known payment method.
func ValidMethod(method string) bool {
	return paymentMethods[method]
}

// ValidatePaymentInput checks the field-level rules shared by every payment:
// positive gross, discount within [0, gross], category in the direction's set,
// a known method and a parseable date. Returns the first violation.
func ValidatePaymentInput(in *PaymentInput) error {
	if in.GrossAmount <= 0 {
		return &ErrInvalidAmount{Amount: in.GrossAmount}
	}
	if in.Discount < 0 || in.Discount > in.GrossAmount {
		return &ErrInvalidDiscount{Gross: in.GrossAmount, Discount: in.Discount}
	}
	if !ValidCategory(in.Direction, in.Category) {
		return &ErrInvalidCategory{Category: in.Category, Direction: in.Direction}
	}
	if !ValidMethod(in.Method) {
		return &ErrValidation{Field: "method", Message: "unknown payment method"}
	}
	if _, err := time.Parse(DateLayout, in.OccurredOn); err != nil {
		return &ErrInvalidDate{Field: "occurredOn", Value: in.OccurredOn}
	}
	return nil
}

// NewPaymentRecord builds a validated record for the given account.
// NetAmount is always gross minus discount; for expense payments the
// discount is forced to zero (vendor debts have no discount concept).
func NewPaymentRecord(id, accountID string, in *PaymentInput, now time.Time) (*PaymentRecord, error) {
	if in.Direction == DirectionExpense {
		in.Discount = 0
	}
	if err := ValidatePaymentInput(in); err != nil {
		return nil, err
	}
	return &PaymentRecord{
		ID:              id,
		AccountID:       accountID,
		Direction:       in.Direction,
		Category:        in.Category,
		GrossAmount:     in.GrossAmount,
		Discount:        in.Discount,
		NetAmount:       in.GrossAmount - in.Discount,
		Method:          in.Method,
		ReferenceNumber: in.ReferenceNumber,
		Description:     in.Description,
		OccurredOn:      in.OccurredOn,
		ReceiptURL:      in.ReceiptURL,
		PackageID:       in.PackageID,
		CreatedAt:       now,
	}, nil
}

// ApplyPatch returns a copy of p with the patch applied and re-validated.
func (p *PaymentRecord) ApplyPatch(patch *PaymentPatch) (*PaymentRecord, error) {
	updated := *p
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.GrossAmount != nil {
		updated.GrossAmount = *patch.GrossAmount
	}
	if patch.Discount != nil {
		updated.Discount = *patch.Discount
	}
	if patch.Method != nil {
		updated.Method = *patch.Method
	}
	if patch.ReferenceNumber != nil {
		updated.ReferenceNumber = *patch.ReferenceNumber
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.OccurredOn != nil {
		updated.OccurredOn = *patch.OccurredOn
	}

	in := &PaymentInput{
		Direction:   updated.Direction,
		Category:    updated.Category,
		GrossAmount: updated.GrossAmount,
		Discount:    updated.Discount,
		Method:      updated.Method,
		OccurredOn:  updated.OccurredOn,
	}
	if updated.Direction == DirectionExpense {
		in.Discount = 0
		updated.Discount = 0
	}
	if err := ValidatePaymentInput(in); err != nil {
		return nil, err
	}
	updated.NetAmount = updated.GrossAmount - updated.Discount
	return &updated, nil
}
