package domain

import "time"

// ============================================================
// Vendors & vendor debts
// ============================================================

// Vendor is a supplier the agency buys services from (hotel, airline,
// transport, visa handling, catering).
type Vendor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type,omitempty"` // hotel, maskapai, transport, visa, konsumsi, lainnya
	ContactPerson string    `json:"contactPerson,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	BankName      string    `json:"bankName,omitempty"`
	BankAccount   string    `json:"bankAccount,omitempty"`
	NPWP          string    `json:"npwp,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VendorInput carries the writable fields for create/update.
type VendorInput struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	BankName      string `json:"bankName"`
	BankAccount   string `json:"bankAccount"`
	NPWP          string `json:"npwp"`
}

// Validate checks the create/update input.
func (in *VendorInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	return nil
}

// VendorDebtInput creates a new debt account for a vendor.
type VendorDebtInput struct {
	VendorID    string `json:"vendorId"`
	Description string `json:"description"`
	TotalDue    Money  `json:"totalDue"`
	DueDate     string `json:"dueDate"`
}

// Validate checks the debt-creation input.
func (in *VendorDebtInput) Validate() error {
	if in.VendorID == "" {
		return &ErrValidation{Field: "vendorId", Message: "required"}
	}
	if in.TotalDue <= 0 {
		return &ErrInvalidAmount{Amount: in.TotalDue}
	}
	if in.DueDate != "" {
		if _, err := time.Parse(DateLayout, in.DueDate); err != nil {
			return &ErrInvalidDate{Field: "dueDate", Value: in.DueDate}
		}
	}
	return nil
}

// VendorDebt pairs a debt account with its vendor for list views.
type VendorDebt struct {
	Account BalanceAccount `json:"account"`
	Vendor  Vendor         `json:"vendor"`
}
