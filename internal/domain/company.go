package domain

import (
	"strings"
	"time"
)

// BankAccount is one of the agency's payment destinations shown on
// invoices and receipts.
type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
}

// CompanySettings is the agency's single profile record: identity,
// contact details and bank accounts.
type CompanySettings struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Address      string        `json:"address,omitempty"`
	City         string        `json:"city,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Email        string        `json:"email,omitempty"`
	BankAccounts []BankAccount `json:"bankAccounts"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CompanySettingsInput carries the editable profile fields.
type CompanySettingsInput struct {
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	City         string        `json:"city"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	BankAccounts []BankAccount `json:"bankAccounts"`
}

// Validate checks the input. Only the name is mandatory.
func (in *CompanySettingsInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ErrValidation{Field: "name", Message: "company name is required"}
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return &ErrValidation{Field: "email", Message: "invalid email address"}
	}
	for _, ba := range in.BankAccounts {
		if strings.TrimSpace(ba.BankName) == "" || strings.TrimSpace(ba.AccountNumber) == "" {
			return &ErrValidation{Field: "bankAccounts", Message: "bank name and account number are required"}
		}
	}
	return nil
}
