package domain

import "time"

// ============================================================
// Jamaah (pilgrims)
// ============================================================

// Jamaah is a pilgrim registered with the agency. Each jamaah owns one
// balance account; its totalDue defaults to the assigned package's price
// per person.
type Jamaah struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title,omitempty"` // tn, ny, nn
	NIK           string    `json:"nik,omitempty"`
	PassportNo    string    `json:"passportNumber,omitempty"`
	Gender        string    `json:"gender,omitempty"` // male, female
	MaritalStatus string    `json:"maritalStatus,omitempty"`
	BirthPlace    string    `json:"birthPlace,omitempty"`
	BirthDate     string    `json:"birthDate,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Province      string    `json:"province,omitempty"`
	Regency       string    `json:"regency,omitempty"`
	District      string    `json:"district,omitempty"`
	Village       string    `json:"village,omitempty"`
	PackageID     string    `json:"packageId,omitempty"`
	RoomType      string    `json:"roomType,omitempty"` // quad, triple, double
	AccountID     string    `json:"accountId"`
	Cancelled     bool      `json:"cancelled"`
	CancelReason  string    `json:"cancelReason,omitempty"`
	DocumentURLs  []string  `json:"documentUrls,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// JamaahInput carries the writable fields for create/update.
type JamaahInput struct {
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	NIK           string   `json:"nik"`
	PassportNo    string   `json:"passportNumber"`
	Gender        string   `json:"gender"`
	MaritalStatus string   `json:"maritalStatus"`
	BirthPlace    string   `json:"birthPlace"`
	BirthDate     string   `json:"birthDate"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Address       string   `json:"address"`
	Province      string   `json:"province"`
	Regency       string   `json:"regency"`
	District      string   `json:"district"`
	Village       string   `json:"village"`
	PackageID     string   `json:"packageId"`
	RoomType      string   `json:"roomType"`
	TotalDue      *Money   `json:"totalDue"` // overrides the package price when set
	DocumentURLs  []string `json:"documentUrls"`
}

// Validate checks the create/update input.
func (in *JamaahInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	if in.BirthDate != "" {
		if _, err := time.Parse(DateLayout, in.BirthDate); err != nil {
			return &ErrInvalidDate{Field: "birthDate", Value: in.BirthDate}
		}
	}
	if in.TotalDue != nil && *in.TotalDue < 0 {
		return &ErrValidation{Field: "totalDue", Message: "must not be negative"}
	}
	return nil
}

// JamaahWithBalance pairs a jamaah with its account summary for list views.
type JamaahWithBalance struct {
	Jamaah
	TotalDue        Money  `json:"totalDue"`
	PaidAmount      Money  `json:"paidAmount"`
	RemainingAmount Money  `json:"remainingAmount"`
	PaymentStatus   string `json:"paymentStatus"`
}

// JamaahFilter narrows jamaah list queries.
type JamaahFilter struct {
	PackageID string
	Status    string
	Search    string
	Page      int
	PageSize  int
}
