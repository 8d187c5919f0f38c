package domain

import "time"

// ============================================================
// Travel packages
// ============================================================

// Package statuses.
const (
	PackageStatusOpen      = "open"
	PackageStatusClosed    = "closed"
	PackageStatusOngoing   = "ongoing"
	PackageStatusCompleted = "completed"
)

// Package is an Umrah or Hajj trip sold by the agency.
// ActualCost accumulates from expense transactions linked to the package;
// EstimatedCost is the planning figure entered up front.
type Package struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Type          string    `json:"type"` // umroh, haji
	PricePerPax   Money     `json:"pricePerPax"`
	SeatCapacity  int       `json:"seatCapacity"`
	BookedSeats   int       `json:"bookedSeats"`
	DepartureDate string    `json:"departureDate,omitempty"`
	ReturnDate    string    `json:"returnDate,omitempty"`
	HotelMakkah   string    `json:"hotelMakkah,omitempty"`
	HotelMadinah  string    `json:"hotelMadinah,omitempty"`
	Airline       string    `json:"airline,omitempty"`
	Status        string    `json:"status"`
	EstimatedCost Money     `json:"estimatedCost"`
	ActualCost    Money     `json:"actualCost"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PackageInput carries the writable fields for create/update.
type PackageInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	PricePerPax   Money  `json:"pricePerPax"`
	SeatCapacity  int    `json:"seatCapacity"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	HotelMakkah   string `json:"hotelMakkah"`
	HotelMadinah  string `json:"hotelMadinah"`
	Airline       string `json:"airline"`
	Status        string `json:"status"`
	EstimatedCost Money  `json:"estimatedCost"`
}

// Validate checks the create/update input.
func (in *PackageInput) Validate() error {
	if in.Code == "" {
		return &ErrValidation{Field: "code", Message: "required"}
	}
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	if in.Type != "umroh" && in.Type != "haji" {
		return &ErrValidation{Field: "type", Message: "must be umroh or haji"}
	}
	if in.PricePerPax < 0 {
		return &ErrValidation{Field: "pricePerPax", Message: "must not be negative"}
	}
	if in.SeatCapacity < 0 {
		return &ErrValidation{Field: "seatCapacity", Message: "must not be negative"}
	}
	for _, f := range []struct{ name, value string }{
		{"departureDate", in.DepartureDate},
		{"returnDate", in.ReturnDate},
	} {
		if f.value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, f.value); err != nil {
			return &ErrInvalidDate{Field: f.name, Value: f.value}
		}
	}
	switch in.Status {
	case "", PackageStatusOpen, PackageStatusClosed, PackageStatusOngoing, PackageStatusCompleted:
	default:
		return &ErrValidation{Field: "status", Message: "unknown package status"}
	}
	return nil
}
