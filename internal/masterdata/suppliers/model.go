package suppliers

import (
	"time"
)

// Supplier is a vendor that can bid on procurements, keyed by its tax number.
type Supplier struct {
	ID         int64     `json:"id"`
	AFM        string    `json:"afm"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	BankName   string    `json:"bank_name"`
	IBAN       string    `json:"iban"`
	CreatedAt  time.Time `json:"created_at"`
}

// Input is the writable part of a supplier.
type Input struct {
	AFM        string `json:"afm" validate:"required,len=9,numeric"`
	Name       string `json:"name" validate:"required,max=255"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	BankName   string `json:"bank_name" validate:"max=120"`
	IBAN       string `json:"iban" validate:"max=34"`
}

func (in Input) supplier() Supplier {
	return Supplier{
		AFM:        in.AFM,
		Name:       in.Name,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		BankName:   in.BankName,
		IBAN:       in.IBAN,
	}
}
