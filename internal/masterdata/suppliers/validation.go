package suppliers

import (
	"strings"
	"unicode"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

func normalize(sup Supplier) Supplier {
	sup.AFM = strings.TrimSpace(sup.AFM)
	sup.Name = strings.TrimSpace(sup.Name)
	sup.Address = strings.TrimSpace(sup.Address)
	sup.City = strings.TrimSpace(sup.City)
	sup.PostalCode = strings.TrimSpace(sup.PostalCode)
	sup.Country = strings.TrimSpace(sup.Country)
	sup.BankName = strings.TrimSpace(sup.BankName)
	sup.IBAN = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(sup.IBAN), " ", ""))
	return sup
}

func (s *Service) validate(sup Supplier) error {
	errs := httpx.ValidationErrors{}
	if len(sup.AFM) != 9 || strings.IndexFunc(sup.AFM, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		errs["afm"] = "must be 9 digits"
	}
	if sup.Name == "" {
		errs["name"] = "is required"
	}
	if len(sup.IBAN) > 34 {
		errs["iban"] = "must be at most 34"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
