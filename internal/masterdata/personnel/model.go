package personnel

import (
	"strings"
	"time"
)

// Personnel is a member of an organisational unit. Users may be linked to one.
type Personnel struct {
	ID            int64     `json:"id"`
	AGM           string    `json:"agm"`
	AEM           string    `json:"aem"`
	Rank          string    `json:"rank"`
	Specialty     string    `json:"specialty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	IsActive      bool      `json:"is_active"`
	ServiceUnitID *int64    `json:"service_unit_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// DisplayName renders "rank last first" skipping empty parts.
func (p Personnel) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Rank, p.LastName, p.FirstName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Input is the writable part of a personnel record. A nil IsActive keeps the
// current flag on update and defaults to true on create.
type Input struct {
	AGM           string `json:"agm" validate:"required,max=50"`
	AEM           string `json:"aem" validate:"max=50"`
	Rank          string `json:"rank" validate:"max=100"`
	Specialty     string `json:"specialty" validate:"max=150"`
	FirstName     string `json:"first_name" validate:"required,max=120"`
	LastName      string `json:"last_name" validate:"required,max=120"`
	IsActive      *bool  `json:"is_active"`
	ServiceUnitID *int64 `json:"service_unit_id"`
}
