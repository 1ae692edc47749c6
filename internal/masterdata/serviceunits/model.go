package serviceunits

import "time"

// ServiceUnit is an organisational unit. Its manager and deputy drive the
// access policy for procurements owned by the unit.
type ServiceUnit struct {
	ID                 int64     `json:"id"`
	Code               string    `json:"code"`
	Description        string    `json:"description"`
	ShortName          string    `json:"short_name"`
	AAHIT              string    `json:"aahit"`
	Commander          string    `json:"commander"`
	Curator            string    `json:"curator"`
	SupplyOfficer      string    `json:"supply_officer"`
	ManagerPersonnelID *int64    `json:"manager_personnel_id"`
	DeputyPersonnelID  *int64    `json:"deputy_personnel_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Input is the writable part of a service unit.
type Input struct {
	Code               string `json:"code" validate:"max=50"`
	Description        string `json:"description" validate:"required,max=255"`
	ShortName          string `json:"short_name" validate:"max=100"`
	AAHIT              string `json:"aahit" validate:"max=100"`
	Commander          string `json:"commander" validate:"max=255"`
	Curator            string `json:"curator" validate:"max=255"`
	SupplyOfficer      string `json:"supply_officer" validate:"max=255"`
	ManagerPersonnelID *int64 `json:"manager_personnel_id"`
	DeputyPersonnelID  *int64 `json:"deputy_personnel_id"`
}

// Roles names the manager and deputy of a unit.
type Roles struct {
	ManagerPersonnelID *int64 `json:"manager_personnel_id"`
	DeputyPersonnelID  *int64 `json:"deputy_personnel_id"`
}
