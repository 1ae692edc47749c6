package users

import (
	"fmt"
	"time"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

// Themes a user may pick for the UI.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeOcean   = "ocean"
)

// MinPasswordLength is enforced on create and reset.
const MinPasswordLength = 8

// ErrNotFound indicates the user does not exist.
var ErrNotFound = fmt.Errorf("users: %w", httpx.ErrNotFound)

// User represents a user account for management.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	IsAdmin       bool      `json:"is_admin"`
	IsActive      bool      `json:"is_active"`
	Theme         string    `json:"theme"`
	PersonnelID   *int64    `json:"personnel_id,omitempty"`
	ServiceUnitID *int64    `json:"service_unit_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput is the admin form for a new account.
type CreateInput struct {
	Username      string `json:"username" validate:"required,max=80"`
	Password      string `json:"password" validate:"required,min=8"`
	IsAdmin       bool   `json:"is_admin"`
	PersonnelID   *int64 `json:"personnel_id" validate:"required"`
	ServiceUnitID *int64 `json:"service_unit_id"`
}

// UpdateInput is the admin edit form. A blank password keeps the current one.
type UpdateInput struct {
	IsAdmin       bool   `json:"is_admin"`
	IsActive      bool   `json:"is_active"`
	PersonnelID   *int64 `json:"personnel_id" validate:"required"`
	ServiceUnitID *int64 `json:"service_unit_id"`
	Password      string `json:"password" validate:"omitempty,min=8"`
}

// PasswordInput resets a password.
type PasswordInput struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ThemeInput changes the caller's theme.
type ThemeInput struct {
	Theme string `json:"theme" validate:"required,oneof=default dark ocean"`
}
