package auth

import "errors"

// ErrInactive is returned for a correct password on a disabled account.
var ErrInactive = errors.New("auth: account inactive")

// User holds what login needs to know about an account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
}
