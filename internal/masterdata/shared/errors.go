package shared

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

var (
	ErrNotFound      = fmt.Errorf("masterdata: %w", httpx.ErrNotFound)
	ErrDuplicate     = fmt.Errorf("masterdata: %w", httpx.ErrDuplicate)
	ErrValidation    = fmt.Errorf("masterdata: %w", httpx.ErrValidation)
	ErrInvalidID     = fmt.Errorf("masterdata: invalid ID: %w", httpx.ErrValidation)
	ErrInUse         = fmt.Errorf("masterdata: record in use: %w", httpx.ErrConflict)
	ErrRequiredField = errors.New("field is required")
)

const foreignKeyViolation = "23503"

// MapError translates driver errors into the masterdata sentinels.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case internalShared.IsUniqueViolation(err):
		return ErrDuplicate
	case internalShared.PgCode(err) == foreignKeyViolation:
		return ErrInUse
	default:
		return err
	}
}
