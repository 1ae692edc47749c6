package users

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Update(ctx context.Context, u User) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetTheme(ctx context.Context, id int64, theme string) error
	PersonnelTaken(ctx context.Context, personnelID, exceptUserID int64) (bool, error)
}

// PersonnelPort reports whether a personnel member is active.
type PersonnelPort interface {
	IsActive(ctx context.Context, id int64) (bool, error)
}

// AuditPort records account changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	personnel PersonnelPort
	audit     AuditPort
	cost      int
}

// NewService builds Service instance. A zero cost uses bcrypt.DefaultCost.
func NewService(repo RepositoryPort, personnel PersonnelPort, audit AuditPort, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, personnel: personnel, audit: audit, cost: cost}
}

// List returns all users ordered by username.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers an account linked to an active, unlinked personnel member.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	u := User{
		Username:      strings.TrimSpace(in.Username),
		IsAdmin:       in.IsAdmin,
		IsActive:      true,
		Theme:         ThemeDefault,
		PersonnelID:   in.PersonnelID,
		ServiceUnitID: in.ServiceUnitID,
	}
	errs := httpx.ValidationErrors{}
	if u.Username == "" {
		errs["username"] = "is required"
	}
	checkPassword(errs, in.Password)
	if err := s.checkPersonnel(ctx, errs, u.PersonnelID, 0); err != nil {
		return User{}, err
	}
	if len(errs) > 0 {
		return User{}, errs
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.Create(ctx, u, hash)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, shared.AuditCreate, created.ID, nil, created)
	return created, nil
}

// Update changes flags, unit and personnel link; a non-empty password is reset.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u := before
	u.IsAdmin = in.IsAdmin
	u.IsActive = in.IsActive
	u.PersonnelID = in.PersonnelID
	u.ServiceUnitID = in.ServiceUnitID

	errs := httpx.ValidationErrors{}
	if in.Password != "" {
		checkPassword(errs, in.Password)
	}
	if err := s.checkPersonnel(ctx, errs, u.PersonnelID, id); err != nil {
		return User{}, err
	}
	if len(errs) > 0 {
		return User{}, errs
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	if in.Password != "" {
		if err := s.setPassword(ctx, id, in.Password); err != nil {
			return User{}, err
		}
	}
	s.recordAudit(ctx, shared.AuditUpdate, id, before, u)
	return u, nil
}

// ResetPassword replaces the password of id.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	errs := httpx.ValidationErrors{}
	checkPassword(errs, password)
	if len(errs) > 0 {
		return errs
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.setPassword(ctx, id, password)
}

// SetTheme stores the caller's own theme.
func (s *Service) SetTheme(ctx context.Context, actor rbac.Actor, theme string) error {
	switch theme {
	case ThemeDefault, ThemeDark, ThemeOcean:
	default:
		return httpx.ValidationErrors{"theme": "is not a known theme"}
	}
	return s.repo.SetTheme(ctx, actor.UserID, theme)
}

// EnsureAdmin creates the first administrator when no account exists yet and
// reports whether it did.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	errs := httpx.ValidationErrors{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "is required"
	}
	checkPassword(errs, password)
	if len(errs) > 0 {
		return false, errs
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	created, err := s.repo.Create(ctx, User{Username: strings.TrimSpace(username), IsAdmin: true, IsActive: true, Theme: ThemeDefault}, hash)
	if err != nil {
		return false, err
	}
	s.recordAudit(ctx, shared.AuditCreate, created.ID, nil, created)
	return true, nil
}

func (s *Service) setPassword(ctx context.Context, id int64, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, hash)
}

func (s *Service) hash(password string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// checkPersonnel requires an active personnel member not linked to another user.
func (s *Service) checkPersonnel(ctx context.Context, errs httpx.ValidationErrors, personnelID *int64, userID int64) error {
	if personnelID == nil {
		errs["personnel_id"] = "is required"
		return nil
	}
	active, err := s.personnel.IsActive(ctx, *personnelID)
	if err != nil {
		return err
	}
	if !active {
		errs["personnel_id"] = "must be active personnel"
		return nil
	}
	taken, err := s.repo.PersonnelTaken(ctx, *personnelID, userID)
	if err != nil {
		return err
	}
	if taken {
		errs["personnel_id"] = "already linked to another user"
	}
	return nil
}

func checkPassword(errs httpx.ValidationErrors, password string) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs["password"] = "must be at least 8 characters"
	}
}

func (s *Service) recordAudit(ctx context.Context, action shared.AuditAction, id int64, before, after any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{EntityType: "User", EntityID: id, Action: action}
	if before != nil {
		log.Before = shared.Snapshot(before)
	}
	if after != nil {
		log.After = shared.Snapshot(after)
	}
	_ = s.audit.Record(ctx, log)
}
