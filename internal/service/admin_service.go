package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// AdminService covers staff account management and helpdesk
// configuration: counters, operator rosters and ticket categories.
type AdminService struct {
	staff      repository.StaffRepository
	counters   repository.CounterRepository
	operators  repository.OperatorRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
	bcryptCost int
}

// AdminDependencies bundles collaborators.
type AdminDependencies struct {
	StaffRepo    repository.StaffRepository
	CounterRepo  repository.CounterRepository
	OperatorRepo repository.OperatorRepository
	CategoryRepo repository.CategoryRepository
	Logger       *zap.Logger
	BcryptCost   int
}

// StaffInput is the admin payload for creating or updating staff.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
	Active   *bool
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		staff:      deps.StaffRepo,
		counters:   deps.CounterRepo,
		operators:  deps.OperatorRepo,
		categories: deps.CategoryRepo,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
	}
}

// CreateStaff provisions a staff account. Email is unique across staff.
func (s *AdminService) CreateStaff(ctx context.Context, input StaffInput) (*domain.StaffMember, error) {
	if err := validateStaffInput(input, true); err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)
	if _, err := s.staff.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	member := &domain.StaffMember{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if input.Active != nil {
		member.Active = *input.Active
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("staff account created",
			zap.String("staff_id", member.ID),
			zap.String("role", string(member.Role)),
		)
	}
	return member, nil
}

// UpdateStaff edits name, role and active flag. Password changes go
// through the auth service.
func (s *AdminService) UpdateStaff(ctx context.Context, id string, input StaffInput) (*domain.StaffMember, error) {
	member, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		member.Name = name
	}
	if input.Role != "" {
		if !validStaffRole(input.Role) {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
		}
		member.Role = input.Role
	}
	if input.Active != nil {
		member.Active = *input.Active
	}
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// GetStaff fetches a staff account.
func (s *AdminService) GetStaff(ctx context.Context, id string) (*domain.StaffMember, error) {
	return s.getStaff(ctx, id)
}

// ListStaff lists staff accounts with optional role/active filters.
func (s *AdminService) ListStaff(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	members, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// RegisterOperator enrolls a staff member as a helpdesk operator on
// either the online or the walk-in side. Upsert makes it idempotent.
func (s *AdminService) RegisterOperator(ctx context.Context, staffID string, isOffline, isActive bool) (*domain.HelpdeskOperator, error) {
	member, err := s.getStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	switch member.Role {
	case domain.StaffRoleHelpdesk, domain.StaffRoleHelpdeskOffline, domain.StaffRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("staff role cannot operate a helpdesk", map[string]any{"role": member.Role})
	}
	operator := &domain.HelpdeskOperator{
		StaffID:   staffID,
		IsOffline: isOffline,
		IsActive:  isActive,
	}
	if err := s.operators.Upsert(ctx, operator); err != nil {
		return nil, apperrors.MapError(err)
	}
	return operator, nil
}

// ListOperators returns active operators for one side of the desk.
func (s *AdminService) ListOperators(ctx context.Context, isOffline bool) ([]domain.HelpdeskOperator, error) {
	operators, err := s.operators.ListActive(ctx, isOffline)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return operators, nil
}

// CreateCounter adds a physical counter.
func (s *AdminService) CreateCounter(ctx context.Context, name string, isActive bool) (*domain.HelpdeskCounter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("counter name required", nil)
	}
	counter := &domain.HelpdeskCounter{Name: name, IsActive: isActive}
	if err := s.counters.Create(ctx, counter); err != nil {
		return nil, apperrors.MapError(err)
	}
	return counter, nil
}

// UpdateCounter edits name and active flag.
func (s *AdminService) UpdateCounter(ctx context.Context, id, name string, isActive *bool) (*domain.HelpdeskCounter, error) {
	counter, err := s.getCounter(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		counter.Name = name
	}
	if isActive != nil {
		counter.IsActive = *isActive
	}
	if err := s.counters.Update(ctx, counter); err != nil {
		return nil, apperrors.MapError(err)
	}
	return counter, nil
}

// ListCounters returns all counters.
func (s *AdminService) ListCounters(ctx context.Context) ([]domain.HelpdeskCounter, error) {
	counters, err := s.counters.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counters, nil
}

// ClaimCounter seats an operator at a counter. An operator holds at
// most one counter and a counter seats at most one operator; the claim
// is rejected when either side is already taken.
func (s *AdminService) ClaimCounter(ctx context.Context, counterID, staffID string) (*domain.HelpdeskCounter, error) {
	operator, err := s.operators.GetByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	if !operator.IsActive {
		return nil, apperrors.NewValidationError("operator is not active", map[string]any{"operator_id": staffID})
	}
	if err := s.counters.ClaimOperator(ctx, counterID, staffID); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("counter", map[string]any{"counter_id": counterID})
		case errors.Is(err, repository.ErrCounterTaken):
			return nil, apperrors.NewConflict("counter or operator already taken", map[string]any{
				"counter_id":  counterID,
				"operator_id": staffID,
			})
		default:
			return nil, apperrors.MapError(err)
		}
	}
	return s.getCounter(ctx, counterID)
}

// ReleaseCounter frees the counter's seat.
func (s *AdminService) ReleaseCounter(ctx context.Context, counterID string) (*domain.HelpdeskCounter, error) {
	if err := s.counters.ReleaseOperator(ctx, counterID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("counter", map[string]any{"counter_id": counterID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.getCounter(ctx, counterID)
}

// CreateCategory adds a ticket category for one side of the desk.
func (s *AdminService) CreateCategory(ctx context.Context, name string, isOffline bool) (*domain.TicketCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category := &domain.TicketCategory{Name: name, IsOffline: isOffline}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns all ticket categories.
func (s *AdminService) ListCategories(ctx context.Context) ([]domain.TicketCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// DeleteCategory removes a category.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AdminService) getStaff(ctx context.Context, id string) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

func (s *AdminService) getCounter(ctx context.Context, id string) (*domain.HelpdeskCounter, error) {
	counter, err := s.counters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("counter", map[string]any{"counter_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return counter, nil
}

func validateStaffInput(input StaffInput, creating bool) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if creating {
		if strings.TrimSpace(input.Email) == "" {
			details["email"] = "required"
		}
		if len(input.Password) < 8 {
			details["password"] = "must be at least 8 characters"
		}
	}
	if !validStaffRole(input.Role) {
		details["role"] = "unknown"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid staff payload", details)
	}
	return nil
}

func validStaffRole(role domain.StaffRole) bool {
	switch role {
	case domain.StaffRoleAdmin, domain.StaffRoleHelpdesk, domain.StaffRoleHelpdeskOffline, domain.StaffRoleContent:
		return true
	}
	return false
}
