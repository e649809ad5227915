package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/config"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// AuthService handles registration, login and credential recovery for
// both applicant and staff accounts.
type AuthService struct {
	applicants repository.ApplicantRepository
	staff      repository.StaffRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies bundles collaborators for AuthService.
type AuthDependencies struct {
	ApplicantRepo repository.ApplicantRepository
	StaffRepo     repository.StaffRepository
	ResetRepo     repository.PasswordResetRepository
	TokenManager  *auth.TokenManager
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Config        config.AuthConfig
}

// RegisterInput is the applicant self-registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LoginResult carries a signed token and its subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Subject   domain.SubjectType
	SubjectID string
	Role      *domain.StaffRole
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	resetTTL := time.Duration(deps.Config.PasswordResetTTLMinutes) * time.Minute
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &AuthService{
		applicants: deps.ApplicantRepo,
		staff:      deps.StaffRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.TokenManager,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: deps.Config.BcryptCost,
		resetTTL:   resetTTL,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterApplicant creates an applicant account. Email is the unique
// login identity; a duplicate registration is a conflict.
func (s *AuthService) RegisterApplicant(ctx context.Context, input RegisterInput) (*domain.Applicant, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)

	if _, err := s.applicants.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	applicant := &domain.Applicant{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Status:       domain.ApplicantStatusActive,
	}
	if err := s.applicants.Create(ctx, applicant); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventApplicantRegistered,
		Table:    "applicants",
		EntityID: applicant.ID,
		Actor:    applicantActor(applicant.ID),
		Payload:  map[string]any{"email": applicant.Email, "name": applicant.Name},
	})
	return applicant, nil
}

// LoginApplicant verifies credentials and issues a token.
func (s *AuthService) LoginApplicant(ctx context.Context, email, password string) (*LoginResult, error) {
	applicant, err := s.applicants.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if applicant.Status != domain.ApplicantStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(applicant.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(applicant.ID, domain.SubjectTypeApplicant, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Subject:   domain.SubjectTypeApplicant,
		SubjectID: applicant.ID,
	}, nil
}

// LoginStaff verifies staff credentials and issues a role-bearing token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*LoginResult, error) {
	member, err := s.staff.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !member.Active {
		return nil, apperrors.NewForbidden("account deactivated")
	}
	if err := auth.ComparePassword(member.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	role := member.Role
	token, expiresAt, err := s.tokens.GenerateToken(member.ID, domain.SubjectTypeStaff, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Subject:   domain.SubjectTypeStaff,
		SubjectID: member.ID,
		Role:      &role,
	}, nil
}

// RequestPasswordReset issues a single-use token for the account that
// owns the email. To avoid leaking which emails exist, an unknown email
// succeeds silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, subject domain.SubjectType, email string) (*repository.PasswordResetToken, error) {
	email = normalizeEmail(email)
	var subjectID string
	switch subject {
	case domain.SubjectTypeApplicant:
		applicant, err := s.applicants.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, apperrors.MapError(err)
		}
		subjectID = applicant.ID
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, apperrors.MapError(err)
		}
		subjectID = member.ID
	default:
		return nil, apperrors.NewValidationError("unknown subject type", nil)
	}

	raw, err := randomToken()
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	reset := &repository.PasswordResetToken{
		SubjectType: string(subject),
		SubjectID:   subjectID,
		Token:       raw,
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("password reset requested",
			zap.String("subject", string(subject)),
			zap.String("subject_id", subjectID),
		)
	}
	return reset, nil
}

// ConfirmPasswordReset consumes a reset token and sets a new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	reset, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("reset token", nil)
		}
		return apperrors.MapError(err)
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return apperrors.NewValidationError("reset token expired", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	switch domain.SubjectType(reset.SubjectType) {
	case domain.SubjectTypeApplicant:
		applicant, err := s.applicants.GetByID(ctx, reset.SubjectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		applicant.PasswordHash = hash
		if err := s.applicants.Update(ctx, applicant); err != nil {
			return apperrors.MapError(err)
		}
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByID(ctx, reset.SubjectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		member.PasswordHash = hash
		if err := s.staff.Update(ctx, member); err != nil {
			return apperrors.MapError(err)
		}
	default:
		return apperrors.NewValidationError("unknown subject type", nil)
	}

	if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ChangePassword updates the password for an authenticated subject.
func (s *AuthService) ChangePassword(ctx context.Context, subject domain.SubjectType, subjectID, current, next string) error {
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	switch subject {
	case domain.SubjectTypeApplicant:
		applicant, err := s.applicants.GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("applicant", nil)
			}
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(applicant.PasswordHash, current); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		applicant.PasswordHash = hash
		if err := s.applicants.Update(ctx, applicant); err != nil {
			return apperrors.MapError(err)
		}
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("staff member", nil)
			}
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(member.PasswordHash, current); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		member.PasswordHash = hash
		if err := s.staff.Update(ctx, member); err != nil {
			return apperrors.MapError(err)
		}
	default:
		return apperrors.NewValidationError("unknown subject type", nil)
	}
	return nil
}

// GetApplicant returns the profile for an authenticated applicant.
func (s *AuthService) GetApplicant(ctx context.Context, id string) (*domain.Applicant, error) {
	applicant, err := s.applicants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("applicant", map[string]any{"applicant_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return applicant, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateRegisterInput(input RegisterInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		details["email"] = "invalid"
	}
	if strings.TrimSpace(input.Phone) == "" {
		details["phone"] = "required"
	}
	if len(input.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration payload", details)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
