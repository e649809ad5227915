package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// GroupService assigns applicants to capacity-bounded WhatsApp groups and
// manages the groups themselves.
type GroupService struct {
	groups     repository.GroupRepository
	applicants repository.ApplicantRepository
	dispatcher events.Dispatcher
}

// GroupDependencies bundles repositories for the group service.
type GroupDependencies struct {
	GroupRepo     repository.GroupRepository
	ApplicantRepo repository.ApplicantRepository
	Dispatcher    events.Dispatcher
}

// GroupInput describes admin create/update payload.
type GroupInput struct {
	Name       string
	Capacity   int
	InviteLink string
}

// NewGroupService constructs the service.
func NewGroupService(deps GroupDependencies) *GroupService {
	return &GroupService{
		groups:     deps.GroupRepo,
		applicants: deps.ApplicantRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign places the applicant in the first group with spare capacity.
// The claim is a single atomic store operation; when every group is full
// the applicant stays unassigned and CAPACITY_EXCEEDED is returned. No
// retry happens here, the caller surfaces the error.
func (s *GroupService) Assign(ctx context.Context, applicantID string) (*domain.Group, error) {
	group, err := s.groups.AssignFirstAvailable(ctx, applicantID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewCapacityExceeded("no group has spare capacity", nil)
		case errors.Is(err, repository.ErrAlreadyAssigned):
			return nil, apperrors.NewConflict("applicant already assigned", map[string]any{"applicant_id": applicantID})
		case errors.Is(err, repository.ErrApplicantMissing):
			return nil, apperrors.NewNotFound("applicant", map[string]any{"applicant_id": applicantID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventGroupAssigned,
		Table:    "applicants",
		EntityID: applicantID,
		Actor:    applicantActor(applicantID),
		Payload: events.GroupAssignedPayload{
			GroupID:     group.ID,
			GroupName:   group.Name,
			MemberCount: group.MemberCount,
			Capacity:    group.Capacity,
		},
	})
	return group, nil
}

// ConfirmJoin marks the applicant as having joined their group. Calling
// it again succeeds without changing anything.
func (s *GroupService) ConfirmJoin(ctx context.Context, applicantID string) error {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("applicant", map[string]any{"applicant_id": applicantID})
		}
		return apperrors.MapError(err)
	}
	if applicant.AssignedGroupID == nil {
		return apperrors.NewValidationError("applicant has no assigned group", nil)
	}
	if applicant.JoinConfirmed {
		return nil
	}
	if err := s.applicants.SetJoinConfirmed(ctx, applicantID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventJoinConfirmed,
		Table:    "applicants",
		EntityID: applicantID,
		Actor:    applicantActor(applicantID),
	})
	return nil
}

// GroupForApplicant resolves the applicant's assigned group, if any.
func (s *GroupService) GroupForApplicant(ctx context.Context, applicantID string) (*domain.Group, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("applicant", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if applicant.AssignedGroupID == nil {
		return nil, apperrors.NewNotFound("group assignment", nil)
	}
	group, err := s.groups.GetByID(ctx, *applicant.AssignedGroupID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// ListGroups returns all groups in assignment order.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return groups, nil
}

// CreateGroup creates a group (admin only, enforced at the route).
func (s *GroupService) CreateGroup(ctx context.Context, input GroupInput) (*domain.Group, error) {
	if err := validateGroupInput(input); err != nil {
		return nil, err
	}
	group := &domain.Group{
		Name:       strings.TrimSpace(input.Name),
		Capacity:   input.Capacity,
		InviteLink: strings.TrimSpace(input.InviteLink),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// UpdateGroup edits a group. Capacity may not drop below the current
// member count.
func (s *GroupService) UpdateGroup(ctx context.Context, id string, input GroupInput) (*domain.Group, error) {
	if err := validateGroupInput(input); err != nil {
		return nil, err
	}
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if input.Capacity < group.MemberCount {
		return nil, apperrors.NewValidationError("capacity below current member count", map[string]any{
			"member_count": group.MemberCount,
		})
	}
	group.Name = strings.TrimSpace(input.Name)
	group.Capacity = input.Capacity
	group.InviteLink = strings.TrimSpace(input.InviteLink)
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// DeleteGroup removes an empty group.
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("group", map[string]any{"group_id": id})
		case errors.Is(err, repository.ErrGroupNotEmpty):
			return apperrors.NewConflict("group has members", map[string]any{"group_id": id})
		default:
			return apperrors.MapError(err)
		}
	}
	return nil
}

func validateGroupInput(input GroupInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if input.Capacity <= 0 {
		return apperrors.NewValidationError("capacity must be positive", nil)
	}
	return nil
}

func (s *GroupService) publish(ctx context.Context, event events.Event) {
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

func applicantActor(applicantID string) events.Actor {
	return events.Actor{
		Type:        domain.SubjectTypeApplicant,
		ApplicantID: &applicantID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}
