package service

import (
	"context"
	"sync"
	"testing"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

func newGroupFixture() (*GroupService, *fakeGroupRepo, *fakeApplicantRepo, *captureDispatcher) {
	applicants := newFakeApplicantRepo()
	groups := newFakeGroupRepo(applicants)
	dispatcher := &captureDispatcher{}
	svc := NewGroupService(GroupDependencies{
		GroupRepo:     groups,
		ApplicantRepo: applicants,
		Dispatcher:    dispatcher,
	})
	return svc, groups, applicants, dispatcher
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	return apperrors.ToDomainError(err).Code
}

func TestAssignFillsOldestGroupFirst(t *testing.T) {
	svc, groups, applicants, _ := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 2})
	_ = groups.Create(ctx, &domain.Group{Name: "Batch B", Capacity: 2})

	for i := 0; i < 3; i++ {
		applicants.add(&domain.Applicant{Name: "A", Email: "a@x"})
	}

	first, err := svc.Assign(ctx, "applicant-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	second, err := svc.Assign(ctx, "applicant-2")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	third, err := svc.Assign(ctx, "applicant-3")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if first.ID != "group-1" || second.ID != "group-1" {
		t.Fatalf("expected first two applicants in group-1, got %s and %s", first.ID, second.ID)
	}
	if third.ID != "group-2" {
		t.Fatalf("expected overflow into group-2, got %s", third.ID)
	}
}

func TestAssignCapacityExceededWhenAllFull(t *testing.T) {
	svc, groups, applicants, _ := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 1})
	applicants.add(&domain.Applicant{})
	applicants.add(&domain.Applicant{})

	if _, err := svc.Assign(ctx, "applicant-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := svc.Assign(ctx, "applicant-2")
	if code := errCode(t, err); code != "CAPACITY_EXCEEDED" {
		t.Fatalf("expected CAPACITY_EXCEEDED, got %s", code)
	}
}

func TestAssignTwiceIsConflict(t *testing.T) {
	svc, groups, applicants, _ := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 5})
	applicants.add(&domain.Applicant{})

	if _, err := svc.Assign(ctx, "applicant-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := svc.Assign(ctx, "applicant-1")
	if code := errCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", code)
	}
}

func TestAssignUnknownApplicantIsNotFound(t *testing.T) {
	svc, groups, _, _ := newGroupFixture()
	ctx := context.Background()

	// Spare capacity exists, so the error can only be about the applicant.
	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 3})

	_, err := svc.Assign(ctx, "missing")
	if code := errCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestAssignConcurrentNeverOverfills(t *testing.T) {
	svc, groups, applicants, _ := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 3})
	_ = groups.Create(ctx, &domain.Group{Name: "Batch B", Capacity: 2})

	const contenders = 12
	ids := make([]string, contenders)
	for i := range ids {
		ids[i] = applicants.add(&domain.Applicant{}).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, contenders)
	for _, id := range ids {
		wg.Add(1)
		go func(applicantID string) {
			defer wg.Done()
			_, err := svc.Assign(ctx, applicantID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	assigned, rejected := 0, 0
	for err := range errs {
		if err == nil {
			assigned++
			continue
		}
		if code := apperrors.ToDomainError(err).Code; code != "CAPACITY_EXCEEDED" {
			t.Fatalf("unexpected error code %s", code)
		}
		rejected++
	}
	if assigned != 5 {
		t.Fatalf("expected exactly 5 assignments (total capacity), got %d", assigned)
	}
	if rejected != contenders-5 {
		t.Fatalf("expected %d rejections, got %d", contenders-5, rejected)
	}

	listed, _ := groups.List(ctx)
	for _, group := range listed {
		if group.MemberCount > group.Capacity {
			t.Fatalf("group %s overfilled: %d/%d", group.ID, group.MemberCount, group.Capacity)
		}
	}
}

func TestConfirmJoinIsIdempotent(t *testing.T) {
	svc, groups, applicants, dispatcher := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 1})
	applicants.add(&domain.Applicant{})
	if _, err := svc.Assign(ctx, "applicant-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := svc.ConfirmJoin(ctx, "applicant-1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if err := svc.ConfirmJoin(ctx, "applicant-1"); err != nil {
		t.Fatalf("second confirm should be a no-op: %v", err)
	}

	applicant, _ := applicants.GetByID(ctx, "applicant-1")
	if !applicant.JoinConfirmed {
		t.Fatal("expected join confirmed")
	}
	if got := len(dispatcher.byType(events.EventJoinConfirmed)); got != 1 {
		t.Fatalf("expected exactly one join_confirmed event, got %d", got)
	}
}

func TestConfirmJoinRequiresAssignment(t *testing.T) {
	svc, _, applicants, _ := newGroupFixture()
	ctx := context.Background()

	applicants.add(&domain.Applicant{})
	err := svc.ConfirmJoin(ctx, "applicant-1")
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestUpdateGroupRejectsCapacityBelowMembers(t *testing.T) {
	svc, groups, applicants, _ := newGroupFixture()
	ctx := context.Background()

	_ = groups.Create(ctx, &domain.Group{Name: "Batch A", Capacity: 3})
	applicants.add(&domain.Applicant{})
	applicants.add(&domain.Applicant{})
	_, _ = svc.Assign(ctx, "applicant-1")
	_, _ = svc.Assign(ctx, "applicant-2")

	_, err := svc.UpdateGroup(ctx, "group-1", GroupInput{Name: "Batch A", Capacity: 1})
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}

	if _, err := svc.UpdateGroup(ctx, "group-1", GroupInput{Name: "Batch A", Capacity: 2}); err != nil {
		t.Fatalf("shrinking to member count should pass: %v", err)
	}
}
