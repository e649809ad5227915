package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

func newAdminFixture() (*AdminService, *fakeStaffRepo, *fakeCounterRepo, *fakeOperatorRepo) {
	staff := newFakeStaffRepo()
	counters := &fakeCounterRepo{}
	operators := &fakeOperatorRepo{}
	svc := NewAdminService(AdminDependencies{
		StaffRepo:    staff,
		CounterRepo:  counters,
		OperatorRepo: operators,
		CategoryRepo: &fakeCategoryRepo{},
		Logger:       zap.NewNop(),
		BcryptCost:   4,
	})
	return svc, staff, counters, operators
}

func seedOperator(t *testing.T, svc *AdminService, staff *fakeStaffRepo, email string) *domain.HelpdeskOperator {
	t.Helper()
	member := &domain.StaffMember{
		Name:         "Operator",
		Email:        email,
		PasswordHash: "x",
		Role:         domain.StaffRoleHelpdeskOffline,
		Active:       true,
	}
	if err := staff.Create(context.Background(), member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	operator, err := svc.RegisterOperator(context.Background(), member.ID, true, true)
	if err != nil {
		t.Fatalf("register operator: %v", err)
	}
	return operator
}

func TestRegisterOperatorRejectsContentRole(t *testing.T) {
	svc, staff, _, _ := newAdminFixture()
	ctx := context.Background()

	member := &domain.StaffMember{
		Name:         "Editor",
		Email:        "editor@example.com",
		PasswordHash: "x",
		Role:         domain.StaffRoleContent,
		Active:       true,
	}
	if err := staff.Create(ctx, member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	_, err := svc.RegisterOperator(ctx, member.ID, false, true)
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestClaimCounterExclusive(t *testing.T) {
	svc, staff, _, _ := newAdminFixture()
	ctx := context.Background()

	first := seedOperator(t, svc, staff, "op1@example.com")
	second := seedOperator(t, svc, staff, "op2@example.com")
	counterA, _ := svc.CreateCounter(ctx, "Counter A", true)
	counterB, _ := svc.CreateCounter(ctx, "Counter B", true)

	claimed, err := svc.ClaimCounter(ctx, counterA.ID, first.StaffID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.OperatorID == nil || *claimed.OperatorID != first.StaffID {
		t.Fatalf("expected operator seated, got %v", claimed.OperatorID)
	}

	// A taken counter rejects another operator.
	if _, err := svc.ClaimCounter(ctx, counterA.ID, second.StaffID); errCode(t, err) != "CONFLICT" {
		t.Fatal("expected CONFLICT for taken counter")
	}
	// A seated operator cannot claim a second counter.
	if _, err := svc.ClaimCounter(ctx, counterB.ID, first.StaffID); errCode(t, err) != "CONFLICT" {
		t.Fatal("expected CONFLICT for double seat")
	}

	released, err := svc.ReleaseCounter(ctx, counterA.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.OperatorID != nil {
		t.Fatal("expected counter freed")
	}
	if _, err := svc.ClaimCounter(ctx, counterA.ID, second.StaffID); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestClaimCounterUnknownOperator(t *testing.T) {
	svc, _, _, _ := newAdminFixture()
	ctx := context.Background()

	counter, _ := svc.CreateCounter(ctx, "Counter A", true)
	_, err := svc.ClaimCounter(ctx, counter.ID, "missing")
	if code := errCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestUpdateStaffRejectsUnknownRole(t *testing.T) {
	svc, staff, _, _ := newAdminFixture()
	ctx := context.Background()

	member := &domain.StaffMember{
		Name:         "Rani",
		Email:        "rani@example.com",
		PasswordHash: "x",
		Role:         domain.StaffRoleHelpdesk,
		Active:       true,
	}
	if err := staff.Create(ctx, member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	_, err := svc.UpdateStaff(ctx, member.ID, StaffInput{Role: domain.StaffRole("SUPERVISOR")})
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}
