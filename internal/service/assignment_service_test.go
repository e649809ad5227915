package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

func newAssignmentFixture() (*AssignmentService, *fakeTicketRepo, *fakeOperatorRepo, *fakeHistoryRepo) {
	tickets := &fakeTicketRepo{}
	operators := &fakeOperatorRepo{}
	history := &fakeHistoryRepo{}
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:   tickets,
		OperatorRepo: operators,
		HistoryRepo:  history,
		Dispatcher:   &captureDispatcher{},
		Logger:       zap.NewNop(),
	})
	return svc, tickets, operators, history
}

func addOperator(operators *fakeOperatorRepo, staffID string) {
	_ = operators.Upsert(context.Background(), &domain.HelpdeskOperator{
		StaffID:  staffID,
		IsActive: true,
	})
}

func addOpenTicket(tickets *fakeTicketRepo, offline bool) *domain.Ticket {
	ticket := &domain.Ticket{
		ApplicantID: "applicant-1",
		Subject:     "help",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
		IsOffline:   offline,
	}
	_ = tickets.Create(context.Background(), ticket)
	return ticket
}

func TestAssignTicketMovesOpenToInProgress(t *testing.T) {
	svc, tickets, operators, history := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	addOperator(operators, "op-1")
	ticket := addOpenTicket(tickets, false)

	operatorID := "op-1"
	updated, err := svc.AssignTicket(ctx, admin, ticket.ID, &operatorID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != "op-1" {
		t.Fatalf("expected op-1 assigned, got %v", updated.AssignedTo)
	}

	entries, _ := history.ListByTicket(ctx, ticket.ID, 50, 0)
	if len(entries) != 1 || entries[0].ChangeType != domain.ChangeTypeAssignee {
		t.Fatalf("expected one assignee history entry, got %+v", entries)
	}
}

func TestClearAssignmentKeepsStatus(t *testing.T) {
	svc, tickets, operators, _ := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	addOperator(operators, "op-1")
	ticket := addOpenTicket(tickets, false)

	operatorID := "op-1"
	if _, err := svc.AssignTicket(ctx, admin, ticket.ID, &operatorID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cleared, err := svc.AssignTicket(ctx, admin, ticket.ID, nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.AssignedTo != nil {
		t.Fatalf("expected cleared assignment, got %v", cleared.AssignedTo)
	}
	if cleared.Status != domain.TicketStatusInProgress {
		t.Fatalf("clearing must not change status, got %s", cleared.Status)
	}
}

func TestAssignUnknownOperatorIsNotFound(t *testing.T) {
	svc, tickets, _, _ := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	ticket := addOpenTicket(tickets, false)
	operatorID := "ghost"
	_, err := svc.AssignTicket(ctx, admin, ticket.ID, &operatorID)
	if code := errCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestBalanceDistributesEvenly(t *testing.T) {
	svc, tickets, operators, _ := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	addOperator(operators, "op-1")
	addOperator(operators, "op-2")
	for i := 0; i < 5; i++ {
		addOpenTicket(tickets, false)
	}
	addOpenTicket(tickets, true) // walk-in side, stays out of the pool

	result, err := svc.BalanceTickets(ctx, admin)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if result.Operators != 2 || result.Tickets != 5 {
		t.Fatalf("unexpected pass summary: %+v", result)
	}

	counts := map[string]int{}
	listed, _ := tickets.ListForBalancing(ctx)
	for _, ticket := range listed {
		if ticket.AssignedTo == nil {
			t.Fatalf("ticket %s left unassigned", ticket.ID)
		}
		counts[*ticket.AssignedTo]++
		if ticket.Status != domain.TicketStatusInProgress {
			t.Fatalf("balanced ticket %s not IN_PROGRESS", ticket.ID)
		}
	}
	if diff := counts["op-1"] - counts["op-2"]; diff < -1 || diff > 1 {
		t.Fatalf("load difference exceeds one: %+v", counts)
	}
}

func TestBalanceWithoutOperators(t *testing.T) {
	svc, tickets, _, _ := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	addOpenTicket(tickets, false)
	_, err := svc.BalanceTickets(ctx, admin)
	if code := errCode(t, err); code != "CAPACITY_EXCEEDED" {
		t.Fatalf("expected CAPACITY_EXCEEDED, got %s", code)
	}
}

func TestBalanceIsStableWhenAlreadyEven(t *testing.T) {
	svc, tickets, operators, _ := newAssignmentFixture()
	ctx := context.Background()
	admin := &domain.StaffMember{ID: "admin-1", Role: domain.StaffRoleAdmin}

	addOperator(operators, "op-1")
	addOperator(operators, "op-2")
	for i := 0; i < 4; i++ {
		addOpenTicket(tickets, false)
	}

	first, err := svc.BalanceTickets(ctx, admin)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.Moved != 4 {
		t.Fatalf("expected 4 moves on first pass, got %d", first.Moved)
	}

	second, err := svc.BalanceTickets(ctx, admin)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Moved != 0 {
		t.Fatalf("second pass should move nothing, got %d", second.Moved)
	}
}
