package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
)

func TestStringPreviewTruncatesOnRuneBoundary(t *testing.T) {
	cases := []struct {
		name string
		body string
		max  int
	}{
		{name: "ascii", body: strings.Repeat("a", 200), max: 120},
		{name: "two byte runes", body: strings.Repeat("é", 100), max: 120},
		{name: "three byte runes", body: strings.Repeat("想", 80), max: 120},
		{name: "short limit", body: "日本語", max: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			preview := stringPreview(tc.body, tc.max)
			if len(preview) > tc.max {
				t.Fatalf("expected at most %d bytes, got %d", tc.max, len(preview))
			}
			if !utf8.ValidString(preview) {
				t.Fatalf("preview is not valid UTF-8: %q", preview)
			}
		})
	}
}

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeMessageRepo, *fakeHistoryRepo, *captureDispatcher) {
	tickets := &fakeTicketRepo{}
	messages := &fakeMessageRepo{}
	history := &fakeHistoryRepo{}
	categories := &fakeCategoryRepo{}
	dispatcher := &captureDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		MessageRepo:  messages,
		CategoryRepo: categories,
		HistoryRepo:  history,
		Dispatcher:   dispatcher,
	})
	return svc, tickets, messages, history, dispatcher
}

func helpdeskStaff(id string) *domain.StaffMember {
	return &domain.StaffMember{ID: id, Role: domain.StaffRoleHelpdesk, Active: true}
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _, messages, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{
		Subject: "cannot log in",
		Message: "the portal rejects my password",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected OPEN, got %s", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityLow {
		t.Fatalf("expected LOW priority, got %s", ticket.Priority)
	}

	thread, _ := messages.ListByTicket(ctx, ticket.ID)
	if len(thread) != 1 || thread[0].AuthorType != domain.AuthorTypeApplicant {
		t.Fatalf("expected one applicant message, got %+v", thread)
	}
}

func TestCreateTicketRequiresSubjectAndMessage(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "   ", Message: "x"})
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
	_, err = svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "x", Message: ""})
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestStaffReplyReopensClosedTicket(t *testing.T) {
	svc, tickets, _, _, dispatcher := newTicketFixture()
	ctx := context.Background()
	staff := helpdeskStaff("staff-1")

	ticket, err := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "question", Message: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusClosed, "resolved"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.AddMessage(ctx, domain.SubjectTypeStaff, staff.ID, staff, ticket.ID, "one more thing"); err != nil {
		t.Fatalf("staff reply: %v", err)
	}

	reloaded, _ := tickets.GetByID(ctx, ticket.ID)
	if reloaded.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected reopen to IN_PROGRESS, got %s", reloaded.Status)
	}
	if reloaded.ClosedAt != nil {
		t.Fatal("expected closed_at cleared on reopen")
	}

	added := dispatcher.byType(events.EventTicketMessageAdded)
	last := added[len(added)-1].Payload.(events.TicketMessageAddedPayload)
	if !last.Reopened {
		t.Fatal("expected message event flagged as reopening")
	}
}

func TestApplicantReplyNeverReopens(t *testing.T) {
	svc, tickets, _, _, _ := newTicketFixture()
	ctx := context.Background()
	staff := helpdeskStaff("staff-1")

	ticket, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "question", Message: "hello"})
	if _, err := svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusClosed, ""); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.AddMessage(ctx, domain.SubjectTypeApplicant, "applicant-1", nil, ticket.ID, "thanks anyway"); err != nil {
		t.Fatalf("applicant reply: %v", err)
	}

	reloaded, _ := tickets.GetByID(ctx, ticket.ID)
	if reloaded.Status != domain.TicketStatusClosed {
		t.Fatalf("expected ticket to stay CLOSED, got %s", reloaded.Status)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture()
	ctx := context.Background()
	staff := helpdeskStaff("staff-1")

	ticket, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "q", Message: "m"})
	if _, err := svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusClosed, ""); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusOpen, "")
	if code := errCode(t, err); code != "INVALID_TRANSITION" {
		t.Fatalf("expected INVALID_TRANSITION, got %s", code)
	}
}

func TestUpdatePriorityKeepsStatus(t *testing.T) {
	svc, tickets, _, history, _ := newTicketFixture()
	ctx := context.Background()
	staff := helpdeskStaff("staff-1")

	ticket, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "q", Message: "m"})
	if _, err := svc.UpdatePriority(ctx, staff, ticket.ID, domain.TicketPriorityHigh); err != nil {
		t.Fatalf("priority: %v", err)
	}

	reloaded, _ := tickets.GetByID(ctx, ticket.ID)
	if reloaded.Status != domain.TicketStatusOpen {
		t.Fatalf("priority change must not move status, got %s", reloaded.Status)
	}
	if reloaded.Priority != domain.TicketPriorityHigh {
		t.Fatalf("expected HIGH, got %s", reloaded.Priority)
	}

	entries, _ := history.ListByTicket(ctx, ticket.ID, 50, 0)
	if len(entries) != 1 || entries[0].ChangeType != domain.ChangeTypePriority {
		t.Fatalf("expected one priority history entry, got %+v", entries)
	}
}

func TestStaffScopeSplitsOnlineAndOffline(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture()
	ctx := context.Background()

	online, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "online", Message: "m"})
	offline, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "offline", Message: "m", IsOffline: true})

	helpdesk := helpdeskStaff("staff-1")
	offlineDesk := &domain.StaffMember{ID: "staff-2", Role: domain.StaffRoleHelpdeskOffline, Active: true}
	admin := &domain.StaffMember{ID: "staff-3", Role: domain.StaffRoleAdmin, Active: true}

	if _, _, err := svc.GetTicketForStaff(ctx, helpdesk, offline.ID); err == nil {
		t.Fatal("helpdesk must not see offline tickets")
	}
	if _, _, err := svc.GetTicketForStaff(ctx, offlineDesk, online.ID); err == nil {
		t.Fatal("offline desk must not see online tickets")
	}
	if _, _, err := svc.GetTicketForStaff(ctx, admin, offline.ID); err != nil {
		t.Fatalf("admin sees everything: %v", err)
	}

	visible, err := svc.ListStaffTickets(ctx, helpdesk, TicketListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != online.ID {
		t.Fatalf("expected only the online ticket, got %+v", visible)
	}
}

func TestApplicantOwnershipEnforced(t *testing.T) {
	svc, _, _, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, "applicant-1", TicketCreateInput{Subject: "q", Message: "m"})
	_, _, err := svc.GetTicketForApplicant(ctx, "applicant-2", ticket.ID)
	if code := errCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", code)
	}
}
