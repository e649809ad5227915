package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
)

// In-memory fakes backing the service tests. They mirror the store
// semantics the Postgres repositories implement, including the atomic
// claim operations.

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}
func (d *captureDispatcher) SubscribeAll(events.EventHandler)               {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeApplicantRepo struct {
	mu         sync.Mutex
	seq        int
	applicants map[string]*domain.Applicant
}

func newFakeApplicantRepo() *fakeApplicantRepo {
	return &fakeApplicantRepo{applicants: make(map[string]*domain.Applicant)}
}

func (r *fakeApplicantRepo) Create(_ context.Context, applicant *domain.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.applicants {
		if existing.Email == applicant.Email {
			return fmt.Errorf("duplicate email %s", applicant.Email)
		}
	}
	r.seq++
	applicant.ID = fmt.Sprintf("applicant-%d", r.seq)
	applicant.CreatedAt = time.Now()
	applicant.UpdatedAt = applicant.CreatedAt
	copied := *applicant
	r.applicants[applicant.ID] = &copied
	return nil
}

func (r *fakeApplicantRepo) Update(_ context.Context, applicant *domain.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applicants[applicant.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *applicant
	r.applicants[applicant.ID] = &copied
	return nil
}

func (r *fakeApplicantRepo) GetByID(_ context.Context, id string) (*domain.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant, ok := r.applicants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *applicant
	return &copied, nil
}

func (r *fakeApplicantRepo) GetByEmail(_ context.Context, email string) (*domain.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, applicant := range r.applicants {
		if applicant.Email == email {
			copied := *applicant
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeApplicantRepo) SetJoinConfirmed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant, ok := r.applicants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	applicant.JoinConfirmed = true
	return nil
}

func (r *fakeApplicantRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applicants[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.applicants, id)
	return nil
}

func (r *fakeApplicantRepo) add(applicant *domain.Applicant) *domain.Applicant {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if applicant.ID == "" {
		applicant.ID = fmt.Sprintf("applicant-%d", r.seq)
	}
	copied := *applicant
	r.applicants[applicant.ID] = &copied
	return applicant
}

type fakeGroupRepo struct {
	mu         sync.Mutex
	seq        int
	groups     []*domain.Group
	applicants *fakeApplicantRepo
}

func newFakeGroupRepo(applicants *fakeApplicantRepo) *fakeGroupRepo {
	return &fakeGroupRepo{applicants: applicants}
}

func (r *fakeGroupRepo) Create(_ context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	group.ID = fmt.Sprintf("group-%d", r.seq)
	group.CreatedAt = time.Now()
	copied := *group
	r.groups = append(r.groups, &copied)
	return nil
}

func (r *fakeGroupRepo) Update(_ context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.groups {
		if existing.ID == group.ID {
			copied := *group
			copied.MemberCount = existing.MemberCount
			r.groups[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeGroupRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.groups {
		if existing.ID == id {
			if existing.MemberCount > 0 {
				return repository.ErrGroupNotEmpty
			}
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, group := range r.groups {
		if group.ID == id {
			copied := *group
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeGroupRepo) List(_ context.Context) ([]domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Group, 0, len(r.groups))
	for _, group := range r.groups {
		out = append(out, *group)
	}
	return out, nil
}

// AssignFirstAvailable mimics the transactional claim: the oldest group
// with spare capacity is incremented and the applicant stamped, all
// under one lock.
func (r *fakeGroupRepo) AssignFirstAvailable(_ context.Context, applicantID string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.applicants.mu.Lock()
	applicant, ok := r.applicants.applicants[applicantID]
	if !ok {
		r.applicants.mu.Unlock()
		return nil, repository.ErrApplicantMissing
	}
	if applicant.AssignedGroupID != nil {
		r.applicants.mu.Unlock()
		return nil, repository.ErrAlreadyAssigned
	}
	r.applicants.mu.Unlock()

	for _, group := range r.groups {
		if group.MemberCount < group.Capacity {
			group.MemberCount++
			r.applicants.mu.Lock()
			if applicant, ok := r.applicants.applicants[applicantID]; ok {
				groupID := group.ID
				applicant.AssignedGroupID = &groupID
			}
			r.applicants.mu.Unlock()
			copied := *group
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets []*domain.Ticket
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets = append(r.tickets, &copied)
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tickets {
		if existing.ID == ticket.ID {
			copied := *ticket
			copied.UpdatedAt = time.Now()
			r.tickets[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ApplicantID != nil && ticket.ApplicantID != *filter.ApplicantID {
			continue
		}
		if filter.IsOffline != nil && ticket.IsOffline != *filter.IsOffline {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.Unassigned && ticket.AssignedTo != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(ticket.Subject), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListForBalancing(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.IsOffline {
			continue
		}
		if ticket.Status != domain.TicketStatusOpen && ticket.Status != domain.TicketStatusInProgress {
			continue
		}
		out = append(out, *ticket)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTicketRepo) UpdateAssignment(_ context.Context, ticketID string, operatorID *string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == ticketID {
			ticket.AssignedTo = operatorID
			ticket.Status = status
			ticket.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages []domain.TicketMessage
}

func (r *fakeMessageRepo) Create(_ context.Context, message *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	message.ID = fmt.Sprintf("message-%d", r.seq)
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketMessage
	for _, message := range r.messages {
		if message.TicketID == ticketID {
			out = append(out, message)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	seq     int
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("history-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories []domain.TicketCategory
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.TicketCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	category.ID = fmt.Sprintf("category-%d", r.seq)
	category.CreatedAt = time.Now()
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.TicketCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.ID == id {
			copied := category
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.TicketCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketCategory{}, r.categories...), nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, category := range r.categories {
		if category.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeOperatorRepo struct {
	mu        sync.Mutex
	operators []domain.HelpdeskOperator
}

func (r *fakeOperatorRepo) Upsert(_ context.Context, operator *domain.HelpdeskOperator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.operators {
		if existing.StaffID == operator.StaffID {
			r.operators[i] = *operator
			return nil
		}
	}
	operator.CreatedAt = time.Now()
	r.operators = append(r.operators, *operator)
	return nil
}

func (r *fakeOperatorRepo) GetByStaffID(_ context.Context, staffID string) (*domain.HelpdeskOperator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, operator := range r.operators {
		if operator.StaffID == staffID {
			copied := operator
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeOperatorRepo) ListActive(_ context.Context, isOffline bool) ([]domain.HelpdeskOperator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HelpdeskOperator
	for _, operator := range r.operators {
		if operator.IsActive && operator.IsOffline == isOffline {
			out = append(out, operator)
		}
	}
	return out, nil
}

type fakeCounterRepo struct {
	mu       sync.Mutex
	seq      int
	counters []*domain.HelpdeskCounter
}

func (r *fakeCounterRepo) Create(_ context.Context, counter *domain.HelpdeskCounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	counter.ID = fmt.Sprintf("counter-%d", r.seq)
	copied := *counter
	r.counters = append(r.counters, &copied)
	return nil
}

func (r *fakeCounterRepo) Update(_ context.Context, counter *domain.HelpdeskCounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.counters {
		if existing.ID == counter.ID {
			copied := *counter
			r.counters[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeCounterRepo) GetByID(_ context.Context, id string) (*domain.HelpdeskCounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, counter := range r.counters {
		if counter.ID == id {
			copied := *counter
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCounterRepo) List(_ context.Context) ([]domain.HelpdeskCounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.HelpdeskCounter, 0, len(r.counters))
	for _, counter := range r.counters {
		out = append(out, *counter)
	}
	return out, nil
}

func (r *fakeCounterRepo) ClaimOperator(_ context.Context, counterID, operatorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var target *domain.HelpdeskCounter
	for _, counter := range r.counters {
		if counter.ID == counterID {
			target = counter
			continue
		}
		if counter.OperatorID != nil && *counter.OperatorID == operatorID {
			return repository.ErrCounterTaken
		}
	}
	if target == nil {
		return pgx.ErrNoRows
	}
	if !target.IsActive {
		return repository.ErrCounterTaken
	}
	if target.OperatorID != nil && *target.OperatorID != operatorID {
		return repository.ErrCounterTaken
	}
	target.OperatorID = &operatorID
	return nil
}

func (r *fakeCounterRepo) ReleaseOperator(_ context.Context, counterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, counter := range r.counters {
		if counter.ID == counterID {
			counter.OperatorID = nil
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeQueueRepo struct {
	mu      sync.Mutex
	seq     int
	tickets []*domain.QueueTicket
}

func (r *fakeQueueRepo) Create(_ context.Context, ticket *domain.QueueTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("queue-%d", r.seq)
	ticket.Status = domain.QueueStatusWaiting
	ticket.QueueNumber = r.nextNumberLocked()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets = append(r.tickets, &copied)
	return nil
}

func (r *fakeQueueRepo) nextNumberLocked() int {
	max := 0
	for _, ticket := range r.tickets {
		if ticket.QueueNumber > max {
			max = ticket.QueueNumber
		}
	}
	return max + 1
}

func (r *fakeQueueRepo) GetByID(_ context.Context, id string) (*domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeQueueRepo) ActiveAtCounter(_ context.Context, counterID string) (*domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.CounterID == nil || *ticket.CounterID != counterID {
			continue
		}
		if ticket.Status == domain.QueueStatusCalled || ticket.Status == domain.QueueStatusServing {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ClaimOldestWaiting mimics the store's single-statement claim: the
// busy check, head selection and update all happen under one lock.
func (r *fakeQueueRepo) ClaimOldestWaiting(_ context.Context, counterID string, operatorID *string) (*domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.CounterID == nil || *ticket.CounterID != counterID {
			continue
		}
		if ticket.Status == domain.QueueStatusCalled || ticket.Status == domain.QueueStatusServing {
			return nil, repository.ErrCounterBusy
		}
	}
	var oldest *domain.QueueTicket
	for _, ticket := range r.tickets {
		if ticket.Status != domain.QueueStatusWaiting {
			continue
		}
		if oldest == nil || ticket.QueueNumber < oldest.QueueNumber {
			oldest = ticket
		}
	}
	if oldest == nil {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	oldest.Status = domain.QueueStatusCalled
	oldest.CounterID = &counterID
	oldest.OperatorID = operatorID
	oldest.ServedAt = &now
	oldest.UpdatedAt = now
	copied := *oldest
	return &copied, nil
}

func (r *fakeQueueRepo) UpdateTransition(_ context.Context, ticket *domain.QueueTicket, from domain.QueueStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tickets {
		if existing.ID != ticket.ID {
			continue
		}
		if existing.Status != from {
			return repository.ErrStaleStatus
		}
		copied := *ticket
		copied.UpdatedAt = time.Now()
		r.tickets[i] = &copied
		return nil
	}
	return pgx.ErrNoRows
}

func (r *fakeQueueRepo) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			ticket.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeQueueRepo) ListToday(_ context.Context, statuses []domain.QueueStatus) ([]domain.QueueTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.QueueTicket
	for _, ticket := range r.tickets {
		if len(statuses) > 0 {
			match := false
			for _, status := range statuses {
				if ticket.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *ticket)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QueueNumber < out[j].QueueNumber })
	return out, nil
}

type fakeStaffRepo struct {
	mu    sync.Mutex
	seq   int
	staff map[string]*domain.StaffMember
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: make(map[string]*domain.StaffMember)}
}

func (r *fakeStaffRepo) Create(_ context.Context, member *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.staff {
		if existing.Email == member.Email {
			return fmt.Errorf("duplicate email %s", member.Email)
		}
	}
	r.seq++
	member.ID = fmt.Sprintf("staff-%d", r.seq)
	member.CreatedAt = time.Now()
	copied := *member
	r.staff[member.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) Update(_ context.Context, member *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[member.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *member
	r.staff[member.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.staff {
		if member.Email == email {
			copied := *member
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StaffMember
	for _, member := range r.staff {
		if filter.Role != nil && member.Role != *filter.Role {
			continue
		}
		out = append(out, *member)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]*repository.PasswordResetToken
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokens == nil {
		r.tokens = make(map[string]*repository.PasswordResetToken)
	}
	r.seq++
	token.ID = fmt.Sprintf("reset-%d", r.seq)
	token.CreatedAt = time.Now()
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, raw string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Token == raw {
			copied := *token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}
