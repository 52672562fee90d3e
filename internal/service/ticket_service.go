package service

import (
	"context"
	"errors"
	"sort"

	"github.com/spec-kit/change-compliance/internal/domain"
	"github.com/spec-kit/change-compliance/internal/repository"
	"github.com/spec-kit/change-compliance/pkg/util/errorutil"
)

// Sort keys accepted by TicketService.List.
const (
	SortByCreatedAt          = "createdAt"
	SortByPriority           = "priority"
	SortByCompliance         = "compliance"
	SortByScheduledStartDate = "scheduledStartDate"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var priorityRank = map[domain.TicketPriority]int{
	domain.TicketPriorityCritical: 0,
	domain.TicketPriorityHigh:     1,
	domain.TicketPriorityMedium:   2,
	domain.TicketPriorityLow:      3,
}

var complianceRank = map[domain.ComplianceStatus]int{
	domain.ComplianceNonCompliant: 0,
	domain.ComplianceWarning:      1,
	domain.ComplianceCompliant:    2,
}

// TicketService answers read queries over the ticket catalog.
type TicketService struct {
	tickets repository.TicketRepository
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
}

// TicketFilter narrows a listing. Nil or empty fields match everything.
type TicketFilter struct {
	Status           *string
	Priority         *string
	ComplianceStatus *string
	Assignee         *string
}

// TicketListQuery describes one page of a filtered, sorted listing.
type TicketListQuery struct {
	Filter    TicketFilter
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// TicketPage is one slice of the filtered listing.
type TicketPage struct {
	Tickets  []domain.Ticket
	Total    int
	Page     int
	PageSize int
}

// DashboardStats aggregates the whole catalog.
type DashboardStats struct {
	TotalTickets    int
	PendingApproval int
	Compliant       int
	Warning         int
	NonCompliant    int
	ByPriority      map[string]int
	ByAssignee      map[string]int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo}
}

// List filters, sorts and pages the catalog. Total counts every ticket that
// matched the filter; a page past the end yields no tickets.
func (s *TicketService) List(ctx context.Context, q TicketListQuery) TicketPage {
	matched := make([]domain.Ticket, 0, s.tickets.Len())
	for _, t := range s.tickets.All() {
		if q.Filter.matches(t) {
			matched = append(matched, t)
		}
	}

	sortTickets(matched, q.SortBy, q.SortOrder == SortDesc)

	page := TicketPage{
		Tickets:  []domain.Ticket{},
		Total:    len(matched),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Page < 1 || q.PageSize < 1 {
		return page
	}
	pages := (len(matched) + q.PageSize - 1) / q.PageSize
	if q.Page-1 >= pages {
		return page
	}
	start := (q.Page - 1) * q.PageSize
	end := min(start+q.PageSize, len(matched))
	page.Tickets = matched[start:end]
	return page
}

// GetByID returns the ticket with the exact id.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, errorutil.NewInternalError(err)
	}
	return ticket, nil
}

// Stats counts the catalog by status, compliance, priority and assignee.
func (s *TicketService) Stats(ctx context.Context) DashboardStats {
	stats := DashboardStats{
		ByPriority: map[string]int{},
		ByAssignee: map[string]int{},
	}
	for _, t := range s.tickets.All() {
		stats.TotalTickets++
		if t.Status == domain.TicketStatusPendingApproval {
			stats.PendingApproval++
		}
		switch t.ComplianceStatus {
		case domain.ComplianceCompliant:
			stats.Compliant++
		case domain.ComplianceWarning:
			stats.Warning++
		case domain.ComplianceNonCompliant:
			stats.NonCompliant++
		}
		stats.ByPriority[string(t.Priority)]++
		stats.ByAssignee[t.AssignedTo]++
	}
	return stats
}

func (f TicketFilter) matches(t domain.Ticket) bool {
	return fieldMatches(f.Status, string(t.Status)) &&
		fieldMatches(f.Priority, string(t.Priority)) &&
		fieldMatches(f.ComplianceStatus, string(t.ComplianceStatus)) &&
		fieldMatches(f.Assignee, t.AssignedTo)
}

func fieldMatches(want *string, got string) bool {
	if want == nil || *want == "" {
		return true
	}
	return *want == got
}

// sortTickets orders tickets in place. Equal keys keep catalog order in both
// directions; an unknown key leaves the order untouched.
func sortTickets(tickets []domain.Ticket, sortBy string, desc bool) {
	var less func(a, b domain.Ticket) bool
	switch sortBy {
	case SortByCreatedAt:
		less = func(a, b domain.Ticket) bool { return a.CreatedAt < b.CreatedAt }
	case SortByScheduledStartDate:
		less = func(a, b domain.Ticket) bool { return a.ScheduledStartDate < b.ScheduledStartDate }
	case SortByPriority:
		less = func(a, b domain.Ticket) bool { return rankOf(priorityRank, a.Priority) < rankOf(priorityRank, b.Priority) }
	case SortByCompliance:
		less = func(a, b domain.Ticket) bool {
			return rankOf(complianceRank, a.ComplianceStatus) < rankOf(complianceRank, b.ComplianceStatus)
		}
	default:
		return
	}
	if desc {
		asc := less
		less = func(a, b domain.Ticket) bool { return asc(b, a) }
	}
	sort.SliceStable(tickets, func(i, j int) bool { return less(tickets[i], tickets[j]) })
}

func rankOf[K comparable](ranks map[K]int, key K) int {
	if r, ok := ranks[key]; ok {
		return r
	}
	return len(ranks)
}
