package repository

import (
	"errors"
	"fmt"

	"github.com/spec-kit/change-compliance/internal/compliance"
	"github.com/spec-kit/change-compliance/internal/domain"
)

// ErrTicketNotFound is returned when no ticket carries the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository provides read access to the ticket catalog.
type TicketRepository interface {
	All() []domain.Ticket
	GetByID(id string) (*domain.Ticket, error)
	Len() int
}

type catalogRepository struct {
	tickets []domain.Ticket
	byID    map[string]int
}

// NewCatalog validates every record, evaluates its compliance and freezes the
// result. Seed order is kept as catalog order.
func NewCatalog(records []domain.TicketRecord) (TicketRepository, error) {
	repo := &catalogRepository{
		tickets: make([]domain.Ticket, 0, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		if _, dup := repo.byID[rec.ID]; dup {
			return nil, fmt.Errorf("seed record %d: duplicate id %q", i, rec.ID)
		}

		eval := compliance.Evaluate(rec)
		ticket := domain.Ticket{
			TicketRecord:      rec,
			ComplianceStatus:  eval.Status,
			ValidationResults: eval.Results,
		}
		repo.byID[rec.ID] = len(repo.tickets)
		repo.tickets = append(repo.tickets, ticket.Clone())
	}
	return repo, nil
}

func validateRecord(rec domain.TicketRecord) error {
	if rec.ID == "" {
		return errors.New("id is required")
	}
	if !rec.Priority.Valid() {
		return fmt.Errorf("ticket %s: unknown priority %q", rec.ID, rec.Priority)
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("ticket %s: unknown status %q", rec.ID, rec.Status)
	}
	return nil
}

// All returns the catalog in seed order. The slice is a copy.
func (r *catalogRepository) All() []domain.Ticket {
	out := make([]domain.Ticket, len(r.tickets))
	for i := range r.tickets {
		out[i] = r.tickets[i].Clone()
	}
	return out
}

func (r *catalogRepository) GetByID(id string) (*domain.Ticket, error) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	ticket := r.tickets[idx].Clone()
	return &ticket, nil
}

func (r *catalogRepository) Len() int {
	return len(r.tickets)
}
