package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	"github.com/helpdesk-platform/helpdesk-service/internal/events"
	"github.com/helpdesk-platform/helpdesk-service/internal/policy"
	"github.com/helpdesk-platform/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-platform/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows, applying the policy rules
// server-side before any store round-trip.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketCreateInput describes a structurally validated creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	AssignedTo  *string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher}
}

// Create persists a new ticket. The creator reference always comes from the
// authenticated session, never from the payload. Status defaults to open
// and priority to medium.
func (s *TicketService) Create(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    strings.TrimSpace(input.Category),
		CreatedBy:   requester.ID,
		AssignedTo:  input.AssignedTo,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, requester, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Category: ticket.Category,
		Priority: ticket.Priority,
	})
	return ticket, nil
}

// List returns the tickets visible to the requester under the read-scope
// rule, newest first.
func (s *TicketService) List(ctx context.Context, requester *domain.User, q policy.ListQuery) ([]domain.Ticket, error) {
	filter := policy.ReadScope(requester, q)
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get loads a single ticket, enforcing visibility.
func (s *TicketService) Get(ctx context.Context, requester *domain.User, id string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(requester, ticket) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

// Update applies a masked mutation. Ownership is checked before the write
// mask; a user-role requester's status and assignee fields are dropped
// silently rather than rejected.
func (s *TicketService) Update(ctx context.Context, requester *domain.User, id string, update policy.TicketUpdate) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(requester, ticket) {
		return nil, apperrors.NewForbidden("not allowed to modify this ticket")
	}

	policy.ApplyWriteMask(requester, &update)

	oldStatus := ticket.Status
	oldAssignee := ticket.AssignedTo

	if update.Status != nil {
		if err := policy.ValidateTransition(ticket.Status, *update.Status); err != nil {
			return nil, err
		}
		ticket.Status = *update.Status
	}
	if update.Title != nil {
		ticket.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		ticket.Description = strings.TrimSpace(*update.Description)
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	if update.Category != nil {
		ticket.Category = strings.TrimSpace(*update.Category)
	}
	if update.AssignedTo != nil {
		if *update.AssignedTo == "" {
			ticket.AssignedTo = nil
		} else {
			ticket.AssignedTo = update.AssignedTo
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, requester, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}
	if assigneeChanged(oldAssignee, ticket.AssignedTo) {
		s.publish(ctx, events.EventTicketAssigned, ticket.ID, requester, events.TicketAssignedPayload{
			AssignedTo: ticket.AssignedTo,
		})
	}
	return ticket, nil
}

// Delete removes a ticket; admins and the original creator only.
func (s *TicketService) Delete(ctx context.Context, requester *domain.User, id string) error {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDelete(requester, ticket) {
		return apperrors.NewForbidden("not allowed to delete this ticket")
	}

	if err := s.tickets.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketDeleted, id, requester, events.TicketDeletedPayload{Title: ticket.Title})
	return nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, actor *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func assigneeChanged(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return true
	}
	return *a != *b
}
