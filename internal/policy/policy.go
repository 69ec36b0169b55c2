// Package policy implements the role-based rules governing which tickets an
// identity may list, mutate, and delete. The rules are pure functions over
// domain values so they can be tested without a database.
package policy

import (
	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	"github.com/helpdesk-platform/helpdesk-service/internal/repository"
)

// ListQuery carries the client-supplied listing filters before scoping.
type ListQuery struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	CreatedBy  *string
}

// TicketUpdate is a structurally validated mutation payload. Nil fields are
// left untouched. An empty-string AssignedTo clears the assignee.
type TicketUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *string
	AssignedTo  *string
}

// ReadScope builds the store filter for a listing request. Client-supplied
// scoping is never trusted: a plain user is always pinned to their own
// tickets, and an agent with no explicit assignee filter gets the implicit
// work-queue view (assigned to me or unassigned).
func ReadScope(requester *domain.User, q ListQuery) repository.TicketFilter {
	filter := repository.TicketFilter{
		Status:   q.Status,
		Priority: q.Priority,
	}

	if requester.Role == domain.RoleUser {
		id := requester.ID
		filter.CreatedBy = &id
	} else if q.CreatedBy != nil {
		filter.CreatedBy = q.CreatedBy
	}

	if requester.Role.Staff() && q.AssignedTo != nil {
		filter.AssignedTo = q.AssignedTo
	} else if requester.Role == domain.RoleAgent && q.AssignedTo == nil {
		id := requester.ID
		filter.AssignedToOrUnassigned = &id
	}

	return filter
}

// CanView reports whether the requester may read the ticket. Staff see every
// ticket; a plain user only their own.
func CanView(requester *domain.User, ticket *domain.Ticket) bool {
	if requester.Role.Staff() {
		return true
	}
	return ticket.CreatedBy == requester.ID
}

// CanMutate reports whether the requester may update the ticket. The
// ownership check precedes the write mask.
func CanMutate(requester *domain.User, ticket *domain.Ticket) bool {
	if requester.Role.Staff() {
		return true
	}
	return ticket.CreatedBy == requester.ID
}

// CanDelete reports whether the requester may delete the ticket: admins and
// the original creator only.
func CanDelete(requester *domain.User, ticket *domain.Ticket) bool {
	if requester.Role == domain.RoleAdmin {
		return true
	}
	return ticket.CreatedBy == requester.ID
}

// ApplyWriteMask silently drops the fields a plain user may not change.
// Title, description, priority, and category remain editable; status and
// assignee are staff-only.
func ApplyWriteMask(requester *domain.User, update *TicketUpdate) {
	if requester.Role.Staff() {
		return
	}
	update.Status = nil
	update.AssignedTo = nil
}
