package dto

import (
	"time"

	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    string  `json:"category" validate:"required"`
	AssignedTo  *string `json:"assignedTo" validate:"omitnil,uuid"`
}

// UpdateTicketRequest payload. Absent fields leave the ticket unchanged; an
// empty-string assignedTo clears the assignee.
type UpdateTicketRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Status      *string `json:"status" validate:"omitnil,oneof=open in-progress resolved closed"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	Category    *string `json:"category" validate:"omitnil,min=1"`
	AssignedTo  *string `json:"assignedTo"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	CreatedBy   string                `json:"createdBy"`
	AssignedTo  *string               `json:"assignedTo,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		Category:    ticket.Category,
		CreatedBy:   ticket.CreatedBy,
		AssignedTo:  ticket.AssignedTo,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
