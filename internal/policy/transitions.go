package policy

import (
	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-platform/helpdesk-service/pkg/util"
)

// statusGraph is the enforced ticket lifecycle. Re-setting the current
// status is a no-op and always allowed.
var statusGraph = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusOpen},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusClosed:     {domain.TicketStatusOpen},
}

// ValidateTransition checks a requested status change against the lifecycle
// graph and returns a validation error naming both states on violation.
func ValidateTransition(from, to domain.TicketStatus) error {
	if from == to {
		return nil
	}
	for _, allowed := range statusGraph[from] {
		if allowed == to {
			return nil
		}
	}
	return apperrors.NewValidationError("invalid status transition", map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}
