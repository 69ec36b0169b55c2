package policy

import (
	"errors"
	"testing"

	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-platform/helpdesk-service/pkg/util"
)

func TestValidateTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress},
		{domain.TicketStatusOpen, domain.TicketStatusClosed},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen},
		{domain.TicketStatusResolved, domain.TicketStatusClosed},
		{domain.TicketStatusResolved, domain.TicketStatusOpen},
		{domain.TicketStatusClosed, domain.TicketStatusOpen},
		{domain.TicketStatusOpen, domain.TicketStatusOpen},
	}
	for _, tc := range allowed {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Errorf("%s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
	}

	denied := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusResolved},
		{domain.TicketStatusInProgress, domain.TicketStatusClosed},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress},
		{domain.TicketStatusClosed, domain.TicketStatusResolved},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress},
	}
	for _, tc := range denied {
		err := ValidateTransition(tc.from, tc.to)
		if err == nil {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
			continue
		}
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
			t.Errorf("%s -> %s: expected validation error, got %v", tc.from, tc.to, err)
		}
	}
}
