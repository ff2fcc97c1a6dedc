package usecases

import (
	"context"
	"errors"
	"fmt"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

const defaultTransitionAttempts = 5

// ErrStatusContention is returned when concurrent writers kept changing the
// status under us for every attempt
var ErrStatusContention = errors.New("contact status kept changing")

// ConversationStateMachine applies triggers to the stored contact status.
// Each step is a compare-and-swap, so a lost race re-reads and re-evaluates
// instead of overwriting another request's transition.
type ConversationStateMachine struct {
	contacts    interfaces.ContactStore
	maxAttempts int
}

func NewConversationStateMachine(contacts interfaces.ContactStore) *ConversationStateMachine {
	return &ConversationStateMachine{contacts: contacts, maxAttempts: defaultTransitionAttempts}
}

func (m *ConversationStateMachine) Status(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error) {
	status, err := m.contacts.GetStatus(ctx, tenantID, contact)
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	return status, nil
}

// Apply moves the contact along trigger and returns the resulting status
func (m *ConversationStateMachine) Apply(ctx context.Context, tenantID, contact string, trigger entities.Trigger) (entities.ContactStatus, error) {
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		current, err := m.Status(ctx, tenantID, contact)
		if err != nil {
			return "", err
		}
		next, err := current.Next(trigger)
		if err != nil {
			return current, err
		}
		if next == current {
			return current, nil
		}

		swapped, err := m.contacts.CompareAndSwapStatus(ctx, tenantID, contact, current, next)
		if err != nil {
			return "", fmt.Errorf("set status %s: %w", next, err)
		}
		if swapped {
			return next, nil
		}
	}
	return "", fmt.Errorf("%w: %s for %s/%s", ErrStatusContention, trigger, tenantID, contact)
}
