package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

var ErrUnknownTenant = errors.New("unknown tenant")

// ContactView is what an operator sees for one conversation
type ContactView struct {
	TenantID string                 `json:"tenant"`
	Contact  string                 `json:"telefone"`
	Status   entities.ContactStatus `json:"status"`
	Messages []entities.Message     `json:"messages"`
}

// DashboardUsecase backs the operator API: inspect a conversation, hand it to
// a human or close it
type DashboardUsecase struct {
	tenants      *TenantResolver
	messages     interfaces.MessageStore
	conversation *ConversationStateMachine
	window       int
	publisher    interfaces.EventPublisher
	logger       *slog.Logger
}

func NewDashboardUsecase(tenants *TenantResolver, store interfaces.Store, window int, publisher interfaces.EventPublisher, logger *slog.Logger) *DashboardUsecase {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardUsecase{
		tenants:      tenants,
		messages:     store,
		conversation: NewConversationStateMachine(store),
		window:       window,
		publisher:    publisher,
		logger:       logger.With("component", "dashboard"),
	}
}

func (u *DashboardUsecase) Contact(ctx context.Context, tenantID, contact string) (ContactView, error) {
	if _, ok := u.tenants.Tenant(tenantID); !ok {
		return ContactView{}, fmt.Errorf("%w: %s", ErrUnknownTenant, tenantID)
	}
	status, err := u.conversation.Status(ctx, tenantID, contact)
	if err != nil {
		return ContactView{}, err
	}
	history, err := u.messages.RecentMessages(ctx, tenantID, contact, u.window, 0)
	if err != nil {
		return ContactView{}, fmt.Errorf("recent messages: %w", err)
	}
	return ContactView{TenantID: tenantID, Contact: contact, Status: status, Messages: history}, nil
}

// Handoff stops automated replies for the contact
func (u *DashboardUsecase) Handoff(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error) {
	return u.apply(ctx, tenantID, contact, entities.TriggerEscalate)
}

// Close ends the conversation; the next customer message reopens it as a new lead
func (u *DashboardUsecase) Close(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error) {
	return u.apply(ctx, tenantID, contact, entities.TriggerTicketClosed)
}

func (u *DashboardUsecase) apply(ctx context.Context, tenantID, contact string, trigger entities.Trigger) (entities.ContactStatus, error) {
	if _, ok := u.tenants.Tenant(tenantID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTenant, tenantID)
	}
	status, err := u.conversation.Apply(ctx, tenantID, contact, trigger)
	if err != nil {
		return "", err
	}
	if u.publisher != nil {
		// the status change is already stored
		err := u.publisher.Publish(ctx, EventStatusChanged, map[string]any{
			"tenant":  tenantID,
			"contact": contact,
			"trigger": trigger,
			"status":  status,
		})
		if err != nil {
			u.logger.Warn("publish failed", "event", EventStatusChanged, "tenant", tenantID, "error", err)
		}
	}
	return status, nil
}
