package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

var (
	ErrNoMessenger = errors.New("no messenger for channel")
	ErrRateLimited = errors.New("reply rate limit reached")
)

// Dispatcher sends a reply back through the channel the message arrived on
// and records it as an assistant message.
type Dispatcher struct {
	messengers map[entities.Channel]interfaces.Messenger
	messages   interfaces.MessageStore
	limiter    interfaces.ReplyLimiter
	logger     *slog.Logger
}

func NewDispatcher(messages interfaces.MessageStore, limiter interfaces.ReplyLimiter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		messengers: make(map[entities.Channel]interfaces.Messenger),
		messages:   messages,
		limiter:    limiter,
		logger:     logger.With("component", "dispatcher"),
	}
}

// Register binds the messenger used for channel. Not safe once Send is in use.
func (d *Dispatcher) Register(channel entities.Channel, m interfaces.Messenger) {
	d.messengers[channel] = m
}

func (d *Dispatcher) Send(ctx context.Context, tenantID, contact string, out entities.OutboundMessage) (entities.SendReceipt, error) {
	messenger, ok := d.messengers[out.Channel]
	if !ok {
		return entities.SendReceipt{}, fmt.Errorf("%w: %s", ErrNoMessenger, out.Channel)
	}
	if d.limiter != nil && !d.limiter.Allow(tenantID+"|"+contact) {
		return entities.SendReceipt{}, fmt.Errorf("%w: %s/%s", ErrRateLimited, tenantID, contact)
	}

	receipt, err := messenger.Send(ctx, out)
	if err != nil {
		return entities.SendReceipt{}, fmt.Errorf("send via %s: %w", out.Channel, err)
	}

	reply := &entities.Message{
		TenantID:          tenantID,
		Contact:           contact,
		Channel:           out.Channel,
		Author:            entities.AuthorAssistant,
		Type:              entities.ContentTypeText,
		Content:           out.Text,
		ProviderMessageID: receipt.ProviderMessageID,
	}
	// the customer already has the reply; a failed insert only costs history
	if stored, err := d.messages.InsertMessage(ctx, reply); err != nil {
		d.logger.Error("store reply failed", "tenant", tenantID, "contact", contact, "error", err)
	} else if !stored {
		d.logger.Warn("reply id already stored", "tenant", tenantID, "provider_message_id", receipt.ProviderMessageID)
	}
	return receipt, nil
}
