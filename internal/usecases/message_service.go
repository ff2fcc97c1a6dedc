package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"project_atendimento/internal/adapters"
	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

const DefaultRequestTimeout = 25 * time.Second

// Pipeline events published on the message bus
const (
	EventMessageReceived = "message.received"
	EventReplySent       = "reply.sent"
	EventStatusChanged   = "status.changed"
)

// MessageService runs one webhook delivery through the pipeline:
// normalize, resolve tenant, dedup, store, advance status, reply.
type MessageService struct {
	adapters     *adapters.Registry
	tenants      *TenantResolver
	dedup        *DedupGuard
	messages     interfaces.MessageStore
	conversation *ConversationStateMachine
	generator    *ResponseGenerator
	dispatcher   *Dispatcher
	publisher    interfaces.EventPublisher
	timeout      time.Duration
	logger       *slog.Logger
}

type MessageServiceDeps struct {
	Adapters   *adapters.Registry
	Tenants    *TenantResolver
	Store      interfaces.Store
	Generator  *ResponseGenerator
	Dispatcher *Dispatcher
	Publisher  interfaces.EventPublisher
	Timeout    time.Duration
	Logger     *slog.Logger
}

func NewMessageService(deps MessageServiceDeps) *MessageService {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultRequestTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Adapters == nil {
		deps.Adapters = adapters.Default()
	}
	return &MessageService{
		adapters:     deps.Adapters,
		tenants:      deps.Tenants,
		dedup:        NewDedupGuard(deps.Store),
		messages:     deps.Store,
		conversation: NewConversationStateMachine(deps.Store),
		generator:    deps.Generator,
		dispatcher:   deps.Dispatcher,
		publisher:    deps.Publisher,
		timeout:      deps.Timeout,
		logger:       deps.Logger.With("component", "pipeline"),
	}
}

// Handle never panics and never blocks past the request timeout
func (s *MessageService) Handle(ctx context.Context, channel entities.Channel, d adapters.Delivery) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in pipeline", "channel", channel, "panic", r)
			res = Result{Outcome: OutcomeInternalFailure, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	adapter, ok := s.adapters.Get(channel)
	if !ok {
		return Result{Outcome: OutcomeIgnored, Err: fmt.Errorf("no adapter for %s", channel)}
	}
	event, err := adapter.Normalize(d)
	switch {
	case errors.Is(err, adapters.ErrMalformedPayload):
		s.logger.Warn("malformed payload", "channel", channel, "error", err)
		return Result{Outcome: OutcomeMalformed, Err: err}
	case err != nil:
		s.logger.Debug("delivery ignored", "channel", channel, "reason", err)
		return Result{Outcome: OutcomeIgnored, Err: err}
	case event.FromAutomatedSystem:
		s.logger.Debug("delivery ignored", "channel", channel, "reason", "sent by this system")
		return Result{Outcome: OutcomeIgnored}
	}

	tenant, ok := s.tenants.Resolve(event.Channel, event.InstanceID)
	if !ok {
		s.logger.Warn("unknown tenant", "channel", event.Channel, "instance", event.InstanceID)
		return Result{Outcome: OutcomeUnknownTenant}
	}

	// providers hang up long before the AI answers; only the timeout bounds the work
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if event.Kind != entities.EventMessage {
		return s.handleTicketEvent(ctx, tenant, event)
	}
	return s.handleMessage(ctx, tenant, event)
}

func (s *MessageService) handleTicketEvent(ctx context.Context, tenant entities.Tenant, event entities.InboundEvent) Result {
	trigger := entities.TriggerEscalate
	if event.Kind == entities.EventTicketClosed {
		trigger = entities.TriggerTicketClosed
	}
	status, err := s.conversation.Apply(ctx, tenant.ID, event.Contact, trigger)
	if err != nil {
		s.logger.Error("status change failed", "tenant", tenant.ID, "contact", event.Contact, "trigger", trigger, "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}
	s.publish(ctx, EventStatusChanged, map[string]any{
		"tenant":  tenant.ID,
		"contact": event.Contact,
		"trigger": trigger,
		"status":  status,
	})
	return Result{Outcome: OutcomeStored}
}

func (s *MessageService) handleMessage(ctx context.Context, tenant entities.Tenant, event entities.InboundEvent) Result {
	log := s.logger.With("tenant", tenant.ID, "contact", event.Contact, "channel", event.Channel)

	seen, err := s.dedup.Seen(ctx, tenant.ID, event.ProviderMessageID)
	if err != nil {
		log.Error("dedup check failed", "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}
	if seen {
		return Result{Outcome: OutcomeDuplicate}
	}

	echo, err := s.isEcho(ctx, tenant.ID, event)
	if err != nil {
		log.Error("echo check failed", "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}
	if echo {
		log.Debug("own reply echoed back")
		return Result{Outcome: OutcomeIgnored}
	}

	msg := &entities.Message{
		TenantID:          tenant.ID,
		Contact:           event.Contact,
		Channel:           event.Channel,
		Author:            entities.AuthorCustomer,
		Type:              entities.ContentTypeText,
		Content:           event.Text,
		ProviderMessageID: event.ProviderMessageID,
	}
	accepted, err := s.dedup.Claim(ctx, msg)
	if err != nil {
		log.Error("store message failed", "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}
	if !accepted {
		return Result{Outcome: OutcomeDuplicate}
	}
	s.publish(ctx, EventMessageReceived, map[string]any{
		"tenant":     tenant.ID,
		"contact":    msg.Contact,
		"channel":    msg.Channel,
		"message_id": msg.ID,
	})

	status, err := s.conversation.Apply(ctx, tenant.ID, event.Contact, entities.TriggerCustomerMessage)
	if err != nil {
		log.Error("status change failed", "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}

	if !tenant.Allows(event.Contact) || !status.AcceptsAutomatedReplies() {
		return Result{Outcome: OutcomeStored}
	}

	text, err := s.replyText(ctx, tenant, status, msg)
	if err != nil {
		log.Error("load history failed", "error", err)
		return Result{Outcome: OutcomeStoreFailure, Err: err}
	}
	if text == "" {
		return Result{Outcome: OutcomeStored}
	}

	receipt, err := s.dispatcher.Send(ctx, tenant.ID, event.Contact, entities.OutboundMessage{
		Channel:     event.Channel,
		Instance:    event.InstanceID,
		Destination: event.ReplyTarget,
		Text:        text,
	})
	if err != nil {
		log.Error("reply not sent", "error", err)
		return Result{Outcome: OutcomeDownstreamFailure, Err: err}
	}
	s.publish(ctx, EventReplySent, map[string]any{
		"tenant":              tenant.ID,
		"contact":             event.Contact,
		"channel":             event.Channel,
		"provider_message_id": receipt.ProviderMessageID,
	})

	if status == entities.StatusNewLead {
		if _, err := s.conversation.Apply(ctx, tenant.ID, event.Contact, entities.TriggerGreetingSent); err != nil {
			log.Warn("greeting status not recorded", "error", err)
		}
	}
	return Result{Outcome: OutcomeReplied}
}

// isEcho catches our own reply coming back without a provider flag
func (s *MessageService) isEcho(ctx context.Context, tenantID string, event entities.InboundEvent) (bool, error) {
	last, err := s.messages.LastMessage(ctx, tenantID, event.Contact)
	if err != nil {
		return false, err
	}
	return last != nil && last.Author == entities.AuthorAssistant && last.Content == event.Text, nil
}

// replyText is the fixed greeting for a new lead when the tenant has one,
// otherwise an AI completion over the recent history
func (s *MessageService) replyText(ctx context.Context, tenant entities.Tenant, status entities.ContactStatus, msg *entities.Message) (string, error) {
	if status == entities.StatusNewLead && tenant.Greeting != "" {
		return tenant.Greeting, nil
	}
	if s.generator == nil {
		return "", nil
	}
	history, err := s.messages.RecentMessages(ctx, tenant.ID, msg.Contact, s.generator.Window(), msg.ID)
	if err != nil {
		return "", err
	}
	return s.generator.Generate(ctx, tenant, history, msg.Content), nil
}

func (s *MessageService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warn("publish failed", "event", eventType, "error", err)
	}
}
