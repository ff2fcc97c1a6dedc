package interfaces

import (
	"context"
	"project_atendimento/internal/entities"
)

// ChatTurn is one role-tagged entry of a completion request
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

type CompletionRequest struct {
	SystemPrompt string
	Messages     []ChatTurn
}

type AIClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Messenger sends text through a single provider
type Messenger interface {
	Send(ctx context.Context, msg entities.OutboundMessage) (entities.SendReceipt, error)
}

type MessageStore interface {
	// InsertMessage stores msg and sets msg.ID. It returns false without error
	// when the tenant already has a message with the same provider message id.
	InsertMessage(ctx context.Context, msg *entities.Message) (bool, error)
	HasProviderMessage(ctx context.Context, tenantID, providerMessageID string) (bool, error)
	// RecentMessages returns at most limit messages oldest first, skipping excludeID
	RecentMessages(ctx context.Context, tenantID, contact string, limit int, excludeID int64) ([]entities.Message, error)
	LastMessage(ctx context.Context, tenantID, contact string) (*entities.Message, error)
}

type ContactStore interface {
	GetStatus(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error)
	// CompareAndSwapStatus moves the row from `from` to `to` in one statement.
	// from == StatusUnknown means "insert if absent".
	CompareAndSwapStatus(ctx context.Context, tenantID, contact string, from, to entities.ContactStatus) (bool, error)
}

type Store interface {
	MessageStore
	ContactStore
	Close() error
}

// ReplyLimiter throttles automated replies per key
type ReplyLimiter interface {
	Allow(key string) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}
