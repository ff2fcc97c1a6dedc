package usecases

import (
	"context"
	"fmt"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

// DedupGuard rejects redeliveries of a provider message.
// The unique (tenant, message_id) index does the real work: Claim is a single
// insert, so two concurrent deliveries of the same id cannot both win.
type DedupGuard struct {
	messages interfaces.MessageStore
}

func NewDedupGuard(messages interfaces.MessageStore) *DedupGuard {
	return &DedupGuard{messages: messages}
}

// Seen is a read-only pre-check; messages without a provider id are never seen
func (g *DedupGuard) Seen(ctx context.Context, tenantID, providerMessageID string) (bool, error) {
	if providerMessageID == "" {
		return false, nil
	}
	seen, err := g.messages.HasProviderMessage(ctx, tenantID, providerMessageID)
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return seen, nil
}

// Claim stores msg and reports whether this delivery is the first one
func (g *DedupGuard) Claim(ctx context.Context, msg *entities.Message) (bool, error) {
	accepted, err := g.messages.InsertMessage(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return accepted, nil
}
