package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/infrastructure"
	"project_atendimento/internal/interfaces"
	"project_atendimento/internal/repository"

	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAI struct {
	mu       sync.Mutex
	reply    string
	err      error
	stall    bool // block until the context ends
	requests []interfaces.CompletionRequest
}

func (f *fakeAI) Complete(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply, err, stall := f.reply, f.err, f.stall
	f.mu.Unlock()
	if stall {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

func (f *fakeAI) calls() []interfaces.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interfaces.CompletionRequest(nil), f.requests...)
}

type fakeMessenger struct {
	mu    sync.Mutex
	err   error
	stall bool
	sent  []entities.OutboundMessage
}

func (f *fakeMessenger) Send(ctx context.Context, msg entities.OutboundMessage) (entities.SendReceipt, error) {
	if f.stall {
		<-ctx.Done()
		return entities.SendReceipt{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return entities.SendReceipt{}, f.err
	}
	f.sent = append(f.sent, msg)
	return entities.SendReceipt{ProviderMessageID: fmt.Sprintf("out-%d", len(f.sent))}, nil
}

func (f *fakeMessenger) messages() []entities.OutboundMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.OutboundMessage(nil), f.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []string
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func newTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	client, err := infrastructure.NewSQLiteClient(":memory:")
	require.NoError(t, err)
	require.NoError(t, client.Migrate(context.Background()))
	store := repository.NewSQLiteStore(client.DB)
	t.Cleanup(func() { store.Close() })
	return store
}
