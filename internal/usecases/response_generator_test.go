package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int) []entities.Message {
	msgs := make([]entities.Message, n)
	for i := range msgs {
		author := entities.AuthorCustomer
		if i%2 == 1 {
			author = entities.AuthorAssistant
		}
		msgs[i] = entities.Message{Author: author, Content: fmt.Sprintf("m%d", i)}
	}
	return msgs
}

func TestGenerateBuildsPromptOldestFirst(t *testing.T) {
	ai := &fakeAI{reply: "  Claro!  "}
	g := NewResponseGenerator(ai, 3, discardLogger)
	tenant := entities.Tenant{ID: "acme", SystemPrompt: "Seja breve."}

	reply := g.Generate(context.Background(), tenant, history(5), "novo")
	assert.Equal(t, "Claro!", reply)

	calls := ai.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Seja breve.", calls[0].SystemPrompt)
	assert.Equal(t, []interfaces.ChatTurn{
		{Role: "user", Content: "m2"},
		{Role: "assistant", Content: "m3"},
		{Role: "user", Content: "m4"},
		{Role: "user", Content: "novo"},
	}, calls[0].Messages)
}

func TestGenerateFailureIsEmpty(t *testing.T) {
	g := NewResponseGenerator(&fakeAI{err: errors.New("upstream 500")}, 10, discardLogger)
	assert.Empty(t, g.Generate(context.Background(), entities.Tenant{ID: "acme"}, nil, "oi"))

	g = NewResponseGenerator(nil, 10, discardLogger)
	assert.Empty(t, g.Generate(context.Background(), entities.Tenant{ID: "acme"}, nil, "oi"))
}

func TestGeneratorDefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultHistoryWindow, NewResponseGenerator(nil, 0, nil).Window())
}
