package usecases

import (
	"context"
	"log/slog"
	"strings"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/interfaces"
)

const DefaultHistoryWindow = 10

// ResponseGenerator builds the completion prompt for a tenant and asks the AI
// backend for a reply. Failures never escape: the caller gets "" and skips
// the reply.
type ResponseGenerator struct {
	ai     interfaces.AIClient
	window int
	logger *slog.Logger
}

func NewResponseGenerator(ai interfaces.AIClient, window int, logger *slog.Logger) *ResponseGenerator {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseGenerator{ai: ai, window: window, logger: logger.With("component", "generator")}
}

// Window is how many stored messages go into one prompt
func (g *ResponseGenerator) Window() int { return g.window }

// Generate replies to newMessage given history ordered oldest first
func (g *ResponseGenerator) Generate(ctx context.Context, tenant entities.Tenant, history []entities.Message, newMessage string) string {
	if g.ai == nil {
		return ""
	}
	if len(history) > g.window {
		history = history[len(history)-g.window:]
	}

	req := interfaces.CompletionRequest{
		SystemPrompt: tenant.SystemPrompt,
		Messages:     make([]interfaces.ChatTurn, 0, len(history)+1),
	}
	for _, m := range history {
		role := "user"
		if m.Author == entities.AuthorAssistant {
			role = "assistant"
		}
		req.Messages = append(req.Messages, interfaces.ChatTurn{Role: role, Content: m.Content})
	}
	req.Messages = append(req.Messages, interfaces.ChatTurn{Role: "user", Content: newMessage})

	reply, err := g.ai.Complete(ctx, req)
	if err != nil {
		g.logger.Warn("completion failed", "tenant", tenant.ID, "error", err)
		return ""
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.logger.Info("completion returned no text", "tenant", tenant.ID)
	}
	return reply
}
