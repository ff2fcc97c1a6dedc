package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"project_atendimento/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramManager holds one Bot API client per configured bot instance.
// Clients are created on first use because NewBotAPI calls getMe.
type TelegramManager struct {
	tokens   map[string]string // instance -> token
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewTelegramManager(bots []entities.TelegramBot) *TelegramManager {
	tokens := make(map[string]string, len(bots))
	for _, b := range bots {
		tokens[b.Instance] = b.Token
	}
	return &TelegramManager{
		tokens:   tokens,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: providerHTTPTimeout},
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
}

// WithEndpoint points the manager at another Bot API server, e.g. a local one
func (m *TelegramManager) WithEndpoint(endpoint string) *TelegramManager {
	m.endpoint = endpoint
	return m
}

func (m *TelegramManager) bot(instance string) (*tgbotapi.BotAPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bot, ok := m.bots[instance]; ok {
		return bot, nil
	}
	token, ok := m.tokens[instance]
	if !ok || token == "" {
		return nil, fmt.Errorf("telegram instance %q: %w", instance, ErrProviderNotConfigured)
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, m.endpoint, m.client)
	if err != nil {
		return nil, fmt.Errorf("telegram instance %q: %w", instance, err)
	}
	m.bots[instance] = bot
	return bot, nil
}

func (m *TelegramManager) Send(ctx context.Context, msg entities.OutboundMessage) (entities.SendReceipt, error) {
	if err := ctx.Err(); err != nil {
		return entities.SendReceipt{}, err
	}
	chatID, err := strconv.ParseInt(msg.Destination, 10, 64)
	if err != nil {
		return entities.SendReceipt{}, fmt.Errorf("telegram: invalid chat id %q", msg.Destination)
	}
	bot, err := m.bot(msg.Instance)
	if err != nil {
		return entities.SendReceipt{}, err
	}

	sent, err := bot.Send(tgbotapi.NewMessage(chatID, msg.Text))
	if err != nil {
		return entities.SendReceipt{}, fmt.Errorf("telegram: %w", err)
	}
	// same shape the inbound adapter uses, so a delivered copy dedups against it
	id := msg.Instance + ":" + msg.Destination + ":" + strconv.Itoa(sent.MessageID)
	return entities.SendReceipt{ProviderMessageID: id}, nil
}

// RegisterWebhooks points every bot at {publicURL}/webhook/telegram/{instance}
func (m *TelegramManager) RegisterWebhooks(publicURL string) error {
	for instance := range m.tokens {
		bot, err := m.bot(instance)
		if err != nil {
			return err
		}
		wh, err := tgbotapi.NewWebhook(publicURL + "/webhook/telegram/" + instance)
		if err != nil {
			return fmt.Errorf("telegram instance %q: %w", instance, err)
		}
		if _, err := bot.Request(wh); err != nil {
			return fmt.Errorf("telegram instance %q: set webhook: %w", instance, err)
		}
	}
	return nil
}
