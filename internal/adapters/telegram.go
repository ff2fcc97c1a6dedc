package adapters

import (
	"encoding/json"
	"strconv"
	"strings"

	"project_atendimento/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAdapter parses Bot API updates pushed to the webhook of one bot instance
type TelegramAdapter struct{}

func (TelegramAdapter) Channel() entities.Channel { return entities.ChannelTelegram }

func (TelegramAdapter) Normalize(d Delivery) (entities.InboundEvent, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(d.Body, &update); err != nil {
		return entities.InboundEvent{}, malformed(err)
	}
	if d.Instance == "" {
		return entities.InboundEvent{}, ignored("no instance")
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return entities.InboundEvent{}, ignored("not a message")
	}
	if msg.From != nil && msg.From.IsBot {
		return entities.InboundEvent{
			Kind:                entities.EventMessage,
			Channel:             entities.ChannelTelegram,
			InstanceID:          d.Instance,
			FromAutomatedSystem: true,
		}, nil
	}
	if !msg.Chat.IsPrivate() {
		return entities.InboundEvent{}, ignored("not a direct chat")
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return entities.InboundEvent{}, ignored("not a text message")
	}

	// chat ids are account ids, not phone numbers; message ids are only unique per chat
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	return entities.InboundEvent{
		Kind:              entities.EventMessage,
		Channel:           entities.ChannelTelegram,
		InstanceID:        d.Instance,
		Contact:           chatID,
		ReplyTarget:       chatID,
		Text:              text,
		ProviderMessageID: d.Instance + ":" + chatID + ":" + strconv.Itoa(msg.MessageID),
	}, nil
}
