package adapters

import (
	"encoding/json"
	"strings"

	"project_atendimento/internal/entities"

	"go.mau.fi/whatsmeow/types"
)

// EvolutionAdapter parses the WhatsApp relay (Evolution API) webhook
type EvolutionAdapter struct{}

type evolutionEnvelope struct {
	Event    string        `json:"event"`
	Instance string        `json:"instance"`
	Data     evolutionData `json:"data"`
}

type evolutionData struct {
	Key struct {
		RemoteJid    string `json:"remoteJid"`
		RemoteJidAlt string `json:"remoteJidAlt"`
		SenderPn     string `json:"senderPn"`
		FromMe       bool   `json:"fromMe"`
		ID           string `json:"id"`
	} `json:"key"`
	Message *struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage *struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
	} `json:"message"`
	MessageType string `json:"messageType"`
}

func (EvolutionAdapter) Channel() entities.Channel { return entities.ChannelWhatsApp }

func (a EvolutionAdapter) Normalize(d Delivery) (entities.InboundEvent, error) {
	var env evolutionEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		return entities.InboundEvent{}, malformed(err)
	}

	if env.Event != "" && normalizeEventName(env.Event) != "messages.upsert" {
		return entities.InboundEvent{}, ignored("event " + env.Event)
	}
	if env.Instance == "" {
		return entities.InboundEvent{}, ignored("no instance")
	}
	if env.Data.Key.FromMe {
		return entities.InboundEvent{
			Kind:                entities.EventMessage,
			Channel:             entities.ChannelWhatsApp,
			InstanceID:          env.Instance,
			ProviderMessageID:   env.Data.Key.ID,
			FromAutomatedSystem: true,
		}, nil
	}

	text := evolutionText(env.Data)
	if text == "" {
		return entities.InboundEvent{}, ignored("not a text message")
	}

	phone, err := evolutionPhone(env.Data)
	if err != nil {
		return entities.InboundEvent{}, err
	}

	return entities.InboundEvent{
		Kind:              entities.EventMessage,
		Channel:           entities.ChannelWhatsApp,
		InstanceID:        env.Instance,
		Contact:           phone,
		ReplyTarget:       phone,
		Text:              text,
		ProviderMessageID: env.Data.Key.ID,
	}, nil
}

// normalizeEventName accepts both "messages.upsert" and "MESSAGES_UPSERT"
func normalizeEventName(event string) string {
	return strings.ReplaceAll(strings.ToLower(event), "_", ".")
}

func evolutionText(data evolutionData) string {
	if data.Message == nil {
		return ""
	}
	switch data.MessageType {
	case "", "conversation", "extendedTextMessage":
	default:
		return ""
	}
	text := strings.TrimSpace(data.Message.Conversation)
	if text == "" && data.Message.ExtendedTextMessage != nil {
		text = strings.TrimSpace(data.Message.ExtendedTextMessage.Text)
	}
	return text
}

// evolutionPhone picks the contact number: remoteJid when it is a phone JID,
// then key.senderPn, then key.remoteJidAlt (both set for LID-addressed chats).
func evolutionPhone(data evolutionData) (string, error) {
	jid, err := types.ParseJID(data.Key.RemoteJid)
	if err != nil {
		return "", malformed(err)
	}
	switch jid.Server {
	case types.GroupServer, types.BroadcastServer, types.NewsletterServer:
		return "", ignored("not a direct chat")
	}

	candidates := []string{data.Key.SenderPn, data.Key.RemoteJidAlt}
	if jid.Server == types.DefaultUserServer {
		candidates = append([]string{data.Key.RemoteJid}, candidates...)
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		parsed, err := types.ParseJID(candidate)
		if err != nil || parsed.Server != types.DefaultUserServer {
			continue
		}
		if phone := NormalizePhone(parsed.User); phone != "" {
			return phone, nil
		}
	}
	return "", ignored("no phone number")
}
