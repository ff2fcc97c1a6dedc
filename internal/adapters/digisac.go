package adapters

import (
	"encoding/json"
	"strings"

	"project_atendimento/internal/entities"
)

// DigisacAdapter parses the ticketing provider webhook
type DigisacAdapter struct{}

type digisacEnvelope struct {
	Event string      `json:"event"`
	Data  digisacData `json:"data"`
}

type digisacData struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	IsFromMe  bool   `json:"isFromMe"`
	TicketID  string `json:"ticketId"`
	ContactID string `json:"contactId"`
	ServiceID string `json:"serviceId"`
	Contact   *struct {
		Number string `json:"number"`
		Data   *struct {
			Number string `json:"number"`
		} `json:"data"`
	} `json:"contact"`
}

func (DigisacAdapter) Channel() entities.Channel { return entities.ChannelDigisac }

func (DigisacAdapter) Normalize(d Delivery) (entities.InboundEvent, error) {
	var env digisacEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		return entities.InboundEvent{}, malformed(err)
	}
	data := env.Data

	var kind entities.EventKind
	switch env.Event {
	case "message.created":
		kind = entities.EventMessage
	case "ticket.transferred":
		kind = entities.EventEscalate
	case "ticket.closed":
		kind = entities.EventTicketClosed
	default:
		return entities.InboundEvent{}, ignored("event " + env.Event)
	}

	if data.ServiceID == "" {
		return entities.InboundEvent{}, ignored("no service id")
	}
	phone := digisacPhone(data)
	if phone == "" {
		return entities.InboundEvent{}, ignored("no phone number")
	}

	event := entities.InboundEvent{
		Kind:       kind,
		Channel:    entities.ChannelDigisac,
		InstanceID: data.ServiceID,
		Contact:    phone,
	}
	if kind != entities.EventMessage {
		// ticket events carry the ticket itself in data
		event.ReplyTarget = data.ID
		return event, nil
	}

	if data.IsFromMe {
		event.ProviderMessageID = data.ID
		event.FromAutomatedSystem = true
		return event, nil
	}
	text := strings.TrimSpace(data.Text)
	if data.Type != "chat" || text == "" {
		return entities.InboundEvent{}, ignored("not a text message")
	}
	if data.TicketID == "" {
		return entities.InboundEvent{}, ignored("no ticket")
	}

	event.Text = text
	event.ReplyTarget = data.TicketID
	event.ProviderMessageID = data.ID
	return event, nil
}

// digisacPhone prefers contact.number over contact.data.number
func digisacPhone(data digisacData) string {
	if data.Contact == nil {
		return ""
	}
	if phone := NormalizePhone(data.Contact.Number); phone != "" {
		return phone
	}
	if data.Contact.Data != nil {
		return NormalizePhone(data.Contact.Data.Number)
	}
	return ""
}
