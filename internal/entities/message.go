package entities

import "time"

// Channel identifies the provider a message arrived on or must be sent through
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelDigisac  Channel = "digisac"
	ChannelTelegram Channel = "telegram"
)

// Author is stored in mensagens.autor
type Author string

const (
	AuthorCustomer  Author = "cliente"
	AuthorAssistant Author = "ia"
)

const ContentTypeText = "text"

type Message struct {
	ID                int64     `json:"id"`
	TenantID          string    `json:"tenant"`
	Contact           string    `json:"telefone"` // normalized phone / account id
	Channel           Channel   `json:"origem"`
	Author            Author    `json:"autor"`
	Type              string    `json:"tipo"` // currently only "text"
	Content           string    `json:"conteudo"`
	ProviderMessageID string    `json:"message_id,omitempty"` // empty when the provider sent no stable id
	CreatedAt         time.Time `json:"created_at"`
}

// OutboundMessage is a reply addressed to a provider destination
type OutboundMessage struct {
	Channel     Channel
	Instance    string // provider account the reply must leave from
	Destination string // phone, ticket id or chat id depending on channel
	Text        string
}

// SendReceipt is what a messenger returns after a successful send
type SendReceipt struct {
	ProviderMessageID string
}
