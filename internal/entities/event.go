package entities

// EventKind distinguishes customer messages from ticketing decisions
type EventKind string

const (
	EventMessage      EventKind = "message"
	EventEscalate     EventKind = "escalate"
	EventTicketClosed EventKind = "ticket_closed"
)

// InboundEvent is the provider-independent form of a webhook delivery
type InboundEvent struct {
	Kind                EventKind
	Channel             Channel
	InstanceID          string
	Contact             string
	ReplyTarget         string
	Text                string
	ProviderMessageID   string
	FromAutomatedSystem bool
}
