package entities

import (
	"errors"
	"fmt"
)

// ContactStatus is the conversation phase stored in contatos.status
type ContactStatus string

const (
	StatusUnknown         ContactStatus = "unknown" // no row yet
	StatusNewLead         ContactStatus = "new_lead"
	StatusAwaitingName    ContactStatus = "awaiting_name"
	StatusAwaitingSubject ContactStatus = "awaiting_subject"
	StatusHandedOff       ContactStatus = "handed_off"
	StatusClosed          ContactStatus = "closed"
)

// Trigger is what moves a conversation between statuses
type Trigger string

const (
	TriggerCustomerMessage Trigger = "customer_message"
	TriggerGreetingSent    Trigger = "greeting_sent"
	TriggerEscalate        Trigger = "escalate"
	TriggerTicketClosed    Trigger = "ticket_closed"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[ContactStatus]map[Trigger]ContactStatus{
	StatusUnknown: {
		TriggerCustomerMessage: StatusNewLead,
	},
	StatusNewLead: {
		TriggerCustomerMessage: StatusNewLead,
		TriggerGreetingSent:    StatusAwaitingName,
	},
	StatusAwaitingName: {
		TriggerCustomerMessage: StatusAwaitingSubject,
	},
	StatusAwaitingSubject: {
		TriggerCustomerMessage: StatusAwaitingSubject,
	},
	StatusHandedOff: {
		TriggerCustomerMessage: StatusHandedOff,
	},
	StatusClosed: {
		TriggerCustomerMessage: StatusNewLead,
	},
}

// ParseContactStatus rejects strings that are not a modeled status
func ParseContactStatus(s string) (ContactStatus, error) {
	status := ContactStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown contact status %q", s)
	}
	return status, nil
}

// Next returns the status reached from s on trigger
func (s ContactStatus) Next(trigger Trigger) (ContactStatus, error) {
	// escalation and closing come from outside the chat flow and apply everywhere
	switch trigger {
	case TriggerEscalate:
		return StatusHandedOff, nil
	case TriggerTicketClosed:
		return StatusClosed, nil
	}
	next, ok := transitions[s][trigger]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, trigger, s)
	}
	return next, nil
}

// AcceptsAutomatedReplies is false once a human owns the conversation
func (s ContactStatus) AcceptsAutomatedReplies() bool {
	return s != StatusHandedOff && s != StatusClosed
}
