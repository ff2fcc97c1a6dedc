// Package adapters turns provider-specific webhook payloads into entities.InboundEvent.
// Each provider is one Adapter; adding a provider means adding a variant, not
// editing a shared parser.
package adapters

import (
	"errors"
	"fmt"

	"project_atendimento/internal/entities"
)

var (
	// ErrIgnored marks deliveries that are valid but carry nothing to process
	ErrIgnored = errors.New("ignored")
	// ErrMalformedPayload marks bodies that cannot be decoded at all
	ErrMalformedPayload = errors.New("malformed payload")
)

// Delivery is one webhook request as seen by an adapter
type Delivery struct {
	Body     []byte
	Instance string // route hint for providers that do not name the account in the body
}

type Adapter interface {
	Channel() entities.Channel
	Normalize(d Delivery) (entities.InboundEvent, error)
}

func ignored(reason string) error {
	return fmt.Errorf("%w: %s", ErrIgnored, reason)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
}

// Registry holds one adapter per channel
type Registry struct {
	adapters map[entities.Channel]Adapter
}

func NewRegistry(list ...Adapter) *Registry {
	r := &Registry{adapters: make(map[entities.Channel]Adapter, len(list))}
	for _, a := range list {
		r.adapters[a.Channel()] = a
	}
	return r
}

func (r *Registry) Get(channel entities.Channel) (Adapter, bool) {
	a, ok := r.adapters[channel]
	return a, ok
}

// Default wires the three providers this service speaks
func Default() *Registry {
	return NewRegistry(EvolutionAdapter{}, DigisacAdapter{}, TelegramAdapter{})
}
