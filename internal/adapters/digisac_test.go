package adapters

import (
	"testing"

	"project_atendimento/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigisacNormalizeMessage(t *testing.T) {
	body := `{"event":"message.created","data":{"id":"msg-1","type":"chat","text":"Bom dia","isFromMe":false,"ticketId":"t-9","contactId":"c-1","serviceId":"svc-1","contact":{"number":"(27) 99298-0043"}}}`

	event, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte(body)})
	require.NoError(t, err)
	assert.Equal(t, entities.EventMessage, event.Kind)
	assert.Equal(t, entities.ChannelDigisac, event.Channel)
	assert.Equal(t, "svc-1", event.InstanceID)
	assert.Equal(t, "5527992980043", event.Contact)
	assert.Equal(t, "t-9", event.ReplyTarget)
	assert.Equal(t, "Bom dia", event.Text)
	assert.Equal(t, "msg-1", event.ProviderMessageID)
}

func TestDigisacPhoneFallsBackToContactData(t *testing.T) {
	body := `{"event":"message.created","data":{"id":"m","type":"chat","text":"oi","ticketId":"t","serviceId":"svc-1","contact":{"data":{"number":"5527992980043"}}}}`

	event, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte(body)})
	require.NoError(t, err)
	assert.Equal(t, "5527992980043", event.Contact)
}

func TestDigisacTicketEvents(t *testing.T) {
	escalate := `{"event":"ticket.transferred","data":{"id":"t-9","serviceId":"svc-1","contact":{"number":"27992980043"}}}`
	event, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte(escalate)})
	require.NoError(t, err)
	assert.Equal(t, entities.EventEscalate, event.Kind)
	assert.Equal(t, "5527992980043", event.Contact)

	closed := `{"event":"ticket.closed","data":{"id":"t-9","serviceId":"svc-1","contact":{"number":"27992980043"}}}`
	event, err = DigisacAdapter{}.Normalize(Delivery{Body: []byte(closed)})
	require.NoError(t, err)
	assert.Equal(t, entities.EventTicketClosed, event.Kind)
}

func TestDigisacNormalizeFromMe(t *testing.T) {
	body := `{"event":"message.created","data":{"id":"m-2","type":"chat","text":"oi","isFromMe":true,"ticketId":"t","serviceId":"svc-1","contact":{"number":"27992980043"}}}`

	event, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte(body)})
	require.NoError(t, err)
	assert.True(t, event.FromAutomatedSystem)
	assert.Equal(t, "svc-1", event.InstanceID)
	assert.Equal(t, "5527992980043", event.Contact)
	assert.Equal(t, "m-2", event.ProviderMessageID)
}

func TestDigisacNormalizeIgnored(t *testing.T) {
	cases := map[string]string{
		"audio":      `{"event":"message.created","data":{"id":"m","type":"audio","text":"","ticketId":"t","serviceId":"s","contact":{"number":"27992980043"}}}`,
		"no contact": `{"event":"message.created","data":{"id":"m","type":"chat","text":"oi","ticketId":"t","serviceId":"s"}}`,
		"other":      `{"event":"contact.updated","data":{}}`,
		"no service": `{"event":"message.created","data":{"id":"m","type":"chat","text":"oi","ticketId":"t","contact":{"number":"27992980043"}}}`,
	}
	for name, body := range cases {
		_, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte(body)})
		assert.ErrorIs(t, err, ErrIgnored, name)
	}

	_, err := DigisacAdapter{}.Normalize(Delivery{Body: []byte("not json")})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
