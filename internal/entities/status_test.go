package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactStatusNext(t *testing.T) {
	cases := []struct {
		from    ContactStatus
		trigger Trigger
		want    ContactStatus
	}{
		{StatusUnknown, TriggerCustomerMessage, StatusNewLead},
		{StatusNewLead, TriggerGreetingSent, StatusAwaitingName},
		{StatusNewLead, TriggerCustomerMessage, StatusNewLead},
		{StatusAwaitingName, TriggerCustomerMessage, StatusAwaitingSubject},
		{StatusAwaitingSubject, TriggerCustomerMessage, StatusAwaitingSubject},
		{StatusHandedOff, TriggerCustomerMessage, StatusHandedOff},
		{StatusClosed, TriggerCustomerMessage, StatusNewLead},
		{StatusAwaitingName, TriggerEscalate, StatusHandedOff},
		{StatusUnknown, TriggerTicketClosed, StatusClosed},
		{StatusHandedOff, TriggerTicketClosed, StatusClosed},
	}
	for _, tc := range cases {
		got, err := tc.from.Next(tc.trigger)
		require.NoError(t, err, "%s on %s", tc.trigger, tc.from)
		assert.Equal(t, tc.want, got, "%s on %s", tc.trigger, tc.from)
	}
}

func TestContactStatusRejectsUnmodeledTransitions(t *testing.T) {
	_, err := StatusUnknown.Next(TriggerGreetingSent)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StatusAwaitingSubject.Next(TriggerGreetingSent)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = ContactStatus("vip").Next(TriggerCustomerMessage)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseContactStatus(t *testing.T) {
	s, err := ParseContactStatus("awaiting_name")
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingName, s)

	_, err = ParseContactStatus("lead")
	assert.Error(t, err)
}

func TestTenantAllowsAndAccounts(t *testing.T) {
	tenant := Tenant{
		ID:        "acme",
		AllowList: []string{"5527992980043"},
		WhatsApp:  []string{"acme-wa"},
		Telegram:  []TelegramBot{{Instance: "acme_bot", Token: "x"}},
	}
	assert.True(t, tenant.Allows("5527992980043"))
	assert.False(t, tenant.Allows("5511999999999"))

	accounts := tenant.Accounts()
	assert.Equal(t, []string{"acme-wa"}, accounts[ChannelWhatsApp])
	assert.Equal(t, []string{"acme_bot"}, accounts[ChannelTelegram])
	assert.Empty(t, accounts[ChannelDigisac])
}
