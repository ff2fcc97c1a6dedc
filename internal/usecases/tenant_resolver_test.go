package usecases

import (
	"testing"

	"project_atendimento/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantResolverResolve(t *testing.T) {
	r, err := NewTenantResolver([]entities.Tenant{
		{ID: "acme", WhatsApp: []string{"acme-wa"}, Digisac: []string{"svc-1"}},
		{ID: "globex", WhatsApp: []string{"globex-wa"}, Telegram: []entities.TelegramBot{{Instance: "globex_bot", Token: "t"}}},
	})
	require.NoError(t, err)

	tenant, ok := r.Resolve(entities.ChannelWhatsApp, "acme-wa")
	require.True(t, ok)
	assert.Equal(t, "acme", tenant.ID)

	tenant, ok = r.Resolve(entities.ChannelTelegram, "globex_bot")
	require.True(t, ok)
	assert.Equal(t, "globex", tenant.ID)

	// instance names are scoped by channel
	_, ok = r.Resolve(entities.ChannelDigisac, "acme-wa")
	assert.False(t, ok)

	_, ok = r.Resolve(entities.ChannelWhatsApp, "nobody")
	assert.False(t, ok)

	_, ok = r.Tenant("globex")
	assert.True(t, ok)
	assert.Len(t, r.Tenants(), 2)
}

func TestTenantResolverRejectsSharedAccount(t *testing.T) {
	_, err := NewTenantResolver([]entities.Tenant{
		{ID: "acme", WhatsApp: []string{"shared"}},
		{ID: "globex", WhatsApp: []string{"shared"}},
	})
	assert.Error(t, err)

	_, err = NewTenantResolver([]entities.Tenant{{ID: "acme"}, {ID: "acme"}})
	assert.Error(t, err)

	_, err = NewTenantResolver([]entities.Tenant{{Name: "no id"}})
	assert.Error(t, err)
}
