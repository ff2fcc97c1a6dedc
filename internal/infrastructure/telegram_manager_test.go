package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"project_atendimento/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBotAPI(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Acme","username":"acme_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.Equal(t, "/bottoken-1/sendMessage", r.URL.Path)
			assert.Equal(t, "99", r.FormValue("chat_id"))
			assert.Equal(t, "Olá", r.FormValue("text"))
			w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":99,"type":"private"},"text":"Olá"}}`))
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}))
}

func TestTelegramManagerSend(t *testing.T) {
	srv := fakeBotAPI(t)
	defer srv.Close()

	m := NewTelegramManager([]entities.TelegramBot{{Instance: "acme_bot", Token: "token-1"}}).
		WithEndpoint(srv.URL + "/bot%s/%s")

	receipt, err := m.Send(context.Background(), entities.OutboundMessage{
		Channel: entities.ChannelTelegram, Instance: "acme_bot", Destination: "99", Text: "Olá",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme_bot:99:42", receipt.ProviderMessageID)
}

func TestTelegramManagerUnknownInstance(t *testing.T) {
	m := NewTelegramManager(nil)
	_, err := m.Send(context.Background(), entities.OutboundMessage{Instance: "nope", Destination: "99", Text: "x"})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = m.Send(context.Background(), entities.OutboundMessage{Instance: "nope", Destination: "not-a-chat", Text: "x"})
	assert.Error(t, err)
}
