package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"project_atendimento/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvolutionClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/message/sendText/acme-wa", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("apikey"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"number": "5527992980043", "text": "Olá"}, body)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"key":{"remoteJid":"5527992980043@s.whatsapp.net","fromMe":true,"id":"BAE5F00"},"status":"PENDING"}`))
	}))
	defer srv.Close()

	c := NewEvolutionClient(srv.URL+"/", "key-1")
	receipt, err := c.Send(context.Background(), entities.OutboundMessage{
		Channel: entities.ChannelWhatsApp, Instance: "acme-wa", Destination: "5527992980043", Text: "Olá",
	})
	require.NoError(t, err)
	assert.Equal(t, "BAE5F00", receipt.ProviderMessageID)
}

func TestEvolutionClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"instance not connected"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewEvolutionClient(srv.URL, "k").Send(context.Background(), entities.OutboundMessage{Instance: "i", Destination: "1", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestEvolutionClientNotConfigured(t *testing.T) {
	_, err := NewEvolutionClient("", "").Send(context.Background(), entities.OutboundMessage{Instance: "i", Destination: "1"})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestDigisacClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ticket-9", body["ticketId"])
		assert.Equal(t, "Olá", body["text"])
		assert.Equal(t, "text", body["type"])

		w.Write([]byte(`{"id":"msg-77"}`))
	}))
	defer srv.Close()

	receipt, err := NewDigisacClient(srv.URL, "tok").Send(context.Background(), entities.OutboundMessage{
		Channel: entities.ChannelDigisac, Instance: "svc-1", Destination: "ticket-9", Text: "Olá",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-77", receipt.ProviderMessageID)
}

func TestDigisacClientEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	receipt, err := NewDigisacClient(srv.URL, "tok").Send(context.Background(), entities.OutboundMessage{Destination: "t", Text: "x"})
	require.NoError(t, err)
	assert.Empty(t, receipt.ProviderMessageID)
}
