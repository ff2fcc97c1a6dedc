package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"project_atendimento/internal/entities"
)

const providerHTTPTimeout = 20 * time.Second

var ErrProviderNotConfigured = errors.New("provider not configured")

// EvolutionClient sends WhatsApp text through an Evolution API relay
type EvolutionClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewEvolutionClient(baseURL, apiKey string) *EvolutionClient {
	return &EvolutionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: providerHTTPTimeout},
	}
}

func (c *EvolutionClient) Send(ctx context.Context, msg entities.OutboundMessage) (entities.SendReceipt, error) {
	if c.baseURL == "" {
		return entities.SendReceipt{}, fmt.Errorf("evolution: %w", ErrProviderNotConfigured)
	}
	if msg.Instance == "" || msg.Destination == "" {
		return entities.SendReceipt{}, errors.New("evolution: instance and number are required")
	}

	payload := map[string]string{
		"number": msg.Destination,
		"text":   msg.Text,
	}
	var resp struct {
		Key struct {
			ID string `json:"id"`
		} `json:"key"`
	}
	headers := map[string]string{"apikey": c.apiKey}
	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, msg.Instance)
	if err := postJSON(ctx, c.http, url, headers, payload, &resp); err != nil {
		return entities.SendReceipt{}, fmt.Errorf("evolution: %w", err)
	}
	return entities.SendReceipt{ProviderMessageID: resp.Key.ID}, nil
}

// DigisacClient posts replies into the ticket a message arrived on
type DigisacClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewDigisacClient(baseURL, token string) *DigisacClient {
	return &DigisacClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: providerHTTPTimeout},
	}
}

func (c *DigisacClient) Send(ctx context.Context, msg entities.OutboundMessage) (entities.SendReceipt, error) {
	if c.baseURL == "" {
		return entities.SendReceipt{}, fmt.Errorf("digisac: %w", ErrProviderNotConfigured)
	}
	if msg.Destination == "" {
		return entities.SendReceipt{}, errors.New("digisac: ticket id is required")
	}

	payload := map[string]string{
		"ticketId": msg.Destination,
		"text":     msg.Text,
		"type":     "text",
	}
	var resp struct {
		ID string `json:"id"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.token}
	if err := postJSON(ctx, c.http, c.baseURL+"/api/v1/messages", headers, payload, &resp); err != nil {
		return entities.SendReceipt{}, fmt.Errorf("digisac: %w", err)
	}
	return entities.SendReceipt{ProviderMessageID: resp.ID}, nil
}

// postJSON sends payload and decodes a 2xx response into out
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	// some relays answer 201 with an empty or non-JSON body; the send still happened
	_ = json.Unmarshal(body, out)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
