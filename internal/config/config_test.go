package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/bot.db", cfg.DatabaseURL)
	assert.False(t, cfg.Postgres())
	assert.Equal(t, "tenants.yaml", cfg.TenantsFile)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "atendimento.events", cfg.AMQPExchange)
	assert.Equal(t, 25*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.Equal(t, 6.0, cfg.ReplyRatePerMinute)
	assert.Equal(t, 3, cfg.ReplyBurst)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":    "postgres://u:p@db:5432/bot",
		"REQUEST_TIMEOUT": "5s",
		"HISTORY_WINDOW":  "4",
		"PUBLIC_URL":      "https://bot.example.com/",
		"CORS_ORIGINS":    "https://painel.example.com, http://localhost:5173",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Postgres())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.HistoryWindow)
	assert.Equal(t, "https://bot.example.com", cfg.PublicURL)
	assert.Equal(t, []string{"https://painel.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"REQUEST_TIMEOUT": "soon"}))
	assert.Error(t, err)
	_, err = FromEnv(envMap(map[string]string{"HISTORY_WINDOW": "0"}))
	assert.Error(t, err)
	_, err = FromEnv(envMap(map[string]string{"REPLY_BURST": "many"}))
	assert.Error(t, err)
}

const tenantsYAML = `
tenants:
  - id: acme
    name: Acme Ltda
    system_prompt: Você atende clientes da Acme.
    greeting: Olá! Qual é o seu nome?
    allow_list: ["5527992980043"]
    whatsapp: [acme-wa]
    digisac: [svc-acme]
    telegram:
      - instance: acme_bot
        token: ${ACME_TELEGRAM_TOKEN}
`

func TestLoadTenantsExpandsEnv(t *testing.T) {
	t.Setenv("ACME_TELEGRAM_TOKEN", "123:abc")
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tenantsYAML), 0o600))

	tenants, err := LoadTenants(path)
	require.NoError(t, err)
	require.Len(t, tenants, 1)

	acme := tenants[0]
	assert.Equal(t, "acme", acme.ID)
	assert.Equal(t, "Olá! Qual é o seu nome?", acme.Greeting)
	assert.Equal(t, []string{"5527992980043"}, acme.AllowList)
	assert.Equal(t, []string{"acme-wa"}, acme.WhatsApp)
	require.Len(t, acme.Telegram, 1)
	assert.Equal(t, "123:abc", acme.Telegram[0].Token)
	assert.Len(t, TelegramBots(tenants), 1)
}

func TestParseTenantsNormalizesAllowList(t *testing.T) {
	tenants, err := ParseTenants([]byte(`
tenants:
  - id: acme
    allow_list: ["27992980043", "+55 (27) 99298-0044", " 5527992980045 ", "123456789", "-100200"]
`))
	require.NoError(t, err)
	require.Len(t, tenants, 1)

	acme := tenants[0]
	assert.True(t, acme.Allows("5527992980043"))
	assert.True(t, acme.Allows("5527992980044"))
	assert.True(t, acme.Allows("5527992980045"))
	assert.True(t, acme.Allows("123456789"))
	assert.True(t, acme.Allows("-100200"))
	assert.False(t, acme.Allows("100200"))
	assert.False(t, acme.Allows("+55 (27) 99298-0044"))
}

func TestParseTenantsValidation(t *testing.T) {
	_, err := ParseTenants([]byte("tenants:\n  - name: sem id\n"))
	assert.Error(t, err)

	_, err = ParseTenants([]byte("tenants:\n  - id: acme\n    telegram:\n      - instance: bot\n"))
	assert.Error(t, err)

	_, err = ParseTenants([]byte("tenants: [\n"))
	assert.Error(t, err)
}
