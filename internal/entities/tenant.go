package entities

// TelegramBot is a bot account owned by a tenant
type TelegramBot struct {
	Instance string `yaml:"instance"`
	Token    string `yaml:"token"`
}

// Tenant is immutable after startup
type Tenant struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	SystemPrompt string        `yaml:"system_prompt"`
	Greeting     string        `yaml:"greeting"`   // optional fixed first reply
	AllowList    []string      `yaml:"allow_list"` // contacts eligible for automated replies
	WhatsApp     []string      `yaml:"whatsapp"`   // Evolution instance names
	Digisac      []string      `yaml:"digisac"`    // Digisac service ids
	Telegram     []TelegramBot `yaml:"telegram"`
}

// Allows reports whether contact may receive automated replies
func (t Tenant) Allows(contact string) bool {
	for _, c := range t.AllowList {
		if c == contact {
			return true
		}
	}
	return false
}

// Accounts lists every (channel, instance) pair the tenant owns
func (t Tenant) Accounts() map[Channel][]string {
	accounts := map[Channel][]string{
		ChannelWhatsApp: t.WhatsApp,
		ChannelDigisac:  t.Digisac,
	}
	for _, bot := range t.Telegram {
		accounts[ChannelTelegram] = append(accounts[ChannelTelegram], bot.Instance)
	}
	return accounts
}
