package options

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// TelegramBotOptions is the [TelegramBot] section of §6. Token and FAQURL
// are consumed only by the out-of-scope front-end; the core reads only
// Admins, parsed from its CSV form, to gate the administrative HTTP
// surface of §2a.
type TelegramBotOptions struct {
	Token     string `json:"token" mapstructure:"token"`
	AdminsCSV string `json:"admins" mapstructure:"admins"`
	FAQURL    string `json:"faq_url" mapstructure:"faq_url"`

	Admins map[string]struct{} `json:"-" mapstructure:"-"`
}

func NewTelegramBotOptions() *TelegramBotOptions {
	return &TelegramBotOptions{}
}

func (o *TelegramBotOptions) Validate() []error {
	o.Admins = make(map[string]struct{})
	for _, part := range strings.Split(o.AdminsCSV, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			continue
		}
		o.Admins[id] = struct{}{}
	}
	return nil
}

func (o *TelegramBotOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Token, "telegram.token", o.Token, "Telegram bot token (consumed by the front-end only)")
	fs.StringVar(&o.AdminsCSV, "telegram.admins", o.AdminsCSV, "Comma-separated administrator ids gating the admin HTTP surface")
	fs.StringVar(&o.FAQURL, "telegram.faq-url", o.FAQURL, "FAQ URL (consumed by the front-end only)")
}

// IsAdmin reports whether id is a member of the configured admin set.
func (o *TelegramBotOptions) IsAdmin(id string) bool {
	_, ok := o.Admins[id]
	return ok
}
