// Package config holds the typed, fully-parsed configuration document of
// §6. Unlike the teacher's own pkg/config, there is no package-level
// singleton: Boot receives a *Config by value and passes it on explicitly,
// per §2's "no package-level mutable state" requirement.
package config

import "github.com/heavensgate/vpncore/pkg/options"

// Config groups every config section consumed by the core.
type Config struct {
	Admin     *options.AdminOptions
	DB        *options.DBOptions
	Log       *options.LogOptions
	Core      *options.CoreOptions
	WireGuard *options.WireGuardOptions
	Xray      *options.XrayOptions
	Telegram  *options.TelegramBotOptions
}
