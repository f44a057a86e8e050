package main

import (
	"encoding/json"

	"github.com/spf13/pflag"
	"k8s.io/component-base/cli/flag"
	"k8s.io/component-base/logs"

	"github.com/heavensgate/vpncore/pkg/config"
	"github.com/heavensgate/vpncore/pkg/options"
)

// serverOptions is the full set of flags/config keys the core binary
// accepts, one field per §6 config section.
type serverOptions struct {
	Admin     *options.AdminOptions
	DB        *options.DBOptions
	Log       *options.LogOptions
	Core      *options.CoreOptions
	WireGuard *options.WireGuardOptions
	Xray      *options.XrayOptions
	Telegram  *options.TelegramBotOptions
}

func newServerOptions() *serverOptions {
	return &serverOptions{
		Admin:     options.NewAdminOptions(),
		DB:        options.NewDBOptions(),
		Log:       options.NewLogOptions(),
		Core:      options.NewCoreOptions(),
		WireGuard: options.NewWireGuardOptions(),
		Xray:      options.NewXrayOptions(),
		Telegram:  options.NewTelegramBotOptions(),
	}
}

// AddFlags mirrors the teacher's grouped-flag-set convention: one named
// FlagSet per config section, merged into cmd's FlagSet for --help display.
func (o *serverOptions) AddFlags(fs *pflag.FlagSet) *flag.NamedFlagSets {
	nfs := &flag.NamedFlagSets{}

	configFS := nfs.FlagSet("Config")
	options.AddConfigFlag(configFS)

	o.Admin.AddFlags(nfs.FlagSet("Admin"))
	o.DB.AddFlags(nfs.FlagSet("DB"))
	o.Core.AddFlags(nfs.FlagSet("Core"))
	o.WireGuard.AddFlags(nfs.FlagSet("WireGuard"))
	o.Xray.AddFlags(nfs.FlagSet("Xray"))
	o.Telegram.AddFlags(nfs.FlagSet("Telegram"))

	logsFlagSet := nfs.FlagSet("Logs")
	logs.AddFlags(logsFlagSet)
	o.Log.AddFlags(logsFlagSet)

	for _, name := range nfs.Order {
		fs.AddFlagSet(nfs.FlagSets[name])
	}
	return nfs
}

func (o *serverOptions) Validate() []error {
	var errs []error
	errs = append(errs, o.Admin.Validate()...)
	errs = append(errs, o.DB.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Core.Validate()...)
	errs = append(errs, o.WireGuard.Validate()...)
	errs = append(errs, o.Xray.Validate()...)
	errs = append(errs, o.Telegram.Validate()...)
	return errs
}

func (o *serverOptions) String() string {
	data, _ := json.Marshal(o)
	return string(data)
}

// config groups o's sections into the shape boot.New consumes.
func (o *serverOptions) config() *config.Config {
	return &config.Config{
		Admin:     o.Admin,
		DB:        o.DB,
		Log:       o.Log,
		Core:      o.Core,
		WireGuard: o.WireGuard,
		Xray:      o.Xray,
		Telegram:  o.Telegram,
	}
}
