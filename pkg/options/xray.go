package options

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// XrayOptions is the [Xray] section of §6: how XrayWorker reaches and
// authenticates against the remote admin API.
type XrayOptions struct {
	Host      string `json:"host" mapstructure:"host"`
	Port      int    `json:"port" mapstructure:"port"`
	WebPath   string `json:"web_path" mapstructure:"web_path"`
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"password" mapstructure:"password"`
	Token     string `json:"token" mapstructure:"token"`
	TLS       bool   `json:"tls" mapstructure:"tls"`
	InboundID int    `json:"inbound_id" mapstructure:"inbound_id"`
}

func NewXrayOptions() *XrayOptions {
	return &XrayOptions{
		Port: 443,
		TLS:  true,
	}
}

func (o *XrayOptions) Validate() []error {
	var errs []error
	if strings.TrimSpace(o.Host) == "" {
		errs = append(errs, fmt.Errorf("xray.host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("xray.port must be a valid port"))
	}
	if strings.TrimSpace(o.Username) == "" {
		errs = append(errs, fmt.Errorf("xray.username is required"))
	}
	if strings.TrimSpace(o.Password) == "" {
		errs = append(errs, fmt.Errorf("xray.password is required"))
	}
	if o.InboundID <= 0 {
		errs = append(errs, fmt.Errorf("xray.inbound_id is required"))
	}
	return errs
}

func (o *XrayOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Host, "xray.host", o.Host, "Xray admin panel host")
	fs.IntVar(&o.Port, "xray.port", o.Port, "Xray admin panel port")
	fs.StringVar(&o.WebPath, "xray.web-path", o.WebPath, "Xray admin panel web base path")
	fs.StringVar(&o.Username, "xray.username", o.Username, "Xray admin panel username")
	fs.StringVar(&o.Password, "xray.password", o.Password, "Xray admin panel password")
	fs.StringVar(&o.Token, "xray.token", o.Token, "Optional pre-issued session token")
	fs.BoolVar(&o.TLS, "xray.tls", o.TLS, "Use HTTPS to reach the Xray admin panel")
	fs.IntVar(&o.InboundID, "xray.inbound-id", o.InboundID, "Inbound id new Xray peers are added to")
}
