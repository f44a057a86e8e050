package options

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/pflag"
)

// AdminOptions configures the administrative HTTP surface of §2a: the bind
// address/port it listens on and the bootstrap operator credential used to
// mint bearer tokens for it. None of this gates chat users — the core
// "does not authenticate chat users" per §1 — it gates only this
// operator-facing API, sourced from the config document's [Admin] section.
type AdminOptions struct {
	BindAddress net.IP `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind-port"    mapstructure:"bind-port"`

	Username     string        `json:"username" mapstructure:"username"`
	PasswordHash string        `json:"password-hash" mapstructure:"password-hash"`
	Salt         string        `json:"salt" mapstructure:"salt"`
	JWTSecret    string        `json:"jwt-secret" mapstructure:"jwt-secret"`
	JWTExpiry    time.Duration `json:"jwt-expiry" mapstructure:"jwt-expiry"`
}

func NewAdminOptions() *AdminOptions {
	return &AdminOptions{
		BindAddress: net.ParseIP("127.0.0.1"),
		BindPort:    8080,
		JWTExpiry:   24 * time.Hour,
	}
}

func (a *AdminOptions) Validate() []error {
	var errs []error
	if a.BindAddress == nil {
		errs = append(errs, fmt.Errorf("admin.bind-address is required"))
	}
	if a.BindPort == 0 {
		errs = append(errs, fmt.Errorf("admin.bind-port is required"))
	}
	if a.Username == "" {
		errs = append(errs, fmt.Errorf("admin.username is required"))
	}
	if a.PasswordHash == "" {
		errs = append(errs, fmt.Errorf("admin.password-hash is required (generate with the 'passwd' subcommand)"))
	}
	if a.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("admin.jwt-secret is required"))
	}
	if a.JWTExpiry <= 0 {
		errs = append(errs, fmt.Errorf("admin.jwt-expiry must be greater than 0"))
	}
	return errs
}

func (a *AdminOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IPVarP(&a.BindAddress, "admin.bind-address", "b", net.ParseIP("127.0.0.1"), "IP address on which to serve the administrative HTTP surface, set to 0.0.0.0 for all interfaces")
	fs.IntVarP(&a.BindPort, "admin.bind-port", "p", 8080, "port to listen on for the administrative HTTP surface")
	fs.StringVar(&a.Username, "admin.username", a.Username, "Bootstrap operator username for the administrative HTTP surface")
	fs.StringVar(&a.PasswordHash, "admin.password-hash", a.PasswordHash, "bcrypt hash of the bootstrap operator password")
	fs.StringVar(&a.Salt, "admin.salt", a.Salt, "Salt combined with the password before hashing")
	fs.StringVar(&a.JWTSecret, "admin.jwt-secret", a.JWTSecret, "HMAC secret used to sign admin bearer tokens")
	fs.DurationVar(&a.JWTExpiry, "admin.jwt-expiry", a.JWTExpiry, "Admin bearer token lifetime")
}
