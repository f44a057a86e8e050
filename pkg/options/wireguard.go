package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// WireGuardOptions is the [WireguardServer] section of §6. IP is the
// 3-octet subnet prefix (e.g. "10.10.10"); IPMask is the CIDR mask applied
// to it to form the subnet IPQueue draws from, with .0/.1/.255 reserved.
// Junk carries the six whitespace-separated Amnezia jitter parameters,
// fully parsed at load time into JunkS1/JunkS2/JunkH1-H4 rather than left
// as a raw string with a pending TODO.
type WireGuardOptions struct {
	Path         string `json:"path" mapstructure:"path"`
	IP           string `json:"ip" mapstructure:"ip"`
	IPMask       int    `json:"ip-mask" mapstructure:"ip-mask"`
	PrivateKey   string `json:"private-key" mapstructure:"private-key"`
	PublicKey    string `json:"public-key" mapstructure:"public-key"`
	EndpointIP   string `json:"endpoint-ip" mapstructure:"endpoint-ip"`
	EndpointPort int    `json:"endpoint-port" mapstructure:"endpoint-port"`
	DNS          string `json:"dns" mapstructure:"dns"`

	Junk   string `json:"junk" mapstructure:"junk"`
	JunkS1 int    `json:"-" mapstructure:"-"`
	JunkS2 int    `json:"-" mapstructure:"-"`
	JunkH1 int    `json:"-" mapstructure:"-"`
	JunkH2 int    `json:"-" mapstructure:"-"`
	JunkH3 int    `json:"-" mapstructure:"-"`
	JunkH4 int    `json:"-" mapstructure:"-"`
}

func NewWireGuardOptions() *WireGuardOptions {
	return &WireGuardOptions{
		Path:         "/etc/wireguard/wg0.conf",
		IPMask:       24,
		EndpointPort: 51820,
	}
}

func (o *WireGuardOptions) Validate() []error {
	var errs []error
	if strings.TrimSpace(o.Path) == "" {
		errs = append(errs, fmt.Errorf("wireguard.path is required"))
	}
	if strings.TrimSpace(o.IP) == "" {
		errs = append(errs, fmt.Errorf("wireguard.ip is required"))
	}
	if o.IPMask <= 0 || o.IPMask > 32 {
		errs = append(errs, fmt.Errorf("wireguard.ip-mask must be in (0,32]"))
	}
	if strings.TrimSpace(o.EndpointIP) == "" {
		errs = append(errs, fmt.Errorf("wireguard.endpoint-ip is required"))
	}
	if o.EndpointPort <= 0 || o.EndpointPort > 65535 {
		errs = append(errs, fmt.Errorf("wireguard.endpoint-port must be a valid port"))
	}

	if strings.TrimSpace(o.Junk) != "" {
		fields := strings.Fields(o.Junk)
		if len(fields) != 6 {
			errs = append(errs, fmt.Errorf("wireguard.junk must have exactly 6 whitespace-separated values (S1 S2 H1 H2 H3 H4), got %d", len(fields)))
		} else {
			dst := []*int{&o.JunkS1, &o.JunkS2, &o.JunkH1, &o.JunkH2, &o.JunkH3, &o.JunkH4}
			for i, f := range fields {
				v, err := strconv.Atoi(f)
				if err != nil {
					errs = append(errs, fmt.Errorf("wireguard.junk field %d (%q) is not an integer", i+1, f))
					continue
				}
				*dst[i] = v
			}
		}
	}

	return errs
}

func (o *WireGuardOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Path, "wireguard.path", o.Path, "Path to the WireGuard server interface config file, e.g. /etc/wireguard/wg0.conf")
	fs.StringVar(&o.IP, "wireguard.ip", o.IP, "3-octet subnet prefix for client tunnel addresses, e.g. 10.10.10")
	fs.IntVar(&o.IPMask, "wireguard.ip-mask", o.IPMask, "CIDR mask applied to wireguard.ip to form the tunnel subnet")
	fs.StringVar(&o.PrivateKey, "wireguard.private-key", o.PrivateKey, "Server private key")
	fs.StringVar(&o.PublicKey, "wireguard.public-key", o.PublicKey, "Server public key")
	fs.StringVar(&o.EndpointIP, "wireguard.endpoint-ip", o.EndpointIP, "Public endpoint IP advertised to clients")
	fs.IntVar(&o.EndpointPort, "wireguard.endpoint-port", o.EndpointPort, "Public endpoint port advertised to clients")
	fs.StringVar(&o.DNS, "wireguard.dns", o.DNS, "DNS server advertised in generated client configs")
	fs.StringVar(&o.Junk, "wireguard.junk", o.Junk, "Six whitespace-separated Amnezia jitter parameters: S1 S2 H1 H2 H3 H4")
}

// Subnet returns the CIDR the IPQueue draws addresses from, e.g. "10.10.10.0/24".
func (o *WireGuardOptions) Subnet() string {
	return fmt.Sprintf("%s.0/%d", o.IP, o.IPMask)
}
