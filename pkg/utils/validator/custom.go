package validator

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	v10 "github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*v10.Validate); ok {
		if err := RegisterCustomValidators(v); err != nil {
			panic("failed to register custom validators: " + err.Error())
		}
	}
}

// RegisterCustomValidators registers the struct tags used by config and peer/user models.
func RegisterCustomValidators(v *v10.Validate) error {
	if err := v.RegisterValidation("cidr", validateCIDR); err != nil {
		return err
	}
	if err := v.RegisterValidation("endpoint", validateEndpoint); err != nil {
		return err
	}
	if err := v.RegisterValidation("ipv4", validateIPv4); err != nil {
		return err
	}
	if err := v.RegisterValidation("dnslist", validateDNSList); err != nil {
		return err
	}
	return nil
}

// validateCIDR accepts a single CIDR or a comma-separated list of CIDRs.
func validateCIDR(fl v10.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := netip.ParsePrefix(part); err != nil {
			return false
		}
	}
	return true
}

// validateEndpoint validates a host:port pair.
func validateEndpoint(fl v10.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return false
	}
	host, port := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if host == "" || port == "" {
		return false
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return false
	}
	return true
}

// validateIPv4 validates a bare IPv4 address, without CIDR notation.
func validateIPv4(fl v10.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	ip, err := netip.ParseAddr(value)
	if err != nil {
		return false
	}
	return ip.Is4()
}

// validateDNSList validates a comma-separated list of IPv4/IPv6 addresses.
func validateDNSList(fl v10.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := netip.ParseAddr(part); err != nil {
			return false
		}
	}
	return true
}

// IsReservedWireguardHost reports whether the last octet of a subnet-relative
// host number is one of the reserved addresses {.0, .1, .255}.
func IsReservedWireguardHost(hostOctet int) bool {
	return hostOctet == 0 || hostOctet == 1 || hostOctet == 255
}
