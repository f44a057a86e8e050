// Package docs vpncore Administrative API.
//
// vpncore is the access-control plane for a WireGuard + Xray VPN fleet:
// user lifecycle, peer provisioning, and expiry enforcement.
//
//	Schemes: http, https
//	Host: localhost:8080
//	BasePath: /v1
//	Version: 1.0.0
//	License: MIT https://opensource.org/licenses/MIT
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
