package boot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/heavensgate/vpncore/pkg/config"
	"github.com/heavensgate/vpncore/pkg/options"
)

// installFakeWGTool writes an executable wg shell script answering genkey
// onto a directory prepended to PATH, so New's keygen.NewCLIKeyTool() never
// shells out to a real wg binary.
func installFakeWGTool(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake wg CLI is a POSIX shell script")
	}

	dir := t.TempDir()
	script := "#!/bin/sh\ncase \"$1\" in\n  genkey) echo boot-test-private-key ;;\n  pubkey) read priv; echo boot-test-public-key ;;\n  genpsk) echo boot-test-psk ;;\n  *) exit 1 ;;\nesac\n"
	if err := os.WriteFile(filepath.Join(dir, "wg"), []byte(script), 0755); err != nil {
		t.Fatalf("writing fake wg: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// fakeXrayPanel stands in for a real 3x-ui/Xray panel's admin API: it
// accepts any login and replies success on every inbound call New touches.
func fakeXrayPanel(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(rw).Encode(map[string]any{"success": true})
		default:
			_ = json.NewEncoder(rw).Encode(map[string]any{"success": true})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T, xrayHost string, xrayPort int) *config.Config {
	t.Helper()
	return &config.Config{
		Admin: &options.AdminOptions{Username: "root", JWTSecret: "s"},
		DB:    &options.DBOptions{Path: filepath.Join(t.TempDir(), "vpncore.db")},
		Log:   &options.LogOptions{},
		Core:  options.NewCoreOptions(),
		WireGuard: &options.WireGuardOptions{
			Path:         filepath.Join(t.TempDir(), "wg0.conf"),
			IP:           "10.10.10",
			IPMask:       24,
			EndpointIP:   "203.0.113.1",
			EndpointPort: 51820,
		},
		Xray: &options.XrayOptions{
			Host:     xrayHost,
			Port:     xrayPort,
			Username: "admin",
			Password: "admin",
		},
	}
}

func TestNewAssemblesWithoutXray(t *testing.T) {
	installFakeWGTool(t)
	cfg := newTestConfig(t, "", 0)

	b, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	if b.Xray != nil {
		t.Error("Xray = non-nil, want nil when xray.host is empty")
	}
	if b.Store == nil || b.IPQueue == nil || b.WGHub == nil || b.Dispatcher == nil {
		t.Error("New() left a core component nil")
	}
	if b.Connection == nil || b.Interval == nil {
		t.Error("New() left an observer nil")
	}
}

func TestNewDialsXrayWhenConfigured(t *testing.T) {
	installFakeWGTool(t)
	srv := fakeXrayPanel(t)

	host, portStr, ok := strings.Cut(strings.TrimPrefix(srv.URL, "http://"), ":")
	if !ok {
		t.Fatalf("could not split host:port from %q", srv.URL)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port %q: %v", portStr, err)
	}

	// Dial's https-upgrade heuristic only backs off when the host already
	// carries an explicit scheme, so the fake panel's plain-HTTP server
	// survives New's hardcoded xray.Dial call.
	cfg := newTestConfig(t, "http://"+host, port)

	b, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	if b.Xray == nil {
		t.Error("Xray = nil, want a dialed worker when xray.host is set")
	}
}
