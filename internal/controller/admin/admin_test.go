package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heavensgate/vpncore/internal/boot"
	"github.com/heavensgate/vpncore/internal/pkg/authz"
	"github.com/heavensgate/vpncore/internal/pkg/ipqueue"
	"github.com/heavensgate/vpncore/internal/pkg/keygen"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/pkg/peerops"
	"github.com/heavensgate/vpncore/internal/pkg/wghub"
	"github.com/heavensgate/vpncore/internal/store/sqlite"
	"github.com/heavensgate/vpncore/pkg/config"
	"github.com/heavensgate/vpncore/pkg/options"
	"github.com/heavensgate/vpncore/pkg/utils/passwd"
)

const testAdminPassword = "correct-horse-battery-staple"

// newTestBoot assembles a *boot.Boot against an on-disk sqlite database and
// a WGHub backed by a file in TempDir with auto-sync disabled, so tests never
// shell out to wg/wg-quick. Xray stays nil — CreateXrayPeer tests assert the
// "not configured" error path instead of standing up a fake panel here.
func newTestBoot(t *testing.T) *boot.Boot {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := sqlite.New(filepath.Join(t.TempDir(), "vpncore.db"), keygen.NewFakeKeyTool())
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	hub, err := wghub.New(filepath.Join(t.TempDir(), "wg0.conf"), false, wghub.WithAutoSync(false))
	if err != nil {
		t.Fatalf("wghub.New() error = %v", err)
	}

	wgBackend := &peerops.WGHubBackend{Hub: hub}
	dispatcher := peerops.New(wgBackend, wgBackend, nil, st)

	queue, err := ipqueue.New("10.10.10.0/24", nil)
	if err != nil {
		t.Fatalf("ipqueue.New() error = %v", err)
	}

	salt, err := passwd.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	hash, err := passwd.HashPassword(testAdminPassword, salt)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cfg := &config.Config{
		Admin: &options.AdminOptions{
			Username:     "root",
			PasswordHash: hash,
			Salt:         salt,
			JWTSecret:    "test-secret",
			JWTExpiry:    time.Hour,
		},
		Core:      &options.CoreOptions{Debug: true},
		WireGuard: options.NewWireGuardOptions(),
		Xray:      options.NewXrayOptions(),
	}

	return &boot.Boot{
		Config:     cfg,
		Store:      st,
		IPQueue:    queue,
		WGHub:      hub,
		Dispatcher: dispatcher,
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *boot.Boot) {
	t.Helper()
	b := newTestBoot(t)
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}
	router, err := NewRouter(b, enforcer)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router, b
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginAndGetToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doRequest(router, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Username: "root",
		Password: testAdminPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login response carries an empty token")
	}
	return resp.Token
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestV1RoutesRejectMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(router, http.MethodGet, "/v1/users", "", nil)
	if rec.Code == http.StatusOK {
		t.Errorf("status = %d, want a rejection without a bearer token", rec.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(router, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Username: "root",
		Password: "wrong",
	})
	if rec.Code == http.StatusOK {
		t.Errorf("status = %d, want a rejection for a wrong password", rec.Code)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAndGetToken(t, router)

	rec := doRequest(router, http.MethodPost, "/v1/users", token, createUserRequest{ID: "alice", Name: "Alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodGet, "/v1/users/alice", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"name":"Alice"`)) {
		t.Errorf("get body = %s, want it to carry name=Alice", rec.Body.String())
	}
}

func TestBanUserDisablesPeers(t *testing.T) {
	router, b := newTestRouter(t)
	token := loginAndGetToken(t, router)

	doRequest(router, http.MethodPost, "/v1/users", token, createUserRequest{ID: "bob", Name: "Bob"})
	rec := doRequest(router, http.MethodPost, "/v1/users/bob/peers/wireguard", token, createWireguardPeerRequest{Name: "laptop"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create peer status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodPost, "/v1/users/bob/ban", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ban status = %d, body = %s", rec.Code, rec.Body.String())
	}

	u, err := b.Store.Users().Get(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if u.Status != model.UserStatusAccountBlocked {
		t.Errorf("Status = %q, want account_blocked", u.Status)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	router, _ := newTestRouter(t)
	// InstrumentHTTP records a request's outcome only after it completes, so
	// the counter for THIS /healthz call is visible on the /metrics scrape
	// that follows it, not on the response to the request that set it.
	doRequest(router, http.MethodGet, "/healthz", "", nil)

	rec := doRequest(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("vpncore_http_requests_total")) {
		t.Errorf("body does not carry the vpncore_http_requests_total metric after prior requests")
	}
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header is empty, want a generated correlation id")
	}
}

func TestDeleteUnknownPeerNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAndGetToken(t, router)

	rec := doRequest(router, http.MethodDelete, "/v1/peers/does-not-exist", token, nil)
	if rec.Code == http.StatusOK {
		t.Errorf("status = %d, want a not-found error for an unknown peer", rec.Code)
	}
}
