package xray

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestWorker(t *testing.T, handler http.HandlerFunc) (*Worker, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, port := splitHostPort(t, srv.URL)
	w, err := Dial(context.Background(), host, port, "", "admin", "admin")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return w, srv
}

// splitHostPort returns a host carrying the explicit "http://" scheme so
// Dial's https-upgrade heuristic leaves it alone, matching a plain-HTTP test
// server instead of the real panel's https default.
func splitHostPort(t *testing.T, rawURL string) (host, port string) {
	t.Helper()
	hostPort := strings.TrimPrefix(rawURL, "http://")
	parts := strings.SplitN(hostPort, ":", 2)
	if len(parts) != 2 {
		t.Fatalf("could not split host:port from %q", rawURL)
	}
	return "http://" + parts[0], parts[1]
}

func TestDialLoginSuccess(t *testing.T) {
	_, _ = newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
			return
		}
		rw.WriteHeader(http.StatusNotFound)
	})
}

func TestDialLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		json.NewEncoder(rw).Encode(apiResponse{Success: false, Msg: "bad credentials"})
	}))
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	if _, err := Dial(context.Background(), host, port, "", "admin", "wrong"); err == nil {
		t.Error("Dial() error = nil, want the rejected login to be fatal")
	}
}

func TestAddPeers(t *testing.T) {
	var captured addClientsRequest
	w, _ := newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
		case "/panel/api/inbounds/addClient":
			_ = json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})

	peers := []Peer{{ID: "uuid-1", Name: "alice", Flow: "xtls-rprx-vision", InboundID: 1}}
	if err := w.AddPeers(context.Background(), 1, peers, time.Time{}); err != nil {
		t.Fatalf("AddPeers() error = %v", err)
	}
	if len(captured.Settings.Clients) != 1 || captured.Settings.Clients[0].ID != "uuid-1" {
		t.Errorf("captured request = %+v, want one client with id uuid-1", captured)
	}
}

func TestIsConnected(t *testing.T) {
	w, _ := newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
		case "/panel/api/inbounds/onlines":
			json.NewEncoder(rw).Encode(onlineClientsResponse{Success: true, Obj: []string{"alice", "bob"}})
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})

	if !w.IsConnected(context.Background(), Peer{Name: "alice"}) {
		t.Error("IsConnected(alice) = false, want true")
	}
	if w.IsConnected(context.Background(), Peer{Name: "carol"}) {
		t.Error("IsConnected(carol) = true, want false")
	}
}

func TestGetConnectionString(t *testing.T) {
	streamSettings := `{"realitySettings":{"settings":{"publicKey":"pbk123","fingerprint":"chrome"},"serverNames":["example.com"],"shortIds":["ab12"]}}`
	w, _ := newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/login":
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
		case strings.HasPrefix(r.URL.Path, "/panel/api/inbounds/get/"):
			json.NewEncoder(rw).Encode(inboundResponse{
				Success: true,
				Obj: inboundRecord{
					Remark:         "vpncore",
					Port:           443,
					StreamSettings: streamSettings,
				},
			})
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})

	conn, err := w.GetConnectionString(context.Background(), Peer{ID: "uuid-1", Name: "alice", Flow: "xtls-rprx-vision", InboundID: 7})
	if err != nil {
		t.Fatalf("GetConnectionString() error = %v", err)
	}
	if !strings.HasPrefix(conn, "vless://uuid-1@") {
		t.Errorf("connection string = %q, want a vless:// uri keyed by the peer id", conn)
	}
	if !strings.Contains(conn, "pbk=pbk123") || !strings.Contains(conn, "sni=example.com") {
		t.Errorf("connection string = %q, missing reality parameters", conn)
	}
}

func TestAddPeersAuthExpiredTriggersRelogin(t *testing.T) {
	var loginCount int
	w, _ := newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			loginCount++
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
		case "/panel/api/inbounds/addClient":
			// XRay returning an empty/non-JSON body is interpreted as the
			// admin session having expired.
			rw.Write([]byte(""))
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})

	peers := []Peer{{ID: "uuid-1", Name: "alice", InboundID: 1}}
	err := w.AddPeers(context.Background(), 1, peers, time.Time{})
	if err == nil {
		t.Fatal("AddPeers() error = nil, want an error on AuthExpired")
	}
	if loginCount != 2 {
		t.Errorf("loginCount = %d, want 2 (initial Dial login + relogin on AuthExpired)", loginCount)
	}
}

func TestDeletePeer(t *testing.T) {
	var calledPath string
	w, _ := newTestWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			json.NewEncoder(rw).Encode(apiResponse{Success: true})
			return
		}
		calledPath = r.URL.Path
		json.NewEncoder(rw).Encode(apiResponse{Success: true})
	})

	if err := w.DeletePeer(context.Background(), Peer{ID: "uuid-9", InboundID: 3}); err != nil {
		t.Fatalf("DeletePeer() error = %v", err)
	}
	if calledPath != "/panel/api/inbounds/3/delClient/uuid-9" {
		t.Errorf("calledPath = %q, want /panel/api/inbounds/3/delClient/uuid-9", calledPath)
	}
}
