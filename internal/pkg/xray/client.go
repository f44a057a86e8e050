// Package xray implements §4.3's XrayWorker: a stateful HTTP client against a
// remote XRay (3x-ui-compatible) admin API. There is no off-the-shelf Go SDK
// for this API anywhere in the reference corpus (see DESIGN.md), so this is a
// direct net/http client grounded on original_source/core/xray/xray_worker.py.
package xray

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/HappyLadySauce/errors"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/model"
)

const requestTimeout = 15 * time.Second

// Peer is the subset of peer data XrayWorker needs, decoupled from the
// storage layer's model so this package has no import-cycle dependency on
// internal/store.
type Peer struct {
	ID        string
	Name      string
	Status    string
	Flow      string
	InboundID int
}

// Worker is the XrayWorker component: a logged-in session against one XRay
// panel. Construction fails fatally if login fails (§4.3).
type Worker struct {
	baseURL  string
	username string
	password string

	mu     sync.Mutex
	client *http.Client
}

// Dial logs into host:port[/webPath]/ with username/password and returns a
// ready Worker. Failure to log in is a fatal error per §4.3.
func Dial(ctx context.Context, host, port, webPath, username, password string) (*Worker, error) {
	base := fmt.Sprintf("%s:%s", host, port)
	if webPath != "" {
		base = base + "/" + strings.Trim(webPath, "/")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.WithCode(code.ErrXrayLoginFailed, "building cookie jar: %v", err)
	}

	w := &Worker{
		baseURL:  strings.TrimRight(base, "/"),
		username: username,
		password: password,
		client:   &http.Client{Jar: jar, Timeout: requestTimeout},
	}

	if err := w.login(ctx); err != nil {
		return nil, errors.WithCode(code.ErrXrayLoginFailed, "logging into xray panel at %s: %v", w.baseURL, err)
	}
	klog.V(2).InfoS("xray panel login succeeded", "baseURL", w.baseURL)
	return w, nil
}

func (w *Worker) login(ctx context.Context) error {
	form := url.Values{"username": {w.username}, "password": {w.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("login rejected: %s", out.Msg)
	}
	return nil
}

func (w *Worker) relogin(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.login(ctx)
}

func peerToClient(p Peer) clientRecord {
	return clientRecord{
		ID:        p.ID,
		Email:     p.Name,
		Enable:    p.Status == model.PeerStatusConnected || p.Status == model.PeerStatusDisconnected,
		Flow:      p.Flow,
		InboundID: p.InboundID,
	}
}

// AddPeers implements add_peers(inbound_id, [peer], expiry?): translates each
// peer to a client record and POSTs them to the inbound. Warns (does not
// fail) when a peer's recorded inbound id doesn't match inboundID.
func (w *Worker) AddPeers(ctx context.Context, inboundID int, peers []Peer, expiry time.Time) error {
	clients := make([]clientRecord, 0, len(peers))
	for _, p := range peers {
		if p.InboundID != inboundID {
			klog.Warningf("xray peer %s inbound mismatch: %d != %d", p.ID, p.InboundID, inboundID)
		}
		c := peerToClient(p)
		if !expiry.IsZero() {
			c.ExpiryTime = expiry.UnixMilli()
		}
		clients = append(clients, c)
	}

	body := addClientsRequest{InboundID: inboundID, Settings: clientSettings{Clients: clients}}
	_, err := w.post(ctx, "/panel/api/inbounds/addClient", body)
	if err != nil {
		return err
	}
	klog.V(2).InfoS("xray peers added", "inboundID", inboundID, "count", len(clients))
	return nil
}

// UpdatePeer implements update_peer(peer, expiry?): PATCH-equivalent update
// keyed by peer uuid.
func (w *Worker) UpdatePeer(ctx context.Context, p Peer, expiry time.Time) error {
	c := peerToClient(p)
	if !expiry.IsZero() {
		c.ExpiryTime = expiry.UnixMilli()
	}
	path := fmt.Sprintf("/panel/api/inbounds/updateClient/%s", c.ID)
	_, err := w.post(ctx, path, clientSettings{Clients: []clientRecord{c}})
	if err != nil {
		return err
	}
	klog.V(2).InfoS("xray peer updated", "peerID", p.ID)
	return nil
}

// DeletePeer implements delete_peer(peer).
func (w *Worker) DeletePeer(ctx context.Context, p Peer) error {
	path := fmt.Sprintf("/panel/api/inbounds/%d/delClient/%s", p.InboundID, p.ID)
	_, err := w.post(ctx, path, nil)
	if err != nil {
		return err
	}
	klog.V(2).InfoS("xray peer deleted", "peerID", p.ID)
	return nil
}

// EnablePeer flips the enabled flag via update.
func (w *Worker) EnablePeer(ctx context.Context, p Peer) error {
	p.Status = model.PeerStatusConnected
	return w.UpdatePeer(ctx, p, time.Time{})
}

// DisablePeer flips the enabled flag via update.
func (w *Worker) DisablePeer(ctx context.Context, p Peer) error {
	p.Status = model.PeerStatusBlocked
	return w.UpdatePeer(ctx, p, time.Time{})
}

// IsConnected queries the "online clients" list and compares against
// peer.Name. On JSON decode failure it assumes the session expired,
// re-logs in, and returns false for this call (§4.3).
func (w *Worker) IsConnected(ctx context.Context, p Peer) bool {
	resp, err := w.get(ctx, "/panel/api/inbounds/onlines")
	if err != nil {
		klog.Errorf("xray online-clients query failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	var out onlineClientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		klog.Warningf("xray online-clients decode failed, assuming session expired: %v", err)
		if rerr := w.relogin(ctx); rerr != nil {
			klog.Errorf("xray relogin failed: %v", rerr)
		}
		return false
	}
	for _, name := range out.Obj {
		if name == p.Name {
			return true
		}
	}
	return false
}

// GetConnectionString implements get_connection_string(peer): fetches the
// inbound's public settings and builds a vless:// URI.
func (w *Worker) GetConnectionString(ctx context.Context, p Peer) (string, error) {
	resp, err := w.get(ctx, fmt.Sprintf("/panel/api/inbounds/get/%d", p.InboundID))
	if err != nil {
		return "", errors.WithCode(code.ErrXrayAPIUnavailable, "fetching inbound %d: %v", p.InboundID, err)
	}
	defer resp.Body.Close()

	var inb inboundResponse
	if err := json.NewDecoder(resp.Body).Decode(&inb); err != nil {
		return "", errors.WithCode(code.ErrXrayAPIUnavailable, "decoding inbound %d: %v", p.InboundID, err)
	}
	if !inb.Success {
		return "", errors.WithCode(code.ErrXrayInboundNotFound, "inbound %d not found", p.InboundID)
	}

	var reality realitySettings
	if err := json.Unmarshal([]byte(inb.Obj.StreamSettings), &reality); err != nil {
		return "", errors.WithCode(code.ErrXrayAPIUnavailable, "parsing stream settings for inbound %d: %v", p.InboundID, err)
	}

	host := strings.NewReplacer("https://", "", "http://", "", "www.", "").Replace(w.baseURL)
	settings := reality.RealitySettings.Settings
	serverName := firstOrEmpty(reality.RealitySettings.ServerNames)
	shortID := firstOrEmpty(reality.RealitySettings.ShortIDs)

	return fmt.Sprintf(
		"vless://%s@%s:%d?type=tcp&security=reality&pbk=%s&fp=%s&sni=%s&sid=%s&spx=%%2F&flow=%s#%s-%s",
		p.ID, host, inb.Obj.Port,
		settings.PublicKey, settings.Fingerprint, serverName, shortID, p.Flow,
		url.QueryEscape(inb.Obj.Remark), url.QueryEscape(p.Name),
	), nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func (w *Worker) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+path, reader)
	if err != nil {
		return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "calling %s: %v", path, err)
	}

	var out apiResponse
	bodyBytes := new(bytes.Buffer)
	_, _ = bodyBytes.ReadFrom(resp.Body)
	resp.Body.Close()
	if err := json.Unmarshal(bodyBytes.Bytes(), &out); err != nil {
		klog.Warningf("xray %s decode failed, assuming session expired: %v", path, err)
		if rerr := w.relogin(ctx); rerr != nil {
			klog.Errorf("xray relogin failed: %v", rerr)
		}
		return nil, errors.WithCode(code.ErrXrayAuthExpired, "%s returned a non-JSON response: %v", path, err)
	}
	if !out.Success {
		return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "%s rejected: %s", path, out.Msg)
	}
	return resp, nil
}

func (w *Worker) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path, nil)
	if err != nil {
		return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "building request: %v", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, errors.WithCode(code.ErrXrayAPIUnavailable, "calling %s: %v", path, err)
	}
	return resp, nil
}
