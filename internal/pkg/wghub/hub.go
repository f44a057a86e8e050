package wghub

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HappyLadySauce/errors"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	wireguardfile "github.com/heavensgate/vpncore/internal/pkg/wireguard"
)

// Hub is the WGHub component of §4.2: an in-memory mirror of one interface
// config file, keyed by peer public key, with a write-then-sync contract
// serialised by a per-hub lock covering the in-memory model, the file, and
// the sync call (§5).
type Hub struct {
	mu   sync.Mutex
	path string
	iface string
	isAmnezia bool
	autoSync  bool // false in tests; caller must call SyncConfig explicitly

	config   *ServerConfig
	byPubKey map[string]*PeerBlock
}

// Option configures New.
type Option func(*Hub)

// WithAutoSync overrides the default auto_sync=true behaviour; tests pass
// WithAutoSync(false) and call SyncConfig explicitly (§4.2).
func WithAutoSync(enabled bool) Option {
	return func(h *Hub) { h.autoSync = enabled }
}

// New loads path, parses its current contents, and returns a ready Hub. The
// interface name is derived from the file's basename, matching the teacher's
// own convention (wg0.conf → wg0).
func New(path string, isAmnezia bool, opts ...Option) (*Hub, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.WithCode(code.ErrWGServerConfigParseFailed, "reading %s: %v", path, err)
		}
		data = nil
	}

	config := ParseServerConfig(data)
	h := &Hub{
		path:      path,
		iface:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		isAmnezia: isAmnezia,
		autoSync:  true,
		config:    config,
		byPubKey:  make(map[string]*PeerBlock, len(config.Peers)),
	}
	for _, p := range config.Peers {
		if p != nil && p.PublicKey != "" {
			h.byPubKey[p.PublicKey] = p
		}
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// AddPeer implements add_peer(peer): a new managed stanza with a header
// comment, PublicKey, PresharedKey, and AllowedIPs=<ip>/32. Adding a peer
// whose public key already exists is an error.
func (h *Hub) AddPeer(ctx context.Context, name, publicKey, presharedKey, ip string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byPubKey[publicKey]; exists {
		return errors.WithCode(code.ErrWGPeerAlreadyExists, "peer with public key %q already present", publicKey)
	}

	peer := &PeerBlock{
		Comment:      "# " + name,
		PublicKey:    publicKey,
		PresharedKey: presharedKey,
		AllowedIPs:   ip + "/32",
		Managed:      true,
	}
	h.config.Peers = append(h.config.Peers, peer)
	h.byPubKey[publicKey] = peer

	return h.writeThenSync(ctx)
}

// RenderedConfig returns the current in-memory interface config as it would
// be written to disk, for read-only diagnostic callers.
func (h *Hub) RenderedConfig() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return RenderServerConfig(h.config)
}

// EnablePeer implements enable_peer(peer): un-comment the stanza keyed by
// public key. Enabling a non-existent peer is an error.
func (h *Hub) EnablePeer(ctx context.Context, publicKey string) error {
	return h.setDisabled(ctx, publicKey, false)
}

// DisablePeer implements disable_peer(peer).
func (h *Hub) DisablePeer(ctx context.Context, publicKey string) error {
	return h.setDisabled(ctx, publicKey, true)
}

func (h *Hub) setDisabled(ctx context.Context, publicKey string, disabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	peer, ok := h.byPubKey[publicKey]
	if !ok {
		return errors.WithCode(code.ErrWGPeerNotFound, "peer with public key %q not found", publicKey)
	}
	peer.Disabled = disabled
	return h.writeThenSync(ctx)
}

// DeletePeer implements delete_peer(peer). Deleting a non-existent peer is
// an error.
func (h *Hub) DeletePeer(ctx context.Context, publicKey string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.byPubKey[publicKey]; !ok {
		return errors.WithCode(code.ErrWGPeerNotFound, "peer with public key %q not found", publicKey)
	}
	delete(h.byPubKey, publicKey)

	filtered := h.config.Peers[:0]
	for _, p := range h.config.Peers {
		if p.PublicKey != publicKey {
			filtered = append(filtered, p)
		}
	}
	h.config.Peers = filtered

	return h.writeThenSync(ctx)
}

// EnablePeers is the batch variant of EnablePeer: atomic with respect to the
// write-then-sync step (§4.2) — all toggles land in memory before the file
// is written and synced once.
func (h *Hub) EnablePeers(ctx context.Context, publicKeys []string) error {
	return h.batchSetDisabled(ctx, publicKeys, false)
}

// DisablePeers is the batch variant of DisablePeer.
func (h *Hub) DisablePeers(ctx context.Context, publicKeys []string) error {
	return h.batchSetDisabled(ctx, publicKeys, true)
}

func (h *Hub) batchSetDisabled(ctx context.Context, publicKeys []string, disabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, pk := range publicKeys {
		peer, ok := h.byPubKey[pk]
		if !ok {
			return errors.WithCode(code.ErrWGPeerNotFound, "peer with public key %q not found", pk)
		}
		peer.Disabled = disabled
	}
	return h.writeThenSync(ctx)
}

// writeThenSync serialises the in-memory model to disk and, unless
// autoSync is false, reconciles the kernel interface. Caller must hold h.mu.
func (h *Hub) writeThenSync(ctx context.Context) error {
	lock, err := wireguardfile.AcquireFileLock(h.path + ".lock")
	if err != nil {
		return errors.WithCode(code.ErrWGLockAcquireFailed, "acquiring lock for %s: %v", h.path, err)
	}
	defer func() { _ = lock.Release() }()

	content := RenderServerConfig(h.config)
	if err := wireguardfile.AtomicWriteFile(h.path, content, 0600); err != nil {
		return errors.WithCode(code.ErrWGServerConfigWriteFailed, "writing %s: %v", h.path, err)
	}
	klog.V(2).InfoS("wghub config written", "path", h.path, "interface", h.iface)

	if !h.autoSync {
		return nil
	}
	return h.SyncConfig(ctx)
}
