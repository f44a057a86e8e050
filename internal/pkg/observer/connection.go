package observer

import (
	"context"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/pkg/wghub"
	"github.com/heavensgate/vpncore/internal/pkg/xray"
	"github.com/heavensgate/vpncore/internal/store"
)

// ConnectionEvent is the payload of the Connected/Disconnected observers:
// the owning user plus the peer that changed state.
type ConnectionEvent struct {
	User *model.User
	Peer *model.AnyPeerRecord
}

// TimerEvent is the payload of the Timer observer. Disconnect distinguishes
// a same-cycle expiry-warning trigger (false) from an actual forced
// disconnect (true) — §4.5.2's resolved Open Question (a): only the
// disconnect path fires, never both in the same cycle.
type TimerEvent struct {
	User       *model.User
	Peer       *model.AnyPeerRecord
	Disconnect bool
}

type rosterEntry struct {
	user  *model.User
	peers []*model.AnyPeerRecord
}

// ConnectionConfig carries the timers of §4.5.2/§6, all configurable via the
// [Core] config section.
type ConnectionConfig struct {
	ListenTimer             time.Duration
	ConnectedOnlyListenTimer time.Duration
	UpdateTimer             time.Duration
	ActiveFor               time.Duration
}

// ConnectionObserver implements §4.5.2: periodic liveness probing of every
// live peer, emitting Connected/Disconnected/Timer events and mirroring
// state transitions into Storage.
type ConnectionObserver struct {
	cfg   ConnectionConfig
	store store.Factory
	wg    *wghub.Hub
	xray  *xray.Worker

	Connected    Observer[ConnectionEvent]
	Disconnected Observer[ConnectionEvent]
	Timer        Observer[TimerEvent]
	Startup      StartupObserver

	rosterMu sync.Mutex
	roster   []rosterEntry
}

// NewConnectionObserver builds an observer; call RefreshRoster once before
// Run to seed the initial roster (Run also refreshes on its own timer).
func NewConnectionObserver(cfg ConnectionConfig, factory store.Factory, wg *wghub.Hub, xrayWorker *xray.Worker) *ConnectionObserver {
	return &ConnectionObserver{cfg: cfg, store: factory, wg: wg, xray: xrayWorker}
}

// Run starts the refresh loop and both listen loops, blocking until ctx is
// cancelled or one of the loops returns an unrecoverable error.
func (c *ConnectionObserver) Run(ctx context.Context) error {
	if err := c.RefreshRoster(ctx); err != nil {
		return err
	}
	c.Startup.Trigger(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.refreshLoop(ctx) })
	g.Go(func() error { return c.listenLoop(ctx, c.cfg.ListenTimer, false) })
	g.Go(func() error { return c.listenLoop(ctx, c.cfg.ConnectedOnlyListenTimer, true) })
	return g.Wait()
}

func (c *ConnectionObserver) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.UpdateTimer)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.RefreshRoster(ctx); err != nil {
				klog.Errorf("roster refresh failed: %v", err)
			}
		}
	}
}

// RefreshRoster re-queries Storage for the full user/peer roster, replacing
// the in-memory snapshot atomically.
func (c *ConnectionObserver) RefreshRoster(ctx context.Context) error {
	users, err := c.store.Users().List(ctx)
	if err != nil {
		return err
	}

	next := make([]rosterEntry, 0, len(users))
	for _, u := range users {
		var peers []*model.AnyPeerRecord

		wgPeers, err := c.store.WireguardPeers().ListByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		for _, p := range wgPeers {
			wgCopy := p.WireguardPeer
			peers = append(peers, &model.AnyPeerRecord{Peer: p.Peer, Wireguard: &wgCopy})
		}

		xrayPeers, err := c.store.XrayPeers().ListByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		for _, p := range xrayPeers {
			xCopy := p.XrayPeer
			peers = append(peers, &model.AnyPeerRecord{Peer: p.Peer, Xray: &xCopy})
		}

		next = append(next, rosterEntry{user: u, peers: peers})
	}

	c.rosterMu.Lock()
	c.roster = next
	c.rosterMu.Unlock()
	klog.V(2).InfoS("roster refreshed", "users", len(next))
	return nil
}

func (c *ConnectionObserver) listenLoop(ctx context.Context, interval time.Duration, connectedOnly bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.checkAll(ctx, connectedOnly)
		}
	}
}

func (c *ConnectionObserver) checkAll(ctx context.Context, connectedOnly bool) {
	c.rosterMu.Lock()
	snapshot := make([]rosterEntry, len(c.roster))
	copy(snapshot, c.roster)
	c.rosterMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range snapshot {
		entry := entry
		if entry.user.IsBlocked() {
			continue
		}
		for _, peer := range entry.peers {
			peer := peer
			if peer.Status == model.PeerStatusTimeExpired || peer.Status == model.PeerStatusBlocked {
				continue
			}
			if connectedOnly && peer.Status != model.PeerStatusConnected {
				continue
			}
			warn := !connectedOnly
			g.Go(func() error {
				c.checkConnection(gctx, entry.user, peer, warn)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// checkConnection mirrors __check_connection: timer expiry takes priority
// over liveness, and only one of the timer/liveness paths fires per cycle.
func (c *ConnectionObserver) checkConnection(ctx context.Context, user *model.User, peer *model.AnyPeerRecord, warn bool) bool {
	now := time.Now()
	if peer.ActiveUntil != nil && peer.Status == model.PeerStatusConnected {
		remaining := peer.ActiveUntil.Sub(now)
		if remaining <= 0 {
			c.Timer.Trigger(ctx, TimerEvent{User: user, Peer: peer, Disconnect: true})
			c.emitTimeoutDisconnect(ctx, user, peer)
			return false
		}
		if remaining <= 15*time.Minute && warn {
			c.Timer.Trigger(ctx, TimerEvent{User: user, Peer: peer, Disconnect: false})
		}
	}

	alive := c.probe(ctx, peer)
	if alive {
		if peer.Status == model.PeerStatusDisconnected {
			c.emitConnect(ctx, user, peer)
		}
		return true
	}
	if peer.Status == model.PeerStatusConnected {
		c.emitDisconnect(ctx, user, peer)
	}
	return false
}

func (c *ConnectionObserver) probe(ctx context.Context, peer *model.AnyPeerRecord) bool {
	switch peer.Kind {
	case model.PeerKindWireguard, model.PeerKindAmneziaWireguard:
		if peer.Wireguard == nil {
			return false
		}
		return pingOnce(ctx, peer.Wireguard.SharedIP)
	case model.PeerKindXray:
		if peer.Xray == nil || c.xray == nil {
			return false
		}
		return c.xray.IsConnected(ctx, xray.Peer{ID: peer.ID, Name: peer.Name, InboundID: peer.Xray.InboundID})
	default:
		return false
	}
}

func pingOnce(ctx context.Context, addr string) bool {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		klog.Warningf("ping setup failed for %s: %v", addr, err)
		return false
	}
	pinger.Count = 1
	pinger.Timeout = 2 * time.Second
	pinger.SetPrivileged(false)
	if err := pinger.RunWithContext(ctx); err != nil {
		klog.Warningf("ping failed for %s: %v", addr, err)
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

func (c *ConnectionObserver) emitConnect(ctx context.Context, user *model.User, peer *model.AnyPeerRecord) {
	newTimer := time.Now().Add(c.cfg.ActiveFor)
	status := model.PeerStatusConnected
	if err := c.updatePeerStatus(ctx, peer, store.UpdatePeerFields{Status: &status, ActiveUntil: ptrToPtr(&newTimer)}); err != nil {
		klog.Errorf("failed to persist connect for peer %s: %v", peer.ID, err)
	}
	if err := c.store.Users().SetStatus(ctx, user.ID, model.UserStatusConnected); err != nil {
		klog.Errorf("failed to persist user connect for %s: %v", user.ID, err)
	}
	peer.Status = status
	peer.ActiveUntil = &newTimer
	c.Connected.Trigger(ctx, ConnectionEvent{User: user, Peer: peer})
}

func (c *ConnectionObserver) emitDisconnect(ctx context.Context, user *model.User, peer *model.AnyPeerRecord) {
	status := model.PeerStatusDisconnected
	if err := c.updatePeerStatus(ctx, peer, store.UpdatePeerFields{Status: &status}); err != nil {
		klog.Errorf("failed to persist disconnect for peer %s: %v", peer.ID, err)
	}
	peer.Status = status
	if !c.anyConnected(user.ID) {
		if err := c.store.Users().SetStatus(ctx, user.ID, model.UserStatusDisconnected); err != nil {
			klog.Errorf("failed to persist user disconnect for %s: %v", user.ID, err)
		}
	}
	c.Disconnected.Trigger(ctx, ConnectionEvent{User: user, Peer: peer})
}

func (c *ConnectionObserver) emitTimeoutDisconnect(ctx context.Context, user *model.User, peer *model.AnyPeerRecord) {
	status := model.PeerStatusTimeExpired
	if err := c.updatePeerStatus(ctx, peer, store.UpdatePeerFields{Status: &status}); err != nil {
		klog.Errorf("failed to persist timeout for peer %s: %v", peer.ID, err)
	}
	peer.Status = status

	switch peer.Kind {
	case model.PeerKindWireguard, model.PeerKindAmneziaWireguard:
		if c.wg != nil && peer.Wireguard != nil {
			if err := c.wg.DisablePeer(ctx, peer.Wireguard.PublicKey); err != nil {
				klog.Errorf("failed to disable wghub peer %s: %v", peer.ID, err)
			}
		}
	case model.PeerKindXray:
		if c.xray != nil && peer.Xray != nil {
			if err := c.xray.DisablePeer(ctx, xray.Peer{ID: peer.ID, Name: peer.Name, Flow: peer.Xray.Flow, InboundID: peer.Xray.InboundID}); err != nil {
				klog.Errorf("failed to disable xray peer %s: %v", peer.ID, err)
			}
		}
	}

	if !c.anyConnected(user.ID) {
		if err := c.store.Users().SetStatus(ctx, user.ID, model.UserStatusTimeExpired); err != nil {
			klog.Errorf("failed to persist user expiry for %s: %v", user.ID, err)
		}
	}
	c.Disconnected.Trigger(ctx, ConnectionEvent{User: user, Peer: peer})
}

func (c *ConnectionObserver) anyConnected(userID string) bool {
	c.rosterMu.Lock()
	defer c.rosterMu.Unlock()
	for _, entry := range c.roster {
		if entry.user.ID != userID {
			continue
		}
		for _, p := range entry.peers {
			if p.Status == model.PeerStatusConnected {
				return true
			}
		}
	}
	return false
}

func (c *ConnectionObserver) updatePeerStatus(ctx context.Context, peer *model.AnyPeerRecord, fields store.UpdatePeerFields) error {
	switch peer.Kind {
	case model.PeerKindWireguard, model.PeerKindAmneziaWireguard:
		return c.store.WireguardPeers().Update(ctx, peer.ID, fields)
	case model.PeerKindXray:
		return c.store.XrayPeers().Update(ctx, peer.ID, fields)
	default:
		return nil
	}
}

func ptrToPtr(t *time.Time) **time.Time { return &t }
