// Package boot assembles §2's components in dependency order: Storage,
// then IPQueue (seeded from Storage's recorded allocations), then WGHub
// (parsed from the on-disk interface file), then an authenticated
// XrayWorker session, then PeerOps, then the two observers. Boot is a
// single non-singleton type — the admin HTTP surface and the CLI
// entrypoint both receive the assembled *Boot by value, never a global
// accessor, per §2's explicit redesign away from the teacher's
// package-level router/store singletons.
package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/HappyLadySauce/errors"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/ipqueue"
	"github.com/heavensgate/vpncore/internal/pkg/keygen"
	"github.com/heavensgate/vpncore/internal/pkg/observer"
	"github.com/heavensgate/vpncore/internal/pkg/peerops"
	"github.com/heavensgate/vpncore/internal/pkg/wghub"
	"github.com/heavensgate/vpncore/internal/pkg/xray"
	"github.com/heavensgate/vpncore/internal/store"
	"github.com/heavensgate/vpncore/internal/store/sqlite"
	"github.com/heavensgate/vpncore/pkg/config"
)

// Boot is the assembled set of handles every caller (admin HTTP surface,
// observer loops, keygen subcommand) needs.
type Boot struct {
	Config     *config.Config
	Store      store.Factory
	IPQueue    *ipqueue.Queue
	WGHub      *wghub.Hub
	Xray       *xray.Worker
	Dispatcher *peerops.Dispatcher

	Connection *observer.ConnectionObserver
	Interval   *observer.IntervalObserver
}

// New constructs every component in dependency order. It dials the Xray
// admin API eagerly (§4.3: the worker is opened, not lazily created) — a
// failure there is fatal to Boot, matching the chat-bot original's
// behavior of refusing to start without a working dataplane session.
func New(ctx context.Context, cfg *config.Config) (*Boot, error) {
	keyTool := keygen.NewCLIKeyTool()

	st, err := sqlite.New(cfg.DB.Path, keyTool)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	usedIPs, err := st.WireguardPeers().ListUsedIPs(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("listing used ips: %w", err)
	}
	queue, err := ipqueue.New(cfg.WireGuard.Subnet(), usedIPs)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("building ip queue: %w", err)
	}

	// The interface is served by the awg toolchain whenever the config
	// carries Amnezia jitter parameters; otherwise by stock wg.
	usesAmnezia := cfg.WireGuard.Junk != ""
	hub, err := wghub.New(cfg.WireGuard.Path, usesAmnezia, wghub.WithAutoSync(true))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("loading wireguard interface config: %w", err)
	}

	var xrayWorker *xray.Worker
	if cfg.Xray.Host != "" {
		xrayWorker, err = xray.Dial(ctx, cfg.Xray.Host, fmt.Sprintf("%d", cfg.Xray.Port), cfg.Xray.WebPath, cfg.Xray.Username, cfg.Xray.Password)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("dialing xray admin api: %w", err)
		}
	} else {
		klog.Warningf("xray.host is empty, xray peer kind will be unavailable")
	}

	wgBackend := &peerops.WGHubBackend{Hub: hub}
	var xrayBackend peerops.Backend
	if xrayWorker != nil {
		xrayBackend = &peerops.XrayBackend{Worker: xrayWorker}
	}
	dispatcher := peerops.New(wgBackend, wgBackend, xrayBackend, st)

	connCfg := observer.ConnectionConfig{
		ListenTimer:              cfg.Core.ConnectionListenTimer,
		ConnectedOnlyListenTimer: cfg.Core.ConnectionConnectedOnlyTimer,
		UpdateTimer:              cfg.Core.ConnectionUpdateTimer,
		ActiveFor:                cfg.Core.PeerActiveTime,
	}
	connObserver := observer.NewConnectionObserver(connCfg, st, hub, xrayWorker)
	// Daily expiration sweep runs at 03:00, matching the original's cron-like
	// scheduling away from peak usage hours.
	intervalObserver := observer.NewIntervalObserver(st, dispatcher, 3*time.Hour)

	return &Boot{
		Config:     cfg,
		Store:      st,
		IPQueue:    queue,
		WGHub:      hub,
		Xray:       xrayWorker,
		Dispatcher: dispatcher,
		Connection: connObserver,
		Interval:   intervalObserver,
	}, nil
}

// Run starts both observer loops and blocks until ctx is cancelled or one
// of them fails unrecoverably.
func (b *Boot) Run(ctx context.Context) error {
	errs := make(chan error, 2)
	go func() { errs <- b.Connection.Run(ctx) }()
	go func() { errs <- b.Interval.Run(ctx) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		if err != nil {
			return errors.WithCode(code.ErrUnknown, "observer loop exited: %v", err)
		}
		return nil
	}
}

// Close releases Storage's underlying connection.
func (b *Boot) Close() error {
	return b.Store.Close()
}
