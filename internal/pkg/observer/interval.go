package observer

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/metrics"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/pkg/peerops"
	"github.com/heavensgate/vpncore/internal/store"
)

// IntervalObserver implements §4.5.3: the daily expiry-warning/blocking job.
type IntervalObserver struct {
	store      store.Factory
	dispatcher *peerops.Dispatcher
	runAt      time.Duration // offset into the day, e.g. 3*time.Hour for 03:00

	ExpireWarn  Observer[*model.User]
	ExpireBlock Observer[*model.User]
}

// NewIntervalObserver builds an observer; runAt is the time-of-day offset
// (e.g. 3*time.Hour for 03:00) the daily job fires at.
func NewIntervalObserver(factory store.Factory, dispatcher *peerops.Dispatcher, runAt time.Duration) *IntervalObserver {
	return &IntervalObserver{store: factory, dispatcher: dispatcher, runAt: runAt}
}

// Run blocks running ScheduledRunner(CheckExpirations, runAt) until ctx is
// cancelled.
func (i *IntervalObserver) Run(ctx context.Context) error {
	return i.ScheduledRunner(ctx, i.CheckExpirations, i.runAt)
}

// IntervalRunner periodically executes fn at the given interval, logging
// completion and sleeping between runs — idempotent with respect to ctx
// cancellation.
func (i *IntervalObserver) IntervalRunner(ctx context.Context, fn func(context.Context) error, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := fn(ctx); err != nil {
			klog.Errorf("interval job failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ScheduledRunner runs fn once per day at time-of-day offset runAt,
// sleeping until the next occurrence each time.
func (i *IntervalObserver) ScheduledRunner(ctx context.Context, fn func(context.Context) error, runAt time.Duration) error {
	for {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		next := midnight.Add(runAt)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := fn(ctx); err != nil {
			klog.Errorf("scheduled job failed: %v", err)
		}
	}
}

// CheckExpirations implements __check_users_expire_date: blocks any user
// whose expiry date has passed (disabling all their peers via PeerOps), and
// warns users expiring within a day.
func (i *IntervalObserver) CheckExpirations(ctx context.Context) error {
	users, err := i.store.Users().List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, u := range users {
		if u.ExpiresAt == nil || u.Status == model.UserStatusAccountBlocked {
			continue
		}

		switch {
		case !u.ExpiresAt.After(now):
			klog.V(2).InfoS("blocking user for expired account", "user", u.ID)
			if err := i.store.Users().SetStatus(ctx, u.ID, model.UserStatusTimeExpired); err != nil {
				klog.Errorf("failed to set user %s expired: %v", u.ID, err)
				continue
			}
			if err := i.disableAllPeers(ctx, u.ID); err != nil {
				klog.Errorf("failed to disable peers for expired user %s: %v", u.ID, err)
			}
			metrics.Get().ExpirySweepBlocked.Inc()
			i.ExpireBlock.Trigger(ctx, u)
		case !u.ExpiresAt.Add(-24 * time.Hour).After(now):
			klog.V(2).InfoS("warning user about upcoming expiration", "user", u.ID)
			metrics.Get().ExpirySweepWarned.Inc()
			i.ExpireWarn.Trigger(ctx, u)
		}
	}
	return nil
}

func (i *IntervalObserver) disableAllPeers(ctx context.Context, userID string) error {
	var records []*model.AnyPeerRecord

	wgPeers, err := i.store.WireguardPeers().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range wgPeers {
		wgCopy := p.WireguardPeer
		records = append(records, &model.AnyPeerRecord{Peer: p.Peer, Wireguard: &wgCopy})
	}

	xrayPeers, err := i.store.XrayPeers().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range xrayPeers {
		xCopy := p.XrayPeer
		records = append(records, &model.AnyPeerRecord{Peer: p.Peer, Xray: &xCopy})
	}

	return i.dispatcher.DisablePeers(ctx, records)
}
