// Package peerops implements §4.4's PeerOps: a pure dispatcher translating
// "enable/disable this peer" into the right backend call for its kind.
package peerops

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/store"
)

// Backend is the capability set a peer kind must offer. Per §9's redesign
// flag against "multiple dispatch on peer kind", the kind switch lives in
// exactly one place — backendFor — rather than scattered type switches.
type Backend interface {
	Enable(ctx context.Context, rec *model.AnyPeerRecord) error
	Disable(ctx context.Context, rec *model.AnyPeerRecord) error
	Delete(ctx context.Context, rec *model.AnyPeerRecord) error
	IsConnected(ctx context.Context, rec *model.AnyPeerRecord) bool

	// UpdateStoredStatus mirrors a status transition into the storage table
	// this peer kind lives in. factory is nil when the Dispatcher was built
	// without storage wiring, in which case this is a no-op.
	UpdateStoredStatus(ctx context.Context, factory store.Factory, rec *model.AnyPeerRecord, status string) error
}

// Dispatcher owns the kind→Backend lookup and, optionally, a Storage handle
// used to mirror status transitions (§4.4: "optionally updates storage peer
// status").
type Dispatcher struct {
	backends map[string]Backend
	users    store.Factory // nil means "don't touch storage status"
}

// New builds a Dispatcher wiring the two concrete backends.
func New(wg, amneziaWG, xrayB Backend, factory store.Factory) *Dispatcher {
	return &Dispatcher{
		backends: map[string]Backend{
			model.PeerKindWireguard:       wg,
			model.PeerKindAmneziaWireguard: amneziaWG,
			model.PeerKindXray:            xrayB,
		},
		users: factory,
	}
}

func (d *Dispatcher) backendFor(kind string) (Backend, bool) {
	b, ok := d.backends[kind]
	return b, ok
}

// EnablePeers implements enable_peers(peers, client?): dispatch to each
// peer's backend, then optionally mark the peer Disconnected ("ready but not
// yet live") in storage.
func (d *Dispatcher) EnablePeers(ctx context.Context, records []*model.AnyPeerRecord) error {
	return d.dispatch(ctx, records, func(b Backend, rec *model.AnyPeerRecord) error {
		return b.Enable(ctx, rec)
	}, model.PeerStatusDisconnected)
}

// DisablePeers is the symmetric batch disable, setting status Blocked.
func (d *Dispatcher) DisablePeers(ctx context.Context, records []*model.AnyPeerRecord) error {
	return d.dispatch(ctx, records, func(b Backend, rec *model.AnyPeerRecord) error {
		return b.Disable(ctx, rec)
	}, model.PeerStatusBlocked)
}

func (d *Dispatcher) dispatch(ctx context.Context, records []*model.AnyPeerRecord, call func(Backend, *model.AnyPeerRecord) error, newStatus string) error {
	for _, rec := range records {
		backend, ok := d.backendFor(rec.Kind)
		if !ok {
			klog.Warningf("unknown peer kind %q for peer %s, skipping", rec.Kind, rec.ID)
			continue
		}
		if err := call(backend, rec); err != nil {
			return err
		}
		if d.users != nil {
			if err := backend.UpdateStoredStatus(ctx, d.users, rec, newStatus); err != nil {
				return err
			}
		}
	}
	return nil
}
