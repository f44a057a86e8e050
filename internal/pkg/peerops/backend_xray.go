package peerops

import (
	"context"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/pkg/xray"
	"github.com/heavensgate/vpncore/internal/store"
)

// XrayBackend adapts a *xray.Worker to the Backend interface for the Xray
// peer kind.
type XrayBackend struct {
	Worker *xray.Worker
}

func toXrayPeer(rec *model.AnyPeerRecord) xray.Peer {
	return xray.Peer{
		ID:        rec.ID,
		Name:      rec.Name,
		Status:    rec.Status,
		Flow:      rec.Xray.Flow,
		InboundID: rec.Xray.InboundID,
	}
}

func (b *XrayBackend) Enable(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Worker.EnablePeer(ctx, toXrayPeer(rec))
}

func (b *XrayBackend) Disable(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Worker.DisablePeer(ctx, toXrayPeer(rec))
}

func (b *XrayBackend) Delete(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Worker.DeletePeer(ctx, toXrayPeer(rec))
}

func (b *XrayBackend) IsConnected(ctx context.Context, rec *model.AnyPeerRecord) bool {
	return b.Worker.IsConnected(ctx, toXrayPeer(rec))
}

// UpdateStoredStatus mirrors status into the xray_peers table.
func (b *XrayBackend) UpdateStoredStatus(ctx context.Context, factory store.Factory, rec *model.AnyPeerRecord, status string) error {
	if factory == nil {
		return nil
	}
	return factory.XrayPeers().Update(ctx, rec.ID, store.UpdatePeerFields{Status: &status})
}
