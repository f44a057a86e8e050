package peerops

import (
	"context"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/pkg/wghub"
	"github.com/heavensgate/vpncore/internal/store"
)

// WGHubBackend adapts a *wghub.Hub to the Backend interface for the
// Wireguard/AmneziaWireguard peer kinds.
type WGHubBackend struct {
	Hub *wghub.Hub
}

func (b *WGHubBackend) Enable(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Hub.EnablePeer(ctx, rec.Wireguard.PublicKey)
}

func (b *WGHubBackend) Disable(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Hub.DisablePeer(ctx, rec.Wireguard.PublicKey)
}

func (b *WGHubBackend) Delete(ctx context.Context, rec *model.AnyPeerRecord) error {
	return b.Hub.DeletePeer(ctx, rec.Wireguard.PublicKey)
}

func (b *WGHubBackend) IsConnected(ctx context.Context, rec *model.AnyPeerRecord) bool {
	return rec.Status == model.PeerStatusConnected
}

// UpdateStoredStatus mirrors status into the wireguard_peers table shared by
// the Wireguard and AmneziaWireguard kinds.
func (b *WGHubBackend) UpdateStoredStatus(ctx context.Context, factory store.Factory, rec *model.AnyPeerRecord, status string) error {
	if factory == nil {
		return nil
	}
	return factory.WireguardPeers().Update(ctx, rec.ID, store.UpdatePeerFields{Status: &status})
}
