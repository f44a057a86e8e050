package peerops

import (
	"context"
	"testing"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/store"
)

type fakeBackend struct {
	enabled  []string
	disabled []string
	deleted  []string
	failOn   string
}

func (f *fakeBackend) Enable(_ context.Context, rec *model.AnyPeerRecord) error {
	if rec.ID == f.failOn {
		return errTest
	}
	f.enabled = append(f.enabled, rec.ID)
	return nil
}

func (f *fakeBackend) Disable(_ context.Context, rec *model.AnyPeerRecord) error {
	if rec.ID == f.failOn {
		return errTest
	}
	f.disabled = append(f.disabled, rec.ID)
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, rec *model.AnyPeerRecord) error {
	f.deleted = append(f.deleted, rec.ID)
	return nil
}

func (f *fakeBackend) IsConnected(_ context.Context, rec *model.AnyPeerRecord) bool {
	return false
}

func (f *fakeBackend) UpdateStoredStatus(_ context.Context, _ store.Factory, _ *model.AnyPeerRecord, _ string) error {
	return nil
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errTest = testErr("boom")

func TestDispatcherEnablePeersRoutesbyKind(t *testing.T) {
	wg := &fakeBackend{}
	xr := &fakeBackend{}
	d := New(wg, wg, xr, nil)

	records := []*model.AnyPeerRecord{
		{Peer: model.Peer{ID: "p1", Kind: model.PeerKindWireguard}},
		{Peer: model.Peer{ID: "p2", Kind: model.PeerKindXray}},
	}

	if err := d.EnablePeers(context.Background(), records); err != nil {
		t.Fatalf("EnablePeers() error = %v", err)
	}
	if len(wg.enabled) != 1 || wg.enabled[0] != "p1" {
		t.Errorf("wg.enabled = %v, want [p1]", wg.enabled)
	}
	if len(xr.enabled) != 1 || xr.enabled[0] != "p2" {
		t.Errorf("xr.enabled = %v, want [p2]", xr.enabled)
	}
}

func TestDispatcherUnknownKindSkipped(t *testing.T) {
	wg := &fakeBackend{}
	d := New(wg, wg, nil, nil)

	records := []*model.AnyPeerRecord{
		{Peer: model.Peer{ID: "p1", Kind: "unknown-kind"}},
	}
	if err := d.EnablePeers(context.Background(), records); err != nil {
		t.Fatalf("EnablePeers() error = %v, want nil (unknown kind is skipped with a warning)", err)
	}
	if len(wg.enabled) != 0 {
		t.Errorf("wg.enabled = %v, want none", wg.enabled)
	}
}

func TestDispatcherDisablePeersStopsOnFirstError(t *testing.T) {
	wg := &fakeBackend{failOn: "p1"}
	d := New(wg, wg, nil, nil)

	records := []*model.AnyPeerRecord{
		{Peer: model.Peer{ID: "p1", Kind: model.PeerKindWireguard}},
		{Peer: model.Peer{ID: "p2", Kind: model.PeerKindWireguard}},
	}
	if err := d.DisablePeers(context.Background(), records); err == nil {
		t.Fatal("DisablePeers() error = nil, want the backend's error surfaced")
	}
	if len(wg.disabled) != 0 {
		t.Errorf("wg.disabled = %v, want none: the failing peer is first in the batch", wg.disabled)
	}
}
