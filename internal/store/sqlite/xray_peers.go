package sqlite

import (
	"context"

	"github.com/HappyLadySauce/errors"
	"gorm.io/gorm"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/store"
	"github.com/heavensgate/vpncore/pkg/utils/snowflake"
)

type xrayPeers struct {
	db *gorm.DB
}

// Add implements add_xray_peer(user, inbound_id, flow, name?) of §4.1: the
// Peer and XrayPeer rows are created in a single transaction, deriving a name
// the same way add_wg_peer does when the caller leaves it unset.
func (x *xrayPeers) Add(ctx context.Context, p store.AddXrayPeerParams) (*model.XrayPeerRecord, error) {
	var record model.XrayPeerRecord
	err := x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		name := p.Name
		if name == "" {
			derived, derr := deriveNextPeerName(tx, p.UserID)
			if derr != nil {
				return derr
			}
			name = derived
		}

		id, err := snowflake.GenerateID()
		if err != nil {
			return errors.WithCode(code.ErrDatabase, "generating peer id: %v", err)
		}

		peer := model.Peer{
			ID:     id,
			UserID: p.UserID,
			Name:   name,
			Kind:   model.PeerKindXray,
			Status: model.PeerStatusDisconnected,
		}
		if err := tx.Create(&peer).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errors.WithCode(code.ErrPeerNameConflict, "peer name %q already in use for this user", name)
			}
			return errors.WithCode(code.ErrDatabase, err.Error())
		}

		xrayPeer := model.XrayPeer{
			PeerID:    peer.ID,
			InboundID: p.InboundID,
			Flow:      p.Flow,
		}
		if err := tx.Create(&xrayPeer).Error; err != nil {
			return errors.WithCode(code.ErrDatabase, err.Error())
		}

		record = model.XrayPeerRecord{Peer: peer, XrayPeer: xrayPeer}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (x *xrayPeers) Get(ctx context.Context, peerID string) (*model.XrayPeerRecord, error) {
	var peer model.Peer
	if err := x.db.WithContext(ctx).Where("id = ?", peerID).First(&peer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(code.ErrXrayPeerNotFound, "xray peer %q not found", peerID)
		}
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	var xrayPeer model.XrayPeer
	if err := x.db.WithContext(ctx).Where("peer_id = ?", peer.ID).First(&xrayPeer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(code.ErrXrayPeerNotFound, "xray peer %q not found", peerID)
		}
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return &model.XrayPeerRecord{Peer: peer, XrayPeer: xrayPeer}, nil
}

func (x *xrayPeers) ListByUser(ctx context.Context, userID string) ([]*model.XrayPeerRecord, error) {
	var peers []model.Peer
	if err := x.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, model.PeerKindXray).
		Order("created_at ASC").Find(&peers).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return x.hydrate(ctx, peers)
}

func (x *xrayPeers) ListAll(ctx context.Context) ([]*model.XrayPeerRecord, error) {
	var peers []model.Peer
	if err := x.db.WithContext(ctx).
		Where("kind = ?", model.PeerKindXray).
		Order("created_at ASC").Find(&peers).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return x.hydrate(ctx, peers)
}

func (x *xrayPeers) hydrate(ctx context.Context, peers []model.Peer) ([]*model.XrayPeerRecord, error) {
	records := make([]*model.XrayPeerRecord, 0, len(peers))
	for _, peer := range peers {
		var xrayPeer model.XrayPeer
		if err := x.db.WithContext(ctx).Where("peer_id = ?", peer.ID).First(&xrayPeer).Error; err != nil {
			return nil, errors.WithCode(code.ErrDatabase, err.Error())
		}
		records = append(records, &model.XrayPeerRecord{Peer: peer, XrayPeer: xrayPeer})
	}
	return records, nil
}

func (x *xrayPeers) Update(ctx context.Context, peerID string, fields store.UpdatePeerFields) error {
	return updatePeerFields(ctx, x.db, peerID, fields)
}

func (x *xrayPeers) Delete(ctx context.Context, peerID string) error {
	res := x.db.WithContext(ctx).Where("id = ?", peerID).Delete(&model.Peer{})
	if res.Error != nil {
		return errors.WithCode(code.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return errors.WithCode(code.ErrXrayPeerNotFound, "xray peer %q not found", peerID)
	}
	return nil
}
