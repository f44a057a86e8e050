package sqlite

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/HappyLadySauce/errors"
	"gorm.io/gorm"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/keygen"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/internal/store"
	"github.com/heavensgate/vpncore/pkg/utils/snowflake"
)

type wireguardPeers struct {
	db      *gorm.DB
	keyTool keygen.KeyTool
}

// Add implements add_wg_peer(user, shared_ip, keys?, is_amnezia, name?) of
// §4.1: missing keys are generated via Keygen, missing Amnezia jitter
// parameters are drawn in the ranges of §3, and an unset name is derived as
// "<username>_<next_peer_id>". The Peer and WireguardPeer rows are created in
// a single transaction.
func (w *wireguardPeers) Add(ctx context.Context, p store.AddWireguardPeerParams) (*model.WireguardPeerRecord, error) {
	if p.PrivateKey == "" {
		pk, err := w.keyTool.GeneratePrivateKey(ctx, p.IsAmnezia)
		if err != nil {
			return nil, err
		}
		p.PrivateKey = pk
	}
	if p.PublicKey == "" {
		pub, err := w.keyTool.DerivePublicKey(ctx, p.IsAmnezia, p.PrivateKey)
		if err != nil {
			return nil, err
		}
		p.PublicKey = pub
	}
	if p.PresharedKey == "" {
		psk, err := w.keyTool.GeneratePresharedKey(ctx, p.IsAmnezia)
		if err != nil {
			return nil, err
		}
		p.PresharedKey = psk
	}
	if p.IsAmnezia && p.JunkJc == 0 && p.JunkJmin == 0 && p.JunkJmax == 0 {
		p.JunkJc = model.JcMin + rand.IntN(model.JcMax-model.JcMin+1)
		p.JunkJmin = model.JminMin + rand.IntN(model.JminMax-model.JminMin+1)
		p.JunkJmax = p.JunkJmin + 1 + rand.IntN(model.JmaxMax-p.JunkJmin)
	}

	var record model.WireguardPeerRecord
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		name := p.Name
		if name == "" {
			var n string
			if derived, derr := deriveNextPeerName(tx, p.UserID); derr != nil {
				return derr
			} else {
				n = derived
			}
			name = n
		}

		id, err := snowflake.GenerateID()
		if err != nil {
			return errors.WithCode(code.ErrDatabase, "generating peer id: %v", err)
		}

		peer := model.Peer{
			ID:     id,
			UserID: p.UserID,
			Name:   name,
			Kind:   wgKind(p.IsAmnezia),
			Status: model.PeerStatusDisconnected,
		}
		if err := tx.Create(&peer).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errors.WithCode(code.ErrPeerNameConflict, "peer name %q already in use for this user", name)
			}
			return errors.WithCode(code.ErrDatabase, err.Error())
		}

		wgPeer := model.WireguardPeer{
			PeerID:       peer.ID,
			PrivateKey:   p.PrivateKey,
			PublicKey:    p.PublicKey,
			PresharedKey: p.PresharedKey,
			SharedIP:     p.SharedIP,
			IsAmnezia:    p.IsAmnezia,
			JunkJc:       p.JunkJc,
			JunkJmin:     p.JunkJmin,
			JunkJmax:     p.JunkJmax,
		}
		if err := tx.Create(&wgPeer).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errors.WithCode(code.ErrIPAlreadyInUse, "shared ip %q already assigned", p.SharedIP)
			}
			return errors.WithCode(code.ErrDatabase, err.Error())
		}

		record = model.WireguardPeerRecord{Peer: peer, WireguardPeer: wgPeer}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (w *wireguardPeers) Get(ctx context.Context, peerID string) (*model.WireguardPeerRecord, error) {
	return w.queryOne(ctx, "peers.id = ?", peerID)
}

func (w *wireguardPeers) GetByIP(ctx context.Context, ip string) (*model.WireguardPeerRecord, error) {
	return w.queryOne(ctx, "wireguard_peers.shared_ip = ?", ip)
}

func (w *wireguardPeers) queryOne(ctx context.Context, where string, arg any) (*model.WireguardPeerRecord, error) {
	var peer model.Peer
	var wgPeer model.WireguardPeer
	q := w.db.WithContext(ctx).Table("peers").
		Joins("JOIN wireguard_peers ON wireguard_peers.peer_id = peers.id").
		Where(where, arg)

	if err := q.Select("peers.*").Scan(&peer).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	if peer.ID == "" {
		return nil, errors.WithCode(code.ErrPeerNotFound, "wireguard peer not found")
	}
	if err := w.db.WithContext(ctx).Where("peer_id = ?", peer.ID).First(&wgPeer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(code.ErrPeerNotFound, "wireguard peer not found")
		}
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return &model.WireguardPeerRecord{Peer: peer, WireguardPeer: wgPeer}, nil
}

func (w *wireguardPeers) ListByUser(ctx context.Context, userID string) ([]*model.WireguardPeerRecord, error) {
	var peers []model.Peer
	if err := w.db.WithContext(ctx).
		Where("user_id = ? AND kind IN ?", userID, []string{model.PeerKindWireguard, model.PeerKindAmneziaWireguard}).
		Order("created_at ASC").Find(&peers).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return w.hydrate(ctx, peers)
}

func (w *wireguardPeers) ListAll(ctx context.Context) ([]*model.WireguardPeerRecord, error) {
	var peers []model.Peer
	if err := w.db.WithContext(ctx).
		Where("kind IN ?", []string{model.PeerKindWireguard, model.PeerKindAmneziaWireguard}).
		Order("created_at ASC").Find(&peers).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return w.hydrate(ctx, peers)
}

func (w *wireguardPeers) hydrate(ctx context.Context, peers []model.Peer) ([]*model.WireguardPeerRecord, error) {
	records := make([]*model.WireguardPeerRecord, 0, len(peers))
	for _, peer := range peers {
		var wgPeer model.WireguardPeer
		if err := w.db.WithContext(ctx).Where("peer_id = ?", peer.ID).First(&wgPeer).Error; err != nil {
			return nil, errors.WithCode(code.ErrDatabase, err.Error())
		}
		records = append(records, &model.WireguardPeerRecord{Peer: peer, WireguardPeer: wgPeer})
	}
	return records, nil
}

func (w *wireguardPeers) ListUsedIPs(ctx context.Context) ([]string, error) {
	var ips []string
	if err := w.db.WithContext(ctx).Model(&model.WireguardPeer{}).Pluck("shared_ip", &ips).Error; err != nil {
		return nil, errors.WithCode(code.ErrDatabase, err.Error())
	}
	return ips, nil
}

func (w *wireguardPeers) Update(ctx context.Context, peerID string, fields store.UpdatePeerFields) error {
	return updatePeerFields(ctx, w.db, peerID, fields)
}

func (w *wireguardPeers) Delete(ctx context.Context, peerID string) error {
	res := w.db.WithContext(ctx).Where("id = ?", peerID).Delete(&model.Peer{})
	if res.Error != nil {
		return errors.WithCode(code.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return errors.WithCode(code.ErrPeerNotFound, "wireguard peer %q not found", peerID)
	}
	return nil
}

func deriveNextPeerName(tx *gorm.DB, userID string) (string, error) {
	var user model.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.WithCode(code.ErrUserNotFound, "user %q not found", userID)
		}
		return "", errors.WithCode(code.ErrDatabase, err.Error())
	}
	var count int64
	if err := tx.Model(&model.Peer{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return "", errors.WithCode(code.ErrDatabase, err.Error())
	}
	base := strings.ReplaceAll(user.Name, " ", "_")
	return fmt.Sprintf("%s_%d", base, count+1), nil
}

func wgKind(isAmnezia bool) string {
	if isAmnezia {
		return model.PeerKindAmneziaWireguard
	}
	return model.PeerKindWireguard
}

func updatePeerFields(ctx context.Context, db *gorm.DB, peerID string, fields store.UpdatePeerFields) error {
	updates := map[string]any{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.ActiveUntil != nil {
		updates["active_until"] = *fields.ActiveUntil
	}
	if len(updates) == 0 {
		return nil
	}
	res := db.WithContext(ctx).Model(&model.Peer{}).Where("id = ?", peerID).Updates(updates)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return errors.WithCode(code.ErrPeerNameConflict, "peer name already in use for this user")
		}
		return errors.WithCode(code.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return errors.WithCode(code.ErrPeerNotFound, "peer %q not found", peerID)
	}
	return nil
}
