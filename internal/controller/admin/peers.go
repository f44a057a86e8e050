package admin

import (
	"time"

	"github.com/HappyLadySauce/errors"
	"github.com/gin-gonic/gin"

	"github.com/heavensgate/vpncore/internal/boot"
	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/peerconfig"
	"github.com/heavensgate/vpncore/internal/pkg/xray"
	"github.com/heavensgate/vpncore/internal/store"
	"github.com/heavensgate/vpncore/pkg/core"
)

// ListUserPeers implements GET /v1/users/:id/peers: both backends' peers for
// one user, merged into the dispatch-friendly shape.
func ListUserPeers(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := collectUserPeers(b, c.Request.Context(), c.Param("id"))
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, records)
	}
}

type createWireguardPeerRequest struct {
	Name      string `json:"name"`
	IsAmnezia bool   `json:"is_amnezia"`
}

// CreateWireguardPeer implements POST /v1/users/:id/peers/wireguard:
// add_wg_peer of §4.1, drawing a tunnel address from IPQueue, writing the
// peer row through Storage, then mirroring the stanza into WGHub.
func CreateWireguardPeer(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createWireguardPeerRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			core.WriteResponseBindErr(c, err, nil)
			return
		}

		ctx := c.Request.Context()
		userID := c.Param("id")

		ip, err := b.IPQueue.Acquire()
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		rec, err := b.Store.WireguardPeers().Add(ctx, store.AddWireguardPeerParams{
			UserID:    userID,
			Name:      req.Name,
			SharedIP:  ip,
			IsAmnezia: req.IsAmnezia,
		})
		if err != nil {
			b.IPQueue.Release(ip)
			core.WriteResponse(c, err, nil)
			return
		}

		if err := b.WGHub.AddPeer(ctx, rec.Name, rec.PublicKey, rec.PresharedKey, rec.SharedIP); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		core.WriteResponse(c, nil, rec)
	}
}

type createXrayPeerRequest struct {
	Name string `json:"name"`
	Flow string `json:"flow"`
}

// CreateXrayPeer implements POST /v1/users/:id/peers/xray: add_xray_peer of
// §4.1, writing the row through Storage then adding it to the remote inbound
// via XrayWorker.
func CreateXrayPeer(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		if b.Xray == nil {
			core.WriteResponse(c, errors.WithCode(code.ErrUnknownPeerKind, "xray backend is not configured"), nil)
			return
		}

		var req createXrayPeerRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			core.WriteResponseBindErr(c, err, nil)
			return
		}

		ctx := c.Request.Context()
		rec, err := b.Store.XrayPeers().Add(ctx, store.AddXrayPeerParams{
			UserID:    c.Param("id"),
			Name:      req.Name,
			InboundID: b.Config.Xray.InboundID,
			Flow:      req.Flow,
		})
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		xp := xray.Peer{ID: rec.ID, Name: rec.Name, Status: rec.Status, Flow: rec.Flow, InboundID: rec.InboundID}
		if err := b.Xray.AddPeers(ctx, rec.InboundID, []xray.Peer{xp}, time.Time{}); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		core.WriteResponse(c, nil, rec)
	}
}

// DeletePeer implements DELETE /v1/peers/:id: looks the peer's kind up via
// Storage, then removes it from the matching backend before deleting the row.
func DeletePeer(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		if wg, err := b.Store.WireguardPeers().Get(ctx, id); err == nil {
			if err := b.WGHub.DeletePeer(ctx, wg.PublicKey); err != nil {
				core.WriteResponse(c, err, nil)
				return
			}
			if err := b.Store.WireguardPeers().Delete(ctx, id); err != nil {
				core.WriteResponse(c, err, nil)
				return
			}
			b.IPQueue.Release(wg.SharedIP)
			core.WriteResponse(c, nil, nil)
			return
		}

		xp, err := b.Store.XrayPeers().Get(ctx, id)
		if err != nil {
			core.WriteResponse(c, errors.WithCode(code.ErrPeerNotFound, "peer %q not found", id), nil)
			return
		}
		if b.Xray != nil {
			if err := b.Xray.DeletePeer(ctx, xray.Peer{ID: xp.ID, InboundID: xp.InboundID}); err != nil {
				core.WriteResponse(c, err, nil)
				return
			}
		}
		if err := b.Store.XrayPeers().Delete(ctx, id); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, nil)
	}
}

type patchPeerRequest struct {
	Name        *string    `json:"name"`
	ActiveUntil *time.Time `json:"active_until"`
}

// PatchPeer implements PATCH /v1/peers/:id: update_peer(id, fields) of §4.1,
// restricted to the base-field subset UpdatePeerFields exposes.
func PatchPeer(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req patchPeerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponseBindErr(c, err, nil)
			return
		}

		ctx := c.Request.Context()
		id := c.Param("id")
		fields := store.UpdatePeerFields{Name: req.Name}
		if req.ActiveUntil != nil {
			fields.ActiveUntil = &req.ActiveUntil
		}

		if _, err := b.Store.WireguardPeers().Get(ctx, id); err == nil {
			if err := b.Store.WireguardPeers().Update(ctx, id, fields); err != nil {
				core.WriteResponse(c, err, nil)
				return
			}
			core.WriteResponse(c, nil, nil)
			return
		}

		if _, err := b.Store.XrayPeers().Get(ctx, id); err != nil {
			core.WriteResponse(c, errors.WithCode(code.ErrPeerNotFound, "peer %q not found", id), nil)
			return
		}
		if err := b.Store.XrayPeers().Update(ctx, id, fields); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, nil)
	}
}

// GetPeerConfig implements GET /v1/peers/:id/config: renders the client
// config text for either backend.
func GetPeerConfig(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		if wg, err := b.Store.WireguardPeers().Get(ctx, id); err == nil {
			c.String(200, peerconfig.RenderWireguard(&wg.WireguardPeer, b.Config.WireGuard))
			return
		}

		xp, err := b.Store.XrayPeers().Get(ctx, id)
		if err != nil {
			core.WriteResponse(c, errors.WithCode(code.ErrPeerNotFound, "peer %q not found", id), nil)
			return
		}
		if b.Xray == nil {
			core.WriteResponse(c, errors.WithCode(code.ErrUnknownPeerKind, "xray backend is not configured"), nil)
			return
		}
		conn, err := b.Xray.GetConnectionString(ctx, xray.Peer{ID: xp.ID, Name: xp.Name, Flow: xp.Flow, InboundID: xp.InboundID})
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		c.String(200, conn)
	}
}

// GetWireguardServerConfig implements GET /v1/wireguard/server-config: a
// read-only diagnostic dump of the rendered interface file WGHub maintains.
func GetWireguardServerConfig(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(200, string(b.WGHub.RenderedConfig()))
	}
}

// Healthz implements GET /healthz: the process liveness probe, unauthenticated.
func Healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

