package admin

import (
	"context"
	"time"

	"github.com/HappyLadySauce/errors"
	"github.com/gin-gonic/gin"

	"github.com/heavensgate/vpncore/internal/boot"
	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/pkg/core"
)

type createUserRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ListUsers implements GET /v1/users.
func ListUsers(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := b.Store.Users().List(c.Request.Context())
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, users)
	}
}

// GetUser implements GET /v1/users/:id.
func GetUser(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := b.Store.Users().Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, u)
	}
}

// CreateUser implements POST /v1/users: get_or_create(id, name) of §4.1.
func CreateUser(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponseBindErr(c, err, nil)
			return
		}
		if errs := (&model.User{ID: req.ID, Name: req.Name}).Validate(); len(errs) > 0 {
			core.WriteResponse(c, errors.WithCode(code.ErrValidation, "%v", errs[0]), nil)
			return
		}
		u, _, err := b.Store.Users().GetOrCreate(c.Request.Context(), req.ID, req.Name)
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, u)
	}
}

// BanUser implements POST /v1/users/:id/ban: set_account_blocked of §4.1,
// followed by disabling every peer the user owns across both backends.
func BanUser(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		if err := b.Store.Users().SetStatus(ctx, id, model.UserStatusAccountBlocked); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		records, err := collectUserPeers(b, ctx, id)
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		if err := b.Dispatcher.DisablePeers(ctx, records); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		core.WriteResponse(c, nil, nil)
	}
}

// PardonUser implements POST /v1/users/:id/pardon: the reverse of BanUser,
// restoring every peer to Disconnected (ready but not live).
func PardonUser(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		if err := b.Store.Users().SetStatus(ctx, id, model.UserStatusCreated); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		records, err := collectUserPeers(b, ctx, id)
		if err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		if err := b.Dispatcher.EnablePeers(ctx, records); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}

		core.WriteResponse(c, nil, nil)
	}
}

type setExpiryRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// SetUserExpiry implements PATCH /v1/users/:id/expiry: set_expiry of §4.1. A
// nil ExpiresAt clears the expiry (the user no longer auto-expires).
func SetUserExpiry(b *boot.Boot) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setExpiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponseBindErr(c, err, nil)
			return
		}
		if err := b.Store.Users().SetExpiry(c.Request.Context(), c.Param("id"), req.ExpiresAt); err != nil {
			core.WriteResponse(c, err, nil)
			return
		}
		core.WriteResponse(c, nil, nil)
	}
}

// collectUserPeers assembles the dispatch-friendly records for every peer a
// user owns, across both protocol backends.
func collectUserPeers(b *boot.Boot, ctx context.Context, id string) ([]*model.AnyPeerRecord, error) {
	var records []*model.AnyPeerRecord

	wgPeers, err := b.Store.WireguardPeers().ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range wgPeers {
		wgCopy := p.WireguardPeer
		records = append(records, &model.AnyPeerRecord{Peer: p.Peer, Wireguard: &wgCopy})
	}

	xrayPeers, err := b.Store.XrayPeers().ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range xrayPeers {
		xCopy := p.XrayPeer
		records = append(records, &model.AnyPeerRecord{Peer: p.Peer, Xray: &xCopy})
	}

	return records, nil
}
