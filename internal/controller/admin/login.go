package admin

import (
	"github.com/HappyLadySauce/errors"
	"github.com/gin-gonic/gin"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/pkg/config"
	"github.com/heavensgate/vpncore/pkg/core"
	"github.com/heavensgate/vpncore/pkg/utils/jwt"
	"github.com/heavensgate/vpncore/pkg/utils/passwd"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// Login exchanges the bootstrap operator credential (§6 [Admin] section) for
// a bearer token. There is exactly one operator account — this is not a
// multi-user login, only the single gate §2a requires.
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponseBindErr(c, err, nil)
			return
		}

		if req.Username != cfg.Admin.Username {
			core.WriteResponse(c, errors.WithCode(code.ErrTokenInvalid, "invalid credentials"), nil)
			return
		}
		if !passwd.VerifyPassword(req.Password, cfg.Admin.Salt, cfg.Admin.PasswordHash) {
			core.WriteResponse(c, errors.WithCode(code.ErrTokenInvalid, "invalid credentials"), nil)
			return
		}

		token, err := jwt.Issue(req.Username, cfg.Admin.JWTSecret, cfg.Admin.JWTExpiry)
		if err != nil {
			core.WriteResponse(c, errors.WithCode(code.ErrUnknown, "issuing token: %v", err), nil)
			return
		}

		core.WriteResponse(c, nil, loginResponse{Token: token, ExpiresIn: int64(cfg.Admin.JWTExpiry.Seconds())})
	}
}
