package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/HappyLadySauce/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/authz"
	"github.com/heavensgate/vpncore/internal/pkg/code"
	"github.com/heavensgate/vpncore/internal/pkg/metrics"
	"github.com/heavensgate/vpncore/pkg/config"
	"github.com/heavensgate/vpncore/pkg/core"
	"github.com/heavensgate/vpncore/pkg/utils/jwt"
)

const requestIDHeader = "X-Request-ID"

// RequestID stamps every request with a correlation id, reusing one the
// caller already supplied in X-Request-ID rather than always minting a
// fresh uuid, and echoes it back on the response for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// InstrumentHTTP records every request's outcome against the global
// metrics.Registry, keyed by the matched route pattern rather than the raw
// path so per-user URLs don't blow up cardinality.
func InstrumentHTTP() gin.HandlerFunc {
	reg := metrics.Get()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		reg.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Auth validates the admin bearer token and gates the route through the
// enforcer's casbin policy. Every route under /v1 is admin-id-gated per
// §2a; /healthz stays open for process liveness probing.
func Auth(cfg *config.Config, enforcer *authz.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			core.WriteResponse(c, errors.WithCode(code.ErrTokenInvalid, "missing or malformed Authorization header"), nil)
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(parts[1], cfg.Admin.JWTSecret)
		if err != nil {
			klog.V(1).Infof("admin token rejected: %v", err)
			core.WriteResponse(c, errors.WithCode(code.ErrTokenInvalid, "%s", code.Message(code.ErrTokenInvalid)), nil)
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(authz.SubjectAdmin, c.FullPath(), c.Request.Method)
		if err != nil || !allowed {
			core.WriteResponse(c, errors.WithCode(code.ErrPermissionDenied, "%s", code.Message(code.ErrPermissionDenied)), nil)
			c.Abort()
			return
		}

		c.Set("admin_username", claims.Username)
		c.Next()
	}
}
