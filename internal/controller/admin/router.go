// Package admin implements §2a's administrative HTTP surface: a thin gin
// router calling directly into the assembled *boot.Boot's Storage, PeerOps,
// IPQueue, WGHub and XrayWorker handles. Unlike the teacher's router, there
// is no package-level Engine or config.Get() call anywhere here — every
// handler closes over the *boot.Boot and *config.Config it was built with.
package admin

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/heavensgate/vpncore/internal/boot"
	"github.com/heavensgate/vpncore/internal/pkg/authz"

	_ "github.com/heavensgate/vpncore/api/swagger/docs"
)

// NewRouter assembles the gin.Engine for the administrative HTTP surface.
func NewRouter(b *boot.Boot, enforcer *authz.Enforcer) (*gin.Engine, error) {
	if !b.Config.Core.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(RequestID())
	r.Use(InstrumentHTTP())

	r.GET("/healthz", Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/v1/auth/login", Login(b.Config))

	v1 := r.Group("/v1")
	v1.Use(Auth(b.Config, enforcer))
	{
		v1.GET("/users", ListUsers(b))
		v1.GET("/users/:id", GetUser(b))
		v1.POST("/users", CreateUser(b))
		v1.POST("/users/:id/ban", BanUser(b))
		v1.POST("/users/:id/pardon", PardonUser(b))
		v1.PATCH("/users/:id/expiry", SetUserExpiry(b))

		v1.GET("/users/:id/peers", ListUserPeers(b))
		v1.POST("/users/:id/peers/wireguard", CreateWireguardPeer(b))
		v1.POST("/users/:id/peers/xray", CreateXrayPeer(b))
		v1.DELETE("/peers/:id", DeletePeer(b))
		v1.PATCH("/peers/:id", PatchPeer(b))
		v1.GET("/peers/:id/config", GetPeerConfig(b))

		v1.GET("/wireguard/server-config", GetWireguardServerConfig(b))
	}

	return r, nil
}
