package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"maintenance-backend/internal/metrics"
	"maintenance-backend/internal/model"
	"maintenance-backend/internal/mw"
)

// RouterConfig holds the HTTP tunables of NewRouter.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	MaxUploadMB     int64
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, m *metrics.Metrics, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(h.log), m.Middleware())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Per-client limiters are dropped after ten idle minutes.
	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(limiter))
	{
		api.POST("/auth/login", h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	uploads := mw.BodyLimit(cfg.MaxUploadMB << 20)

	authed := api.Group("")
	authed.Use(mw.Authenticate(h.tokens, h.store.Users, h.log))
	{
		authed.GET("/users", mw.RequirePermission(model.PermUserList), h.ListUsers)
		authed.GET("/users/:id", mw.RequirePermission(model.PermUserList), h.GetUser)
		authed.POST("/users", mw.RequirePermission(model.PermUserCreate), h.CreateUser)
		authed.PUT("/users/:id", mw.RequirePermission(model.PermUserEdit), h.UpdateUser)
		authed.DELETE("/users/:id", mw.RequirePermission(model.PermUserDelete), h.DeleteUser)
		authed.GET("/roles", mw.RequirePermission(model.PermUserList), h.ListRoles)

		authed.GET("/actions", mw.RequirePermission(model.PermActionList), h.ListActions)
		authed.GET("/actions/:id", mw.RequirePermission(model.PermActionList), h.GetAction)
		authed.POST("/actions", mw.RequirePermission(model.PermActionCreate), uploads, h.CreateAction)
		authed.PUT("/actions/:id", mw.RequirePermission(model.PermActionEdit), uploads, h.UpdateAction)
		authed.DELETE("/actions/:id", mw.RequirePermission(model.PermActionDelete), h.DeleteAction)

		authed.GET("/spare-parts", mw.RequirePermission(model.PermSparePartList), h.ListSpareParts)
		authed.GET("/spare-parts/:id", mw.RequirePermission(model.PermSparePartList), h.GetSparePart)
		authed.POST("/spare-parts", mw.RequirePermission(model.PermSparePartCreate), h.CreateSparePart)

		authed.GET("/machine-reports", mw.RequirePermission(model.PermReportList), h.ListMachineReports)
		authed.GET("/machine-reports/:id", mw.RequirePermission(model.PermReportList), h.GetMachineReport)
		authed.POST("/machine-reports", mw.RequirePermission(model.PermReportCreate), h.CreateMachineReport)

		authed.GET("/subscriptions", h.GetSubscription)
		authed.PUT("/subscriptions", h.PutSubscription)
		authed.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}
