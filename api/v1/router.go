package v1

import (
	"github.com/gin-gonic/gin"

	authapi "leasesync/api/v1/auth"
	"leasesync/api/v1/middleware"
	syncapi "leasesync/api/v1/sync"
	"leasesync/internal/auth"
	"leasesync/internal/httpx"
)

// Deps holds what the API routes need
type Deps struct {
	Runner    syncapi.Runner
	History   syncapi.HistoryLister // nil disables /sync/history
	Issuer    *auth.Issuer
	AdminHash string
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	r.GET("/healthz", healthHandler)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", healthHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authapi.LoginHandler(deps.Issuer, deps.AdminHash))
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(deps.Issuer))
		{
			protected.GET("/me", meHandler)

			syncHandler := syncapi.NewHandler(deps.Runner, deps.History)
			syncGroup := protected.Group("/sync")
			{
				syncGroup.GET("/last", syncHandler.Last)
				syncGroup.POST("/run", syncHandler.Run)
				syncGroup.GET("/history", syncHandler.History)
			}
		}
	}
}

func healthHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"status": "ok",
	})
}

// meHandler returns the authenticated user
func meHandler(c *gin.Context) {
	username, _ := c.Get("username")
	httpx.OK(c, gin.H{
		"username": username,
	})
}
