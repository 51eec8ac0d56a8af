package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"notsolong/internal/config"
	"notsolong/internal/handlers"
	"notsolong/internal/middleware"
	"notsolong/internal/services"
)

// New builds the gin engine with all routes wired. rdb may be nil;
// the rate limiter then runs in-process.
func New(cfg *config.Config, conn *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	votes := services.NewVoteService(conn)
	authHandler := handlers.NewAuthHandler(cfg, conn)
	titleHandler := handlers.NewTitleHandler(conn, votes)
	recapHandler := handlers.NewRecapHandler(conn, votes)

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.LoadUser(cfg, conn))

	// 公共路由 (Public Routes)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/token", authHandler.Login)
	api.POST("/auth/token/refresh", authHandler.Refresh)
	api.GET("/titles/random", titleHandler.Random)
	api.GET("/titles/:id", titleHandler.Get)
	api.GET("/titles/:id/summary", titleHandler.Summary)
	api.GET("/recaps/:id", recapHandler.Get)

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired(cfg, conn))
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.PATCH("/auth/me", authHandler.UpdateMe)
		authorized.POST("/titles", titleHandler.Create)
		authorized.POST("/recaps", recapHandler.Create)
		authorized.PATCH("/recaps/:id", recapHandler.Update)
		authorized.DELETE("/recaps/:id", recapHandler.Delete)
		authorized.POST("/recaps/:id/vote",
			middleware.RateLimit(rdb, "vote", cfg.VoteRateLimit, cfg.VoteRateWindow),
			recapHandler.Vote)
	}

	return r
}
