// Package httpapi exposes the ops surface next to the bot: health,
// Prometheus metrics and a read-only sales summary.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/amirhosein2004/sale-tele-bot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New returns a configured Gin engine. rdb is nil when sessions live in
// memory; the health check then skips Redis.
func New(env string, db *gorm.DB, rdb *redis.Client, registry *prometheus.Registry, sales service.SalesService) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	r.GET("/reports/summary", salesSummary(sales))
	return r
}

// health checks DB (and Redis when configured) connectivity; it never
// exposes credentials or internals.
func health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}

func salesSummary(sales service.SalesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := sales.Summary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "summary unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sales":            sum.Count,
			"total_revenue":    sum.TotalRevenue.String(),
			"total_cost":       sum.TotalCost.String(),
			"total_extra_cost": sum.TotalExtraCost.String(),
			"total_profit":     sum.TotalProfit.String(),
		})
	}
}
