package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthController struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthController; rdb may be nil when the cache is disabled
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, redis: rdb}
}

func (hc *HealthController) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true
	if sqlDB, err := hc.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		healthy = false
	}
	if hc.redis != nil {
		checks["redis"] = "ok"
		if err := hc.redis.Ping(ctx).Err(); err != nil {
			// the cache is optional, so a redis outage only degrades
			checks["redis"] = "down"
		}
	}

	status := http.StatusOK
	checks["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		checks["status"] = "down"
	}
	c.JSON(status, checks)
}
