package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
)

const (
	ctxRequestID = "request_id"
	ctxTenantID  = "tenant_id"
)

func Observability() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", rid)

		c.Set(ctxRequestID, rid)
		c.Next()

		lat := time.Since(start).Seconds()
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.APIRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(c.Request.Method, path).Observe(lat)

		logx.L().Infow("http_access",
			"rid", rid,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", lat,
			"tenant_id", c.GetInt64(ctxTenantID),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequireTenant reads the tenant id set by the authenticating proxy.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-Tenant-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Tenant-ID"})
			return
		}
		c.Set(ctxTenantID, id)
		c.Next()
	}
}

func tenantID(c *gin.Context) int64 {
	return c.GetInt64(ctxTenantID)
}
