package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/igrejaconecta/broadcaster/docs"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
)

func NewHTTPServer(addr string, h *Handlers) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery(), Observability())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", docs.SwaggerHTML)
	})
	r.GET("/docs/broadcast-api/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", docs.BroadcastOpenAPI)
	})

	v1 := r.Group("/v1", RequireTenant())
	{
		b := v1.Group("/broadcasts")
		b.POST("", h.CreateBroadcast)
		b.GET("", h.ListBroadcasts)
		b.GET("/statistics", h.Statistics)
		b.GET("/:id", h.GetBroadcast)
		b.PATCH("/:id", h.UpdateBroadcast)
		b.DELETE("/:id", h.DeleteBroadcast)
		b.POST("/:id/send", h.SendBroadcast)
		b.POST("/:id/schedule", h.ScheduleBroadcast)
		b.POST("/:id/cancel", h.CancelBroadcast)

		v1.GET("/whatsapp/validate", h.ValidateWhatsApp)
	}

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
