// Package router wires the tutor HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/tutor/handler"
	"github.com/redfire-io/pcb-tutor/internal/tutor/web"
)

// Register registers all tutor routes on the engine.
func Register(engine *gin.Engine, mcq *handler.MCQHandler, health *handler.HealthHandler) {
	engine.GET("/", web.Index)
	engine.GET("/healthz", health.Healthz)
	engine.GET("/metrics", mcq.Metrics)

	v1 := engine.Group("/v1")
	{
		group := v1.Group("/mcq")
		{
			group.POST("/generate", mcq.Generate)
			group.POST("/index", mcq.Index)
			group.GET("/datasets", mcq.Datasets)
			group.GET("/subjects", mcq.Subjects)
			group.GET("/stats", mcq.Stats)
			group.DELETE("/cache", mcq.ClearCache)
		}
	}

	logger.Info("HTTP routes registered")
}
