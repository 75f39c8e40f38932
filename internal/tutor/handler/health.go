package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/redfire-io/pcb-tutor/internal/tutor/biz"
	"github.com/redfire-io/pcb-tutor/pkg/app"
	"github.com/redfire-io/pcb-tutor/pkg/response"
)

// HealthHandler reports liveness and dependency status.
type HealthHandler struct {
	service       biz.Service
	chatProvider  string
	embedProvider string
}

// NewHealthHandler creates a HealthHandler. Provider names may be empty
// when the corresponding provider is not configured.
func NewHealthHandler(service biz.Service, chatProvider, embedProvider string) *HealthHandler {
	return &HealthHandler{
		service:       service,
		chatProvider:  chatProvider,
		embedProvider: embedProvider,
	}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(c *gin.Context) {
	cacheSize := h.service.CacheSize(c.Request.Context())

	response.OK(c, gin.H{
		"status":             "ok",
		"version":            app.GetVersion(),
		"chat_provider":      h.chatProvider,
		"chat_available":     h.chatProvider != "",
		"embedding_provider": h.embedProvider,
		"cache_enabled":      cacheSize >= 0,
		"cache_size":         cacheSize,
	})
}
