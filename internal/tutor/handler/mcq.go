// Package handler exposes the MCQ tutor over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/tutor/biz"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	apierrors "github.com/redfire-io/pcb-tutor/pkg/errors"
	"github.com/redfire-io/pcb-tutor/pkg/response"
)

// generateTimeout bounds one generation request end to end: validation,
// retrieval, chapter detection and the generation call.
const generateTimeout = 60 * time.Second

// MCQHandler handles MCQ generation and indexing requests.
type MCQHandler struct {
	service biz.Service
}

// NewMCQHandler creates an MCQHandler.
func NewMCQHandler(service biz.Service) *MCQHandler {
	return &MCQHandler{service: service}
}

// GenerateRequest is the body of POST /v1/mcq/generate.
type GenerateRequest struct {
	Subject string `json:"subject" binding:"required"`
	Topic   string `json:"topic" binding:"required"`
	Count   int    `json:"count"`
}

// Generate handles POST /v1/mcq/generate.
func (h *MCQHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apierrors.ErrInvalidParam.WithMessage(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	result, err := h.service.Generate(ctx, req.Subject, req.Topic, req.Count)
	if err != nil {
		response.Fail(c, translateError(err))
		return
	}
	response.OK(c, result)
}

// IndexRequest is the body of POST /v1/mcq/index. Exactly one of SourceURL
// and Directory must be set.
type IndexRequest struct {
	Subject   string `json:"subject" binding:"required"`
	SourceURL string `json:"source_url"`
	Directory string `json:"directory"`
}

// Index handles POST /v1/mcq/index.
func (h *MCQHandler) Index(c *gin.Context) {
	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apierrors.ErrInvalidParam.WithMessage(err.Error()))
		return
	}
	if (req.SourceURL == "") == (req.Directory == "") {
		response.Fail(c, apierrors.ErrInvalidParam.WithMessage("exactly one of source_url and directory is required"))
		return
	}

	ctx := c.Request.Context()
	var (
		dataset *model.Dataset
		err     error
	)
	if req.SourceURL != "" {
		dataset, err = h.service.IndexFromURL(ctx, req.Subject, req.SourceURL)
	} else {
		dataset, err = h.service.IndexDirectory(ctx, req.Subject, req.Directory)
	}
	if err != nil {
		if errors.Is(err, biz.ErrDuplicateDataset) {
			// The indexer returns the dataset that already covers this
			// content; surface it so the caller can reference it.
			response.FailWithData(c, apierrors.ErrDatasetExists, dataset)
			return
		}
		if errors.Is(err, biz.ErrInvalidSubject) {
			response.Fail(c, apierrors.ErrInvalidSubject.WithMessage(err.Error()))
			return
		}
		logger.Errorw("Indexing failed", "subject", req.Subject, "error", err.Error())
		response.Fail(c, apierrors.ErrIndexing.WithCause(err))
		return
	}
	response.OK(c, dataset)
}

// Datasets handles GET /v1/mcq/datasets.
func (h *MCQHandler) Datasets(c *gin.Context) {
	list, err := h.service.ListDatasets(c.Request.Context(), c.Query("subject"))
	if err != nil {
		response.Fail(c, translateError(err))
		return
	}
	response.OK(c, gin.H{"datasets": list, "total": len(list)})
}

// Subjects handles GET /v1/mcq/subjects.
func (h *MCQHandler) Subjects(c *gin.Context) {
	response.OK(c, gin.H{"subjects": h.service.Subjects()})
}

// Stats handles GET /v1/mcq/stats.
func (h *MCQHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, stats)
}

// ClearCache handles DELETE /v1/mcq/cache.
func (h *MCQHandler) ClearCache(c *gin.Context) {
	deleted, err := h.service.ClearCache(c.Request.Context())
	if err != nil {
		response.Fail(c, apierrors.ErrCache.WithCause(err))
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}

// Metrics handles GET /metrics with a Prometheus text exposition.
func (h *MCQHandler) Metrics(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8",
		[]byte(metrics.GetMetrics().Export("pcb", "tutor")))
}

// translateError maps pipeline errors onto API error codes.
func translateError(err error) *apierrors.Errno {
	switch {
	case errors.Is(err, biz.ErrInvalidSubject):
		return apierrors.ErrInvalidSubject.WithMessage(err.Error())
	case errors.Is(err, biz.ErrSubjectMismatch):
		return apierrors.ErrTopicMismatch.WithMessage(err.Error())
	case errors.Is(err, biz.ErrNoContent):
		return apierrors.ErrNoMaterial.WithMessage(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.ErrTimeout
	default:
		logger.Errorw("Generation pipeline error", "error", err.Error())
		return apierrors.ErrGeneration.WithCause(err)
	}
}
