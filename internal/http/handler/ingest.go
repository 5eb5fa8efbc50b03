package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"pulsedesk.app/pulse/internal/http/dto"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/signature"
)

type IngestHandler struct {
	service     service.IngestService
	verifier    *signature.Verifier
	traceHeader string
}

func NewIngestHandler(svc service.IngestService, verifier *signature.Verifier, traceHeader string) *IngestHandler {
	return &IngestHandler{
		service:     svc,
		verifier:    verifier,
		traceHeader: traceHeader,
	}
}

// Ingest handles POST /ingest/:source. The signature covers the raw body, so
// the body is read before any JSON decoding.
func (h *IngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	sig := c.GetHeader("X-Signature")
	if sig == "" {
		sig = c.GetHeader("X-Hub-Signature-256")
	}
	if !h.verifier.Verify(body, sig) {
		slog.WarnContext(ctx, "rejected ingest with bad signature", "source", c.Param("source"))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	source, ok := model.ParseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	var req dto.IngestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if issues := req.Validate(); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "issues": issues})
		return
	}

	traceID := c.GetHeader(h.traceHeader)
	if traceID == "" {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			traceID = spanCtx.TraceID().String()
		}
	}
	params := service.IngestParams{
		Source:           source,
		ThreadExternalID: req.ThreadExternalID,
		ThreadTitle:      req.ThreadTitle,
		Participants:     req.Participants,
		EventExternalID:  req.EventExternalID,
		TS:               req.Timestamp(),
		AuthorID:         req.AuthorID,
		AuthorName:       req.AuthorName,
		Text:             req.Text,
		Mentions:         req.Mentions,
		IsDM:             req.IsDM,
		Raw:              req.Raw,
	}
	if traceID != "" {
		params.TraceID = &traceID
	}

	result, err := h.service.Ingest(ctx, params)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest event"})
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{
		OK:      true,
		EventID: result.Event.ID,
		Deduped: result.Deduped,
	})
}
