package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

const outboxListLimit = 100

type OutboxHandler struct {
	outbox store.OutboxStore
}

func NewOutboxHandler(outbox store.OutboxStore) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

func (h *OutboxHandler) List(c *gin.Context) {
	var status *model.OutboxStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OutboxStatus(raw)
		switch s {
		case model.OutboxStatusPending, model.OutboxStatusConfirmed, model.OutboxStatusSent,
			model.OutboxStatusFailed, model.OutboxStatusCanceled:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
	}

	records, err := h.outbox.List(c.Request.Context(), status, outboxListLimit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list outbox", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list outbox"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *OutboxHandler) Confirm(c *gin.Context) {
	h.transition(c, func(id int64) (*model.Outbox, error) {
		return h.outbox.Confirm(c.Request.Context(), id, time.Now().UTC())
	})
}

func (h *OutboxHandler) Retry(c *gin.Context) {
	h.transition(c, func(id int64) (*model.Outbox, error) {
		return h.outbox.Retry(c.Request.Context(), id)
	})
}

func (h *OutboxHandler) Cancel(c *gin.Context) {
	h.transition(c, func(id int64) (*model.Outbox, error) {
		return h.outbox.Cancel(c.Request.Context(), id)
	})
}

func (h *OutboxHandler) transition(c *gin.Context, apply func(id int64) (*model.Outbox, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid outbox id"})
		return
	}

	rec, err := apply(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "outbox record not found"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "record status does not permit this action"})
		default:
			slog.ErrorContext(c.Request.Context(), "outbox transition failed", "error", err, "outbox_id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "outbox transition failed"})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}
