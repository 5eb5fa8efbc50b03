package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulsedesk.app/pulse/internal/store"
)

const (
	threadListLimit = 100
	eventListLimit  = 200
)

type ThreadsHandler struct {
	threads store.ThreadStore
	events  store.EventStore
	digests store.DigestStore
}

func NewThreadsHandler(threads store.ThreadStore, events store.EventStore, digests store.DigestStore) *ThreadsHandler {
	return &ThreadsHandler{
		threads: threads,
		events:  events,
		digests: digests,
	}
}

func (h *ThreadsHandler) List(c *gin.Context) {
	threads, err := h.threads.ListRecent(c.Request.Context(), threadListLimit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list threads", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (h *ThreadsHandler) Events(c *gin.Context) {
	id, ok := threadID(c)
	if !ok {
		return
	}
	events, err := h.events.ListByThread(c.Request.Context(), id, eventListLimit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list thread events", "error", err, "thread_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *ThreadsHandler) Digest(c *gin.Context) {
	id, ok := threadID(c)
	if !ok {
		return
	}
	digest, err := h.digests.GetLatestByThread(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no digest for thread"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to load digest", "error", err, "thread_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load digest"})
		return
	}
	c.JSON(http.StatusOK, digest)
}

func threadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return 0, false
	}
	return id, true
}
