package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/internal/http/dto"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

type ConfigTopHandler struct {
	configTop store.ConfigTopStore
}

func NewConfigTopHandler(configTop store.ConfigTopStore) *ConfigTopHandler {
	return &ConfigTopHandler{configTop: configTop}
}

func (h *ConfigTopHandler) List(c *gin.Context) {
	records, err := h.configTop.List(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list top identities", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list top identities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"identities": records})
}

func (h *ConfigTopHandler) Create(c *gin.Context) {
	var req dto.CreateTopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if issues := req.Validate(); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "issues": issues})
		return
	}
	source, ok := model.ParseSource(req.Source)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	rec, err := h.configTop.Upsert(c.Request.Context(), &model.ConfigTop{
		ID:       id.New(),
		Source:   source,
		Identity: req.Identity,
		Name:     req.Name,
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to upsert top identity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save top identity"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *ConfigTopHandler) Delete(c *gin.Context) {
	recID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.configTop.Delete(c.Request.Context(), recID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "top identity not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to delete top identity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete top identity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
