package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsedesk.app/pulse/internal/http/dto"
	"pulsedesk.app/pulse/internal/secrets"
	"pulsedesk.app/pulse/internal/store"
)

type SecretsHandler struct {
	secrets *secrets.Service
}

func NewSecretsHandler(svc *secrets.Service) *SecretsHandler {
	return &SecretsHandler{secrets: svc}
}

func (h *SecretsHandler) List(c *gin.Context) {
	stored, err := h.secrets.List(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list secrets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list secrets"})
		return
	}
	keys := make([]string, 0, len(stored))
	for _, s := range stored {
		keys = append(keys, s.Key)
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// Get reports presence only. The decrypted value never crosses the API.
func (h *SecretsHandler) Get(c *gin.Context) {
	key := c.Param("key")
	_, err := h.secrets.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			c.JSON(http.StatusOK, dto.SecretResponse{Key: key, Exists: false})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to resolve secret", "error", err, "key", key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve secret"})
		return
	}
	c.JSON(http.StatusOK, dto.SecretResponse{Key: key, Exists: true})
}

func (h *SecretsHandler) Put(c *gin.Context) {
	key := c.Param("key")

	var req dto.PutSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must not be empty"})
		return
	}

	if err := h.secrets.Set(c.Request.Context(), key, req.Value); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to store secret", "error", err, "key", key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store secret"})
		return
	}
	c.JSON(http.StatusOK, dto.SecretResponse{Key: key, Exists: true})
}

func (h *SecretsHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if err := h.secrets.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "secret not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to delete secret", "error", err, "key", key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete secret"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
