// Package http contains the gin handlers for the hub's HTTP API.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bridgefs/bridgefs/internal/dispatch"
	"github.com/bridgefs/bridgefs/internal/infrastructure/logging"
	"github.com/bridgefs/bridgefs/internal/infrastructure/monitoring"
	"github.com/bridgefs/bridgefs/internal/registry"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	backends   *registry.Manager
	dispatcher *dispatch.Dispatcher
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(
	backends *registry.Manager,
	dispatcher *dispatch.Dispatcher,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
) *Handlers {
	return &Handlers{
		backends:   backends,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "bridgefs",
		"version": "1.0.0",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"backends": h.backends.Stats(),
		"uptime":   h.metrics.Uptime().String(),
	})
}

// ListBackends lists all registered backends.
func (h *Handlers) ListBackends(c *gin.Context) {
	regs := h.backends.All()
	c.JSON(http.StatusOK, gin.H{
		"backends": regs,
		"count":    len(regs),
	})
}

// EnableBackend enables a registered backend.
func (h *Handlers) EnableBackend(c *gin.Context) {
	name := c.Param("name")
	if err := h.backends.Enable(name); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{"backend": name, "enabled": true})
}

// DisableBackend disables a backend without disposing it.
func (h *Handlers) DisableBackend(c *gin.Context) {
	name := c.Param("name")
	if err := h.backends.Disable(name); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{"backend": name, "enabled": false})
}

// ReloadBackend disposes and reconstructs a backend.
func (h *Handlers) ReloadBackend(c *gin.Context) {
	name := c.Param("name")
	if err := h.backends.Reload(c.Request.Context(), name); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{"backend": name, "reloaded": true})
}

// TestBackend probes a backend's connectivity.
func (h *Handlers) TestBackend(c *gin.Context) {
	name := c.Param("name")
	adapter, ok := h.backends.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "backend not found: " + name})
		return
	}
	ok, detail := adapter.TestConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"backend": name,
		"ok":      ok,
		"detail":  detail,
	})
}

func (h *Handlers) syncGauges() {
	h.metrics.SetBackendCounts(len(h.backends.All()), len(h.backends.Enabled()))
}

// statusFor maps adapter sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, vfs.ErrUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, vfs.ErrPathEscapesRoot):
		return http.StatusBadRequest
	case errors.Is(err, vfs.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
