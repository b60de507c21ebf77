package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Searcher is implemented by adapters that can walk their tree for
// matches beyond single-directory listing.
type Searcher interface {
	Search(pattern string) ([]string, error)
}

type writeRequest struct {
	Path      string `json:"path" binding:"required"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite"`
}

type appendRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// ListEntries lists files or directories under a path.
func (h *Handlers) ListEntries(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	path := c.Query("path")
	pattern := c.Query("pattern")
	kind := c.DefaultQuery("kind", "files")

	var (
		entries []string
		err     error
	)
	start := time.Now()
	switch kind {
	case "files":
		entries, err = adapter.ListFiles(path, pattern)
	case "dirs":
		entries, err = adapter.ListDirectories(path, pattern)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be files or dirs"})
		return
	}
	h.recordOp(adapter, "list", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"path":    path,
		"entries": entries,
		"count":   len(entries),
	})
}

// ReadFile returns file contents.
func (h *Handlers) ReadFile(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	path := c.Query("path")

	start := time.Now()
	data, err := adapter.Read(path)
	h.recordOp(adapter, "read", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"path":    path,
		"content": string(data),
		"size":    len(data),
	})
}

// FileSize returns the size of a file.
func (h *Handlers) FileSize(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	path := c.Query("path")

	start := time.Now()
	size, err := adapter.Size(path)
	h.recordOp(adapter, "size", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"path":    path,
		"size":    size,
	})
}

// WriteFile stores content at a path.
func (h *Handlers) WriteFile(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	err := adapter.Write(req.Path, []byte(req.Content), req.Overwrite)
	h.recordOp(adapter, "write", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"path":    req.Path,
		"written": true,
	})
}

// AppendFile appends content to a path.
func (h *Handlers) AppendFile(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	err := adapter.Append(req.Path, []byte(req.Content))
	h.recordOp(adapter, "append", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend":  adapter.Definition().Name,
		"path":     req.Path,
		"appended": true,
	})
}

// DeleteEntry removes a file or directory.
func (h *Handlers) DeleteEntry(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	path := c.Query("path")

	start := time.Now()
	err := adapter.Delete(path)
	h.recordOp(adapter, "delete", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"path":    path,
		"deleted": true,
	})
}

// SearchFiles walks the backend tree for pattern matches. Only adapters
// backed by a real directory tree support it.
func (h *Handlers) SearchFiles(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}
	searcher, ok := adapter.(Searcher)
	if !ok {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": vfs.ErrUnsupported.Error()})
		return
	}
	pattern := c.Query("pattern")

	start := time.Now()
	matches, err := searcher.Search(pattern)
	h.recordOp(adapter, "search", err, start)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backend": adapter.Definition().Name,
		"pattern": pattern,
		"matches": matches,
		"count":   len(matches),
	})
}

// adapter resolves the :backend route parameter against the registry.
func (h *Handlers) adapter(c *gin.Context) (vfs.Adapter, bool) {
	name := c.Param("backend")
	adapter, ok := h.backends.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "backend not found: " + name})
		return nil, false
	}
	return adapter, true
}

func (h *Handlers) recordOp(adapter vfs.Adapter, op string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.RecordVFSOp(adapter.Definition().Name, op, status, time.Since(start))
}
