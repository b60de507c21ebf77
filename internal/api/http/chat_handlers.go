package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bridgefs/bridgefs/internal/dispatch"
)

type sendRequest struct {
	Message string   `json:"message" binding:"required"`
	Targets []string `json:"targets"`
}

type retryRequest struct {
	Substitute *struct {
		Failed    string `json:"failed" binding:"required"`
		Alternate string `json:"alternate" binding:"required"`
	} `json:"substitute"`
}

type sendResult struct {
	Target string `json:"target"`
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
	Ok     bool   `json:"ok"`
}

// SendMessage dispatches a chat message. A "name: payload" prefix in
// the message targets one backend explicitly; otherwise the request's
// target list, or every enabled backend, receives it.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	results := h.dispatcher.Send(c.Request.Context(), req.Message, req.Targets)
	h.recordDispatch(results, start)

	c.JSON(http.StatusOK, gin.H{"results": toSendResults(results)})
}

// RetryMessage resends the last dispatched payload, optionally
// substituting one alternate backend for a failed one.
func (h *Handlers) RetryMessage(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	var results []dispatch.Result
	if req.Substitute != nil {
		results = h.dispatcher.RetryWith(c.Request.Context(), req.Substitute.Failed, req.Substitute.Alternate)
	} else {
		results = h.dispatcher.Retry(c.Request.Context())
	}
	h.recordDispatch(results, start)

	c.JSON(http.StatusOK, gin.H{"results": toSendResults(results)})
}

func (h *Handlers) recordDispatch(results []dispatch.Result, start time.Time) {
	elapsed := time.Since(start)
	for _, r := range results {
		status := "ok"
		if !r.Ok() {
			status = "error"
		}
		h.metrics.RecordDispatch(r.Target, status, elapsed)
	}
}

func toSendResults(results []dispatch.Result) []sendResult {
	out := make([]sendResult, len(results))
	for i, r := range results {
		out[i] = sendResult{Target: r.Target, Reply: r.Reply, Ok: r.Ok()}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}
