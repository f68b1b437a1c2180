package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muletrace/forensics-engine/internal/heuristics"
	"github.com/muletrace/forensics-engine/pkg/models"
)

// Server-Sent Event Streaming
//
// Analyses can take seconds on large uploads, so both ingestion endpoints
// stream: progress events with a status label and a fraction, then one
// final event carrying the complete result bundle. On failure a single
// error event is emitted instead — progress events never interleave with
// partial findings.

// streamAnalysis runs the engine over the rows and streams progress plus
// the final bundle as text/event-stream.
func (h *APIHandler) streamAnalysis(c *gin.Context, rows []heuristics.RawRecord) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	emit := func(payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[API] SSE marshal error: %v", err)
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	// Immediate heartbeat so proxies with idle timeouts keep the
	// connection open while the sweep runs.
	emit(gin.H{"status": "System Initializing...", "progress": 0.05})

	progress := func(label string, fraction float64) {
		emit(gin.H{"status": label, "progress": fraction})
	}

	result, snapshot, err := h.engine.Analyze(c.Request.Context(), rows, progress)
	if err != nil {
		emit(gin.H{"error": err.Error(), "complete": true})
		return
	}

	h.setSnapshot(snapshot)
	h.persistAndBroadcast(c, result)

	emit(analysisComplete{AnalysisResponse: result, Complete: true})
}

// analysisComplete is the final SSE payload: the bundle plus a terminator
// flag the frontend keys on.
type analysisComplete struct {
	*models.AnalysisResponse
	Complete bool `json:"complete"`
}

// persistAndBroadcast stores the run (best-effort) and pushes a summary
// alert to websocket subscribers.
func (h *APIHandler) persistAndBroadcast(c *gin.Context, result *models.AnalysisResponse) {
	if h.dbStore != nil {
		if err := h.dbStore.SaveAnalysis(c.Request.Context(), result); err != nil {
			log.Printf("[API] Failed to persist analysis %s: %v", result.AnalysisID, err)
		}
	}
	if h.wsHub != nil {
		h.wsHub.BroadcastAnalysisAlert(result)
	}
}
