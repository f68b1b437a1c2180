package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/muletrace/forensics-engine/internal/datagen"
	"github.com/muletrace/forensics-engine/internal/db"
	"github.com/muletrace/forensics-engine/internal/heuristics"
)

// APIHandler owns the HTTP surface: analysis streaming, the deep-dive
// report and health. It retains the latest completed analysis snapshot so
// per-account follow-up endpoints can answer without re-running the sweep.
type APIHandler struct {
	engine  *heuristics.Engine
	dbStore *db.PostgresStore
	wsHub   *Hub

	mu       sync.RWMutex
	snapshot *heuristics.Snapshot
}

// SetupRouter wires the Gin router: CORS, rate limiting on the expensive
// endpoints, optional bearer auth, and the API routes.
func SetupRouter(engine *heuristics.Engine, dbStore *db.PostgresStore, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	// CORS — configurable via ALLOWED_ORIGINS (comma-separated), "*" or
	// empty for development.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{engine: engine, dbStore: dbStore, wsHub: wsHub}
	limiter := NewRateLimiter(30, 10)

	api := r.Group("/api")
	{
		api.GET("/health", handler.handleHealth)
		api.GET("/stream", wsHub.Subscribe)

		protected := api.Group("", AuthMiddleware(), limiter.Middleware())
		{
			protected.POST("/upload", handler.handleUpload)
			protected.POST("/generate-demo", handler.handleGenerateDemo)
			protected.POST("/ai-analyze/:account_id", handler.handleDeepDive)
			protected.GET("/runs", handler.handleListRuns)
		}
	}

	return r
}

// handleHealth reports engine status and capabilities for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Financial Forensics Engine API",
		"capabilities": gin.H{
			"smurfing_windows": true,
			"shell_chains":     true,
			"cycle_detection":  true,
			"burst_nocturnal":  true,
			"ring_clustering":  true,
		},
		"dbConnected": h.dbStore != nil,
	})
}

// handleUpload accepts a CSV file and streams the analysis as SSE.
func (h *APIHandler) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are allowed"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file upload"})
		return
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.streamAnalysis(c, rows)
}

// handleGenerateDemo builds a synthetic dataset and streams its analysis.
func (h *APIHandler) handleGenerateDemo(c *gin.Context) {
	count := 1500
	if v := c.Query("transactions"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}
	rows := datagen.Generate(count, datagen.DefaultSeed)
	h.streamAnalysis(c, rows)
}

// handleListRuns returns recent persisted analysis runs.
func (h *APIHandler) handleListRuns(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.dbStore.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs})
}

// setSnapshot publishes the latest completed analysis for follow-up
// endpoints.
func (h *APIHandler) setSnapshot(s *heuristics.Snapshot) {
	h.mu.Lock()
	h.snapshot = s
	h.mu.Unlock()
}

func (h *APIHandler) getSnapshot() *heuristics.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot
}
