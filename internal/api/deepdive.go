package api

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muletrace/forensics-engine/internal/heuristics"
)

// Per-Account Forensic Deep-Dive
//
// Builds a narrative report for one account out of the latest analysis
// snapshot: topology role, temporal density, behavioral flags. The
// nocturnal threshold here (25%) is intentionally lower than the core
// detector's flagging threshold — this endpoint reports leads, the core
// assigns risk.

const reportNocturnalPct = 25.0

type behavioralFlag struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// handleDeepDive answers POST /api/ai-analyze/:account_id.
func (h *APIHandler) handleDeepDive(c *gin.Context) {
	snapshot := h.getSnapshot()
	if snapshot == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No analysis has been run yet"})
		return
	}

	accountID := c.Param("account_id")
	inDeg, outDeg, ok := snapshot.Graph.DegreeOf(accountID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	recs := snapshot.Table.AccountRecords(accountID)
	timed := make([]heuristics.Record, 0, len(recs))
	for _, r := range recs {
		if r.HasTime {
			timed = append(timed, r)
		}
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].Time.Before(timed[j].Time) })

	flags := []behavioralFlag{{
		Type:   "Topology",
		Detail: fmt.Sprintf("Degree centrality (%d in, %d out) confirms intermediary role.", inDeg, outDeg),
	}}

	temporalDetail := "Insufficient temporal metadata available."
	if len(timed) > 0 {
		span := timed[len(timed)-1].Time.Sub(timed[0].Time)

		nightCount := 0
		for _, r := range timed {
			switch r.Time.Hour() {
			case 23, 0, 1, 2, 3, 4:
				nightCount++
			}
		}
		nightPct := float64(nightCount) / float64(len(recs)) * 100
		if nightPct > reportNocturnalPct {
			flags = append(flags, behavioralFlag{
				Type:   "Nocturnal",
				Detail: fmt.Sprintf("%.1f%% of activity occurs in dead-of-night hours (11PM-5AM).", nightPct),
			})
		}

		if span < time.Hour {
			temporalDetail = fmt.Sprintf("High-velocity burst: %d tx in %s.", len(recs), formatDuration(span))
		} else {
			velocity := float64(len(recs)) / math.Max(1, span.Hours())
			temporalDetail = fmt.Sprintf("Temporal density: %.1f tx/hr over a %s window.", velocity, formatDuration(span))
		}

		if cadence, ok := hourlyCadenceCV(timed); ok && cadence < 0.2 {
			flags = append(flags, behavioralFlag{
				Type:   "Robotic",
				Detail: "Highly consistent transaction cadence suggestive of automated pooling.",
			})
		}
	}
	flags = append(flags, behavioralFlag{Type: "Temporal", Detail: temporalDetail})

	role := classifyRole(inDeg, outDeg)
	recommendation := "MONITOR. Potential shell entity in fund-routing chain."
	if inDeg > 10 {
		recommendation = "IMMEDIATE FREEZE. High-velocity aggregator profile detected."
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":       accountID,
		"forensic_summary": fmt.Sprintf("Behavioral analysis of %s reveals a high-risk %s pattern.", accountID, role),
		"behavioral_flags": flags,
		"recommendation":   recommendation,
		"prediction_confidence": 0.85 + 0.10*math.Min(1.0, float64(inDeg+outDeg)/20),
	})
}

// classifyRole maps degree topology onto an investigator-facing role.
func classifyRole(inDeg, outDeg int) string {
	switch {
	case inDeg > 10 && outDeg < 2:
		return "Aggregator (Fan-in)"
	case outDeg > 10 && inDeg < 2:
		return "Distributor (Fan-out)"
	case inDeg >= 1 && outDeg >= 1:
		return "Intermediary Layer"
	default:
		return "Isolated Node"
	}
}

// hourlyCadenceCV computes the coefficient of variation of the account's
// hourly transaction counts. Low CV means robotic, scheduled movement.
func hourlyCadenceCV(timed []heuristics.Record) (float64, bool) {
	if len(timed) < 2 {
		return 0, false
	}
	perHour := make(map[int64]float64)
	minHour, maxHour := int64(math.MaxInt64), int64(math.MinInt64)
	for _, r := range timed {
		h := r.Time.Truncate(time.Hour).Unix() / 3600
		perHour[h]++
		if h < minHour {
			minHour = h
		}
		if h > maxHour {
			maxHour = h
		}
	}
	if maxHour-minHour+1 <= 3 {
		return 0, false
	}
	var (
		n    = float64(maxHour - minHour + 1)
		sum  float64
		sumSq float64
	)
	for h := minHour; h <= maxHour; h++ {
		v := perHour[h]
		sum += v
		sumSq += v * v
	}
	m := sum / n
	if m <= 0 {
		return 0, false
	}
	variance := (sumSq - n*m*m) / (n - 1)
	return math.Sqrt(math.Max(0, variance)) / m, true
}

// formatDuration renders a duration the way an analyst reads it.
func formatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	case secs < 86400:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", secs/86400, (secs%86400)/3600)
	}
}
