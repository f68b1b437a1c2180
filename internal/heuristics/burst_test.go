package heuristics

import (
	"fmt"
	"testing"
	"time"
)

// burstRows gives ACCT_X a sparse baseline of one transaction per hour and
// then a concentrated spike inside a single hour bucket.
func burstRows(baseline, spike int) []RawRecord {
	var rows []RawRecord
	for i := 0; i < baseline; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_BASE_%d", i), "ACCT_X", fmt.Sprintf("D_%d", i%3), 50,
			testBase.Add(time.Duration(i)*time.Hour),
		))
	}
	for i := 0; i < spike; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_SPIKE_%d", i), "ACCT_X", fmt.Sprintf("D_%d", i%3), 50,
			testBase.Add(time.Duration(baseline+1)*time.Hour+time.Duration(i)*time.Minute),
		))
	}
	return rows
}

func TestBurstDetection(t *testing.T) {
	res := DetectBurstAndNocturnal(tableOf(burstRows(20, 30)), DefaultConfig())
	if !res.Burst["ACCT_X"] {
		t.Error("concentrated spike not flagged as burst")
	}
}

// A flat series never flags: the +5 slack absorbs near-constant noise.
func TestBurstFlatSeriesNotFlagged(t *testing.T) {
	res := DetectBurstAndNocturnal(tableOf(burstRows(30, 0)), DefaultConfig())
	if res.Burst["ACCT_X"] {
		t.Error("flat hourly series flagged as burst")
	}
}

// A single-bucket series has an undefined deviation and never flags.
func TestBurstSingleBucketNotFlagged(t *testing.T) {
	var rows []RawRecord
	for i := 0; i < 50; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_%d", i), "ONE_SHOT", fmt.Sprintf("D_%d", i%3), 50,
			testBase.Add(time.Duration(i)*time.Second),
		))
	}
	res := DetectBurstAndNocturnal(tableOf(rows), DefaultConfig())
	if res.Burst["ONE_SHOT"] {
		t.Error("single-bucket series flagged as burst")
	}
}

func TestBurstRequiresMinimumRecords(t *testing.T) {
	var rows []RawRecord
	for i := 0; i < 5; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_%d", i), "QUIET", "D", 50,
			testBase.Add(time.Duration(i)*time.Hour),
		))
	}
	res := DetectBurstAndNocturnal(tableOf(rows), DefaultConfig())
	if res.Burst["QUIET"] {
		t.Error("account below the record minimum considered for bursts")
	}
}

func TestNocturnalShare(t *testing.T) {
	night := time.Date(2026, 1, 10, 1, 0, 0, 0, time.UTC) // 01:00
	day := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)  // 14:00

	var rows []RawRecord
	for i := 0; i < 6; i++ {
		rows = append(rows, rawTx(fmt.Sprintf("N_%d", i), "OWL", fmt.Sprintf("R_%d", i), 10, night.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 4; i++ {
		rows = append(rows, rawTx(fmt.Sprintf("D_%d", i), "OWL", fmt.Sprintf("R_%d", i+6), 10, day.Add(time.Duration(i)*time.Minute)))
	}
	res := DetectBurstAndNocturnal(tableOf(rows), DefaultConfig())
	if pct := res.NightPct["OWL"]; pct != 60 {
		t.Errorf("OWL night share = %v, want 60", pct)
	}
	// Each receiver is involved only once: below the >5 involvement gate.
	if _, ok := res.NightPct["R_0"]; ok {
		t.Error("account below the involvement gate got a night share")
	}
}

func TestNocturnalHourBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		hour  int
		night bool
	}{
		{22, false}, {23, true}, {0, true}, {4, true}, {5, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("hour_%d", tt.hour), func(t *testing.T) {
			if cfg.NocturnalHours[tt.hour] != tt.night {
				t.Errorf("hour %d night = %v, want %v", tt.hour, cfg.NocturnalHours[tt.hour], tt.night)
			}
		})
	}
}
