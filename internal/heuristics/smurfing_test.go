package heuristics

import (
	"fmt"
	"testing"
	"time"
)

func findingsFor(findings []Finding, account string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Account == account {
			out = append(out, f)
		}
	}
	return out
}

func TestFanInDetection(t *testing.T) {
	rows := fanInRows("SRCE", "SINK", 50, testBase, 20*time.Minute)
	findings := DetectSmurfing(tableOf(rows), DefaultConfig())

	got := findingsFor(findings, "SINK")
	if len(got) != 1 {
		t.Fatalf("SINK findings = %d, want 1", len(got))
	}
	if got[0].Tag != "fan_in" || got[0].Delta != 40 {
		t.Errorf("finding = %+v, want fan_in +40", got[0])
	}
	// Senders contribute one record each; none should be flagged.
	if extra := findingsFor(findings, "SRCE_000"); len(extra) != 0 {
		t.Errorf("sender unexpectedly flagged: %+v", extra)
	}
}

func TestFanOutDetection(t *testing.T) {
	var rows []RawRecord
	for i := 0; i < 12; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_%d", i), "SPRAYER", fmt.Sprintf("DEST_%02d", i), 100,
			testBase.Add(time.Duration(i)*time.Hour),
		))
	}
	findings := DetectSmurfing(tableOf(rows), DefaultConfig())
	got := findingsFor(findings, "SPRAYER")
	if len(got) != 1 || got[0].Tag != "fan_out" {
		t.Fatalf("SPRAYER findings = %+v, want one fan_out", got)
	}
}

// Counterparties spaced so that no 72-hour window ever holds ten of them
// must not trigger.
func TestWindowExpiry(t *testing.T) {
	rows := fanInRows("SRCE", "SLOW_SINK", 10, testBase, 8*time.Hour)
	// Ten senders over 72 hours: by the time the tenth arrives the first
	// has aged out of the (t−72h, t] window.
	findings := DetectSmurfing(tableOf(rows), DefaultConfig())
	if got := findingsFor(findings, "SLOW_SINK"); len(got) != 0 {
		t.Errorf("SLOW_SINK flagged despite window expiry: %+v", got)
	}

	// The same ten compressed inside the window do trigger.
	rows = fanInRows("SRCE", "FAST_SINK", 10, testBase, 7*time.Hour)
	findings = DetectSmurfing(tableOf(rows), DefaultConfig())
	if got := findingsFor(findings, "FAST_SINK"); len(got) != 1 {
		t.Errorf("FAST_SINK findings = %d, want 1", len(got))
	}
}

// A duplicate counterparty does not raise the distinct count.
func TestDistinctCounterpartiesOnly(t *testing.T) {
	var rows []RawRecord
	for i := 0; i < 20; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_%d", i), fmt.Sprintf("S_%d", i%9), "SINK", 10,
			testBase.Add(time.Duration(i)*time.Minute),
		))
	}
	findings := DetectSmurfing(tableOf(rows), DefaultConfig())
	if got := findingsFor(findings, "SINK"); len(got) != 0 {
		t.Errorf("9 distinct senders flagged as fan-in: %+v", got)
	}
}

// Untimed records cannot participate in windows.
func TestSmurfingIgnoresUntimedRecords(t *testing.T) {
	var rows []RawRecord
	for i := 0; i < 12; i++ {
		rows = append(rows, RawRecord{
			TransactionID: fmt.Sprintf("TX_%d", i),
			SenderID:      fmt.Sprintf("S_%d", i),
			ReceiverID:    "SINK",
			Amount:        "10",
			Timestamp:     "invalid",
		})
	}
	findings := DetectSmurfing(tableOf(rows), DefaultConfig())
	if len(findings) != 0 {
		t.Errorf("untimed records produced findings: %+v", findings)
	}
}
