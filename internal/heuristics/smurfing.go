package heuristics

import (
	"fmt"
	"sort"
	"time"
)

// Smurfing Detector (Fan-in / Fan-out)
//
// Structuring distributes funds across many counterparties to stay under
// reporting thresholds: many distinct senders converging on one receiver
// (fan-in) or one sender dispersing to many receivers (fan-out) within a
// short window.
//
// For each account the time-sorted record sequence is swept once with a
// sliding window: a deque of (timestamp, counterparty) plus a multiset of
// active counterparties, incremented on entry and decremented on expiry.
// The window is (t − width, t]: a counterparty seen exactly `width` before
// the current record has expired, records sharing the current timestamp
// all count. The first time the distinct count reaches the threshold the
// account is flagged; at most one finding per direction per account.
//
// Untimed records cannot participate in a window and are skipped.

// Finding is one detector observation: a pattern tag, a score delta and a
// human-readable explanation, keyed by account. Findings are never mutated
// after emission.
type Finding struct {
	Account     string
	Tag         string
	Delta       float64
	Explanation string
}

const (
	tagFanIn  = "fan_in"
	tagFanOut = "fan_out"

	smurfingDelta = 40
)

// DetectSmurfing runs the fan-in and fan-out sweeps and returns the
// findings sorted by (account, tag) for deterministic fusion order.
func DetectSmurfing(t *Table, cfg Config) []Finding {
	timed := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.HasTime {
			timed = append(timed, r)
		}
	}
	sort.Slice(timed, func(i, j int) bool {
		if !timed[i].Time.Equal(timed[j].Time) {
			return timed[i].Time.Before(timed[j].Time)
		}
		return timed[i].seq < timed[j].seq
	})

	var findings []Finding

	fanIn := sweepWindow(timed, cfg,
		func(r Record) (owner, counterparty string) { return r.Receiver, r.Sender })
	for _, account := range fanIn {
		findings = append(findings, Finding{
			Account: account,
			Tag:     tagFanIn,
			Delta:   smurfingDelta,
			Explanation: fmt.Sprintf("Fan-in aggregation: %d+ distinct senders within a %s window.",
				cfg.SmurfingThreshold, windowLabel(cfg.SmurfingWindow)),
		})
	}

	fanOut := sweepWindow(timed, cfg,
		func(r Record) (owner, counterparty string) { return r.Sender, r.Receiver })
	for _, account := range fanOut {
		findings = append(findings, Finding{
			Account: account,
			Tag:     tagFanOut,
			Delta:   smurfingDelta,
			Explanation: fmt.Sprintf("Fan-out dispersal: %d+ distinct receivers within a %s window.",
				cfg.SmurfingThreshold, windowLabel(cfg.SmurfingWindow)),
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Account != findings[j].Account {
			return findings[i].Account < findings[j].Account
		}
		return findings[i].Tag < findings[j].Tag
	})
	return findings
}

type windowEntry struct {
	ts           time.Time
	counterparty string
}

// sweepWindow returns the sorted accounts whose distinct-counterparty count
// reaches the threshold inside the sliding window at any record.
func sweepWindow(timed []Record, cfg Config, roles func(Record) (string, string)) []string {
	perOwner := make(map[string][]windowEntry)
	for _, r := range timed {
		owner, counterparty := roles(r)
		perOwner[owner] = append(perOwner[owner], windowEntry{r.Time, counterparty})
	}

	var flagged []string
	for owner, seq := range perOwner {
		if distinctInWindow(seq, cfg.SmurfingWindow) >= cfg.SmurfingThreshold {
			flagged = append(flagged, owner)
		}
	}
	sort.Strings(flagged)
	return flagged
}

// distinctInWindow reports the maximum distinct-counterparty count observed
// in any window position. seq must be in ascending time order.
func distinctInWindow(seq []windowEntry, width time.Duration) int {
	active := make(map[string]int)
	peak := 0
	head := 0
	for _, e := range seq {
		cutoff := e.ts.Add(-width)
		for head < len(seq) && !seq[head].ts.After(cutoff) {
			old := seq[head]
			active[old.counterparty]--
			if active[old.counterparty] == 0 {
				delete(active, old.counterparty)
			}
			head++
		}
		active[e.counterparty]++
		if len(active) > peak {
			peak = len(active)
		}
	}
	return peak
}

func windowLabel(d time.Duration) string {
	if h := d.Hours(); h == float64(int(h)) {
		return fmt.Sprintf("%d-hour", int(h))
	}
	return d.String()
}
