package heuristics

import "time"

// Burst & Nocturnal Detector
//
// Two temporal behavior signals, computed over the record table:
//
//   Burst: outgoing records of an active sender are bucketed into 1-hour
//   windows aligned to the hour, zero-filled across the observed range.
//   The account is bursty when max(bucket) > mean + 3·stddev + 5. The +5
//   term suppresses spurious flags when the series is near-constant with
//   tiny variance; a single-bucket series has an undefined deviation and
//   never flags.
//
//   Nocturnal: the share of an account's involved records (either
//   endpoint) whose local hour falls in the night set. Untimed records
//   count toward the involvement total but can never be nocturnal.
//
// Burst scoring is conditional at fusion time (it only contributes to
// otherwise-untagged accounts); nocturnal scoring is unconditional for
// non-legitimate accounts above the threshold. This detector only
// measures — the thresholding of the nocturnal share and the burst guard
// live in fusion.

// BurstNocturnal is the detector's measurement set.
type BurstNocturnal struct {
	Burst    map[string]bool    // senders whose hourly series flagged
	NightPct map[string]float64 // night share per account with involvement > 5
}

// DetectBurstAndNocturnal computes both signals in one table pass.
func DetectBurstAndNocturnal(t *Table, cfg Config) BurstNocturnal {
	res := BurstNocturnal{
		Burst:    make(map[string]bool),
		NightPct: make(map[string]float64),
	}

	outgoing := make(map[string][]Record) // timed outgoing records per sender
	outCount := make(map[string]int)      // all outgoing records per sender
	involved := make(map[string]int)      // records touching the account
	night := make(map[string]int)         // timed nocturnal involvements
	for _, r := range t.Records {
		outCount[r.Sender]++
		if r.HasTime {
			outgoing[r.Sender] = append(outgoing[r.Sender], r)
		}
		isNight := r.HasTime && cfg.NocturnalHours[r.Time.Hour()]
		for _, account := range involvedAccounts(r) {
			involved[account]++
			if isNight {
				night[account]++
			}
		}
	}

	for sender, recs := range outgoing {
		if outCount[sender] < cfg.BurstSenderMinRecords {
			continue
		}
		buckets := hourlyCounts(recs)
		if maxOf(buckets) > mean(buckets)+3*stddev(buckets)+5 {
			res.Burst[sender] = true
		}
	}

	for account, total := range involved {
		if total > 5 {
			res.NightPct[account] = float64(night[account]) / float64(total) * 100
		}
	}
	return res
}

// involvedAccounts lists the distinct endpoints of a record; a self-loop
// involves its account once.
func involvedAccounts(r Record) []string {
	if r.Sender == r.Receiver {
		return []string{r.Sender}
	}
	return []string{r.Sender, r.Receiver}
}

// hourlyCounts buckets records into hour-aligned windows, zero-filling the
// observed range.
func hourlyCounts(recs []Record) []float64 {
	if len(recs) == 0 {
		return nil
	}
	perHour := make(map[int64]float64)
	minHour, maxHour := int64(1<<62), int64(-1<<62)
	for _, r := range recs {
		h := r.Time.Truncate(time.Hour).Unix() / 3600
		perHour[h]++
		if h < minHour {
			minHour = h
		}
		if h > maxHour {
			maxHour = h
		}
	}
	counts := make([]float64, 0, maxHour-minHour+1)
	for h := minHour; h <= maxHour; h++ {
		counts = append(counts, perHour[h])
	}
	return counts
}
