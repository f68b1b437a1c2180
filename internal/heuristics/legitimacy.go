package heuristics

import (
	"sort"
	"time"
)

// Legitimacy Filter
//
// High-volume merchants and payroll accounts trip the same structural
// signals as laundering patterns (many counterparties, recurring volume),
// so they are identified up front and exempted from flagging entirely.
// Both rules model stability: smurfing and burst behavior is unstable,
// legitimate commerce is not.
//
//   Hub/Merchant: ≥ hubMinSenders distinct senders across the full table
//     AND stddev(daily incoming count) < hubCV × mean(daily incoming count),
//     daily counts bucketed per calendar day with missing days in the
//     observed range counted as zero. A one-day concentration of senders
//     has an undefined daily deviation and never qualifies.
//
//   Payroll: for an ordered pair with ≥ payrollMinRecords records, every
//     consecutive timestamp gap lies in [gapMin, gapMax] whole days AND
//     stddev(amount) < amountCV × mean(amount) → the receiver is legitimate.

// LegitimateSet is the set of accounts exempt from flagging.
type LegitimateSet map[string]bool

// Contains reports whether the account is exempt.
func (s LegitimateSet) Contains(account string) bool { return s[account] }

// IdentifyLegitimateEntities applies the hub/merchant and payroll rules and
// returns the union of their results.
func IdentifyLegitimateEntities(t *Table, cfg Config) LegitimateSet {
	legit := make(LegitimateSet)

	identifyMerchants(t, cfg, legit)
	identifyPayroll(t, cfg, legit)

	return legit
}

func identifyMerchants(t *Table, cfg Config, legit LegitimateSet) {
	senders := make(map[string]map[string]bool) // receiver → distinct senders
	incoming := make(map[string][]Record)       // receiver → timed incoming records
	for _, r := range t.Records {
		set, ok := senders[r.Receiver]
		if !ok {
			set = make(map[string]bool)
			senders[r.Receiver] = set
		}
		set[r.Sender] = true
		if r.HasTime {
			incoming[r.Receiver] = append(incoming[r.Receiver], r)
		}
	}

	for receiver, set := range senders {
		if len(set) < cfg.HubMinSenders {
			continue
		}
		daily := dailyCounts(incoming[receiver])
		if len(daily) == 0 {
			continue
		}
		if sd := stddev(daily); sd < mean(daily)*cfg.HubCVThreshold {
			legit[receiver] = true
		}
	}
}

// dailyCounts buckets records per calendar day and zero-fills missing days
// inside the observed range.
func dailyCounts(recs []Record) []float64 {
	if len(recs) == 0 {
		return nil
	}
	perDay := make(map[int64]float64)
	minDay, maxDay := int64(1<<62), int64(-1<<62)
	for _, r := range recs {
		day := dayIndex(r.Time)
		perDay[day]++
		if day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
	}
	counts := make([]float64, 0, maxDay-minDay+1)
	for d := minDay; d <= maxDay; d++ {
		counts = append(counts, perDay[d])
	}
	return counts
}

func dayIndex(ts time.Time) int64 {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location()).Unix() / 86400
}

func identifyPayroll(t *Table, cfg Config, legit LegitimateSet) {
	type pair struct{ sender, receiver string }
	groups := make(map[pair][]Record)
	for _, r := range t.Records {
		p := pair{r.Sender, r.Receiver}
		groups[p] = append(groups[p], r)
	}

	for p, recs := range groups {
		if len(recs) < cfg.PayrollMinRecords {
			continue
		}
		timed := make([]Record, 0, len(recs))
		for _, r := range recs {
			if r.HasTime {
				timed = append(timed, r)
			}
		}
		sort.Slice(timed, func(i, j int) bool { return timed[i].Time.Before(timed[j].Time) })

		cadenceOK := true
		for i := 1; i < len(timed); i++ {
			gapDays := int(timed[i].Time.Sub(timed[i-1].Time).Hours() / 24)
			if gapDays < cfg.PayrollGapMinDays || gapDays > cfg.PayrollGapMaxDays {
				cadenceOK = false
				break
			}
		}
		if !cadenceOK {
			continue
		}

		amounts := make([]float64, len(recs))
		for i, r := range recs {
			amounts[i] = r.Amount
		}
		if sd := stddev(amounts); sd < mean(amounts)*cfg.PayrollAmountCV {
			legit[p.receiver] = true
		}
	}
}
