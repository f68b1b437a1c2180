package heuristics

import (
	"fmt"
	"time"
)

// Test data builders shared across the detector tests.

var testBase = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// testDawn keeps long same-day sequences inside one calendar day without
// touching night hours.
var testDawn = time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC)

func rawTx(id, sender, receiver string, amount float64, ts time.Time) RawRecord {
	return RawRecord{
		TransactionID: id,
		SenderID:      sender,
		ReceiverID:    receiver,
		Amount:        fmt.Sprintf("%.2f", amount),
		Timestamp:     ts.Format(TimestampLayout),
	}
}

// tableOf normalizes raw rows for direct detector-level tests.
func tableOf(rows []RawRecord) *Table {
	return Normalize(rows)
}

// triangleRows builds a closed 3-cycle a→b→c→a, one record each.
func triangleRows(a, b, c string, ts time.Time) []RawRecord {
	return []RawRecord{
		rawTx("TX_TRI_0", a, b, 1000, ts),
		rawTx("TX_TRI_1", b, c, 1000, ts.Add(time.Hour)),
		rawTx("TX_TRI_2", c, a, 1000, ts.Add(2*time.Hour)),
	}
}

// fanInRows sends one record from each of n distinct senders to sink,
// spaced `gap` apart.
func fanInRows(prefix, sink string, n int, start time.Time, gap time.Duration) []RawRecord {
	rows := make([]RawRecord, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_%s_%d", prefix, i),
			fmt.Sprintf("%s_%03d", prefix, i),
			sink,
			500,
			start.Add(time.Duration(i)*gap),
		))
	}
	return rows
}

// chainRows links nodes linearly with one record per hop.
func chainRows(nodes []string, start time.Time) []RawRecord {
	rows := make([]RawRecord, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		rows = append(rows, rawTx(
			fmt.Sprintf("TX_CHAIN_%d", i),
			nodes[i], nodes[i+1],
			2500,
			start.Add(time.Duration(i)*time.Hour),
		))
	}
	return rows
}
