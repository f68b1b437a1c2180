package heuristics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record Normalization
//
// Ingested rows arrive from arbitrary CSV exports: amounts with currency
// symbols and thousands separators, timestamps in a handful of layouts,
// missing endpoint ids. Per-row anomalies are repaired, never raised:
//
//   - sender/receiver: missing or blank → the literal "unknown"
//   - amount: "$"/"," stripped, unparseable or negative → 0
//   - timestamp: tried against known layouts; rows whose timestamp cannot
//     be parsed stay in the table (they still contribute to edge totals)
//     but are excluded from every time-windowed detector
//   - transaction id: missing → synthesized as TX_%06d from the row index

// TimestampLayout is the canonical layout used for input parsing and for
// formatting timestamps back onto the wire.
const TimestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order when parsing a raw timestamp.
var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// RawRecord is one unvalidated input row. All fields are strings because
// upstream sources routinely deliver dirty values; Normalize coerces them.
type RawRecord struct {
	TransactionID string
	SenderID      string
	ReceiverID    string
	Amount        string
	Timestamp     string
}

// Record is a normalized transaction. HasTime is false when the source
// timestamp could not be parsed.
type Record struct {
	ID       string
	Sender   string
	Receiver string
	Amount   float64
	Time     time.Time
	HasTime  bool

	seq int // original row index, used as a deterministic tie-break
}

// Table is the normalized record set owned by one analysis invocation.
type Table struct {
	Records []Record
}

// Normalize coerces raw rows into a record table. It never fails on
// per-row anomalies; a structurally unreadable stream must be rejected by
// the caller before rows reach this point.
func Normalize(rows []RawRecord) *Table {
	t := &Table{Records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		rec := Record{
			ID:       strings.TrimSpace(row.TransactionID),
			Sender:   coerceAccountID(row.SenderID),
			Receiver: coerceAccountID(row.ReceiverID),
			Amount:   coerceAmount(row.Amount),
			seq:      i,
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("TX_%06d", i)
		}
		if ts, ok := parseTimestamp(row.Timestamp); ok {
			rec.Time = ts
			rec.HasTime = true
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func coerceAccountID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}

// coerceAmount strips currency formatting and clamps the result to a
// non-negative real. Anything unparseable becomes 0.
func coerceAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a record's timestamp for the wire; empty when the
// record has none.
func (r Record) FormatTimestamp() string {
	if !r.HasTime {
		return ""
	}
	return r.Time.Format(TimestampLayout)
}

// AccountRecords returns every record involving the account as either
// endpoint, in table order.
func (t *Table) AccountRecords(account string) []Record {
	var out []Record
	for _, r := range t.Records {
		if r.Sender == account || r.Receiver == account {
			out = append(out, r)
		}
	}
	return out
}

// activityCounts tallies, per account, the number of record appearances as
// sender or receiver. A record involving the same account on both sides
// counts it twice, matching a concatenated endpoint tally.
func (t *Table) activityCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.Records {
		counts[r.Sender]++
		counts[r.Receiver]++
	}
	return counts
}
