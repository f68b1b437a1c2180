package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/muletrace/forensics-engine/internal/heuristics"
)

// CSV Column Mapping
//
// Uploaded exports never agree on column names. Resolution runs three
// passes per target column, strongest evidence first:
//
//   1. Alias match: the header, normalized (lowercased, spaces and
//      underscores stripped), against a known alias table.
//   2. Content sniffing over a sample of rows: a numeric column with a
//      positive mean looks like an amount, a parseable date like a
//      timestamp, a non-numeric column like an endpoint id.
//   3. Positional fallback for sender/receiver/amount (zero-based column
//      indices 1, 2, 3).
//
// A column claimed by one target is never re-claimed by another. If
// sender, receiver or amount still cannot be resolved the upload is
// rejected with a schema error; transaction_id and timestamp are
// synthesized instead.

const sniffSampleRows = 100

var columnAliases = []struct {
	target  string
	aliases []string
}{
	{"sender_id", []string{"sender_id", "sourceid", "from", "sender", "source", "initiator", "nameorig", "origin"}},
	{"receiver_id", []string{"receiver_id", "destinationid", "to", "receiver", "destination", "recipient", "namedest", "target"}},
	{"amount", []string{"amount", "amountofmoney", "value", "sum", "amountoff"}},
	{"timestamp", []string{"timestamp", "date", "time", "datetime"}},
	{"transaction_id", []string{"transaction_id", "id", "tx_id", "txid"}},
}

var positionalFallback = map[string]int{
	"sender_id":   1,
	"receiver_id": 2,
	"amount":      3,
}

// ParseCSV reads an uploaded CSV stream and maps it into raw records ready
// for normalization. It returns ErrSchemaMissing (wrapped) when a required
// column cannot be resolved.
func ParseCSV(r io.Reader) ([]heuristics.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unreadable CSV stream: %w", err)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unreadable CSV stream: %w", err)
	}

	mapping, err := resolveColumns(header, rows)
	if err != nil {
		return nil, err
	}

	records := make([]heuristics.RawRecord, 0, len(rows))
	now := time.Now().Format(heuristics.TimestampLayout)
	cell := func(row []string, target string) string {
		idx, ok := mapping[target]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	for _, row := range rows {
		rec := heuristics.RawRecord{
			TransactionID: cell(row, "transaction_id"),
			SenderID:      cell(row, "sender_id"),
			ReceiverID:    cell(row, "receiver_id"),
			Amount:        cell(row, "amount"),
			Timestamp:     cell(row, "timestamp"),
		}
		if _, ok := mapping["timestamp"]; !ok {
			rec.Timestamp = now
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolveColumns maps target names to column indices.
func resolveColumns(header []string, rows [][]string) (map[string]int, error) {
	normToIdx := make(map[string]int, len(header))
	for i, col := range header {
		norm := normalizeHeader(col)
		if _, taken := normToIdx[norm]; !taken {
			normToIdx[norm] = i
		}
	}

	mapping := make(map[string]int)
	claimed := make(map[int]bool)

	for _, entry := range columnAliases {
		// Pass 1: alias table.
		matched := false
		for _, alias := range entry.aliases {
			if idx, ok := normToIdx[normalizeHeader(alias)]; ok && !claimed[idx] {
				mapping[entry.target] = idx
				claimed[idx] = true
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		// Pass 2: content sniffing over a sample.
		if idx, ok := sniffColumn(entry.target, header, rows, claimed); ok {
			mapping[entry.target] = idx
			claimed[idx] = true
			continue
		}

		// Pass 3: positional fallback for the required trio.
		if pos, ok := positionalFallback[entry.target]; ok {
			if pos < len(header) && !claimed[pos] {
				mapping[entry.target] = pos
				claimed[pos] = true
				continue
			}
			return nil, fmt.Errorf("%w: %s", heuristics.ErrSchemaMissing, entry.target)
		}
	}
	return mapping, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// sniffColumn inspects sample values of the unclaimed columns for content
// matching the target's expected shape.
func sniffColumn(target string, header []string, rows [][]string, claimed map[int]bool) (int, bool) {
	sample := rows
	if len(sample) > sniffSampleRows {
		sample = sample[:sniffSampleRows]
	}
	for idx := range header {
		if claimed[idx] {
			continue
		}
		values := sampleValues(sample, idx)
		if len(values) == 0 {
			continue
		}
		switch target {
		case "amount":
			if m, numeric := numericMean(values); numeric && m > 0 {
				return idx, true
			}
		case "timestamp":
			if _, ok := parseableTimestamp(values[0]); ok {
				return idx, true
			}
		case "sender_id", "receiver_id":
			if _, numeric := numericMean(values); !numeric {
				return idx, true
			}
		}
	}
	return 0, false
}

func sampleValues(rows [][]string, idx int) []string {
	var out []string
	for _, row := range rows {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			out = append(out, strings.TrimSpace(row[idx]))
		}
	}
	return out
}

// numericMean reports whether every sampled value parses as a number, and
// their mean if so.
func numericMean(values []string) (float64, bool) {
	sum := 0.0
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		sum += f
	}
	return sum / float64(len(values)), true
}

func parseableTimestamp(v string) (time.Time, bool) {
	for _, layout := range []string{
		heuristics.TimestampLayout,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"01/02/2006 15:04:05",
		"01/02/2006",
	} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
