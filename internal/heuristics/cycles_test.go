package heuristics

import (
	"testing"
	"time"
)

func detectCyclesOn(rows []RawRecord, legit LegitimateSet) [][]string {
	table := tableOf(rows)
	if legit == nil {
		legit = make(LegitimateSet)
	}
	return DetectCycles(BuildGraph(table), legit, DefaultConfig())
}

func TestTriangleCycleDetected(t *testing.T) {
	cycles := detectCyclesOn(triangleRows("A", "B", "C", testBase), nil)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(cycles))
	}
	if len(cycles[0]) != 3 {
		t.Errorf("cycle length = %d, want 3", len(cycles[0]))
	}
}

func TestCycleLengthBounds(t *testing.T) {
	ring := func(prefix string, n int, start time.Time) []RawRecord {
		nodes := make([]string, n)
		for i := range nodes {
			nodes[i] = prefix + string(rune('A'+i))
		}
		var rows []RawRecord
		for i := range nodes {
			rows = append(rows, rawTx(prefix+string(rune('0'+i)), nodes[i], nodes[(i+1)%n], 100, start.Add(time.Duration(i)*time.Minute)))
		}
		return rows
	}

	tests := []struct {
		name       string
		n          int
		wantCycles int
	}{
		{"2-cycle below minimum", 2, 0},
		{"3-cycle scored", 3, 1},
		{"5-cycle scored", 5, 1},
		{"6-cycle above maximum", 6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles := detectCyclesOn(ring("R", tt.n, testBase), nil)
			if len(cycles) != tt.wantCycles {
				t.Errorf("cycles = %d, want %d", len(cycles), tt.wantCycles)
			}
		})
	}
}

func TestCycleExcludesLegitimateNodes(t *testing.T) {
	legit := LegitimateSet{"B": true}
	cycles := detectCyclesOn(triangleRows("A", "B", "C", testBase), legit)
	if len(cycles) != 0 {
		t.Errorf("cycle through a legitimate node scored: %v", cycles)
	}
}

func TestCycleEnumeratedOnce(t *testing.T) {
	// Two triangles sharing node A: each must appear exactly once.
	rows := append(triangleRows("A", "B", "C", testBase),
		triangleRows("A", "D", "E", testBase.Add(6*time.Hour))...)
	cycles := detectCyclesOn(rows, nil)
	if len(cycles) != 2 {
		t.Fatalf("cycles = %d, want 2", len(cycles))
	}
}

func TestSelfLoopNeverCycles(t *testing.T) {
	rows := []RawRecord{
		rawTx("1", "A", "A", 100, testBase),
		rawTx("2", "A", "B", 100, testBase),
		rawTx("3", "B", "A", 100, testBase),
	}
	cycles := detectCyclesOn(rows, nil)
	// The A→B→A 2-cycle is below the minimum, the self-loop is length 1.
	if len(cycles) != 0 {
		t.Errorf("unexpected cycles: %v", cycles)
	}
}
