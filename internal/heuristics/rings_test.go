package heuristics

import (
	"testing"
	"time"

	"github.com/muletrace/forensics-engine/pkg/models"
)

func buildGraphOf(rows []RawRecord) *Graph {
	return BuildGraph(tableOf(rows))
}

func TestAssignRingsPartition(t *testing.T) {
	// Two disjoint flagged clusters plus one isolated flagged node.
	rows := []RawRecord{
		rawTx("1", "A", "B", 10, testBase),
		rawTx("2", "C", "D", 10, testBase),
		rawTx("3", "E", "Z_UNFLAGGED", 10, testBase),
	}
	g := buildGraphOf(rows)
	accounts := []models.SuspiciousAccount{
		{AccountID: "A", SuspicionScore: 40, DetectedPatterns: []string{"fan_in"}},
		{AccountID: "B", SuspicionScore: 60, DetectedPatterns: []string{"cycle_length_3"}},
		{AccountID: "C", SuspicionScore: 20, DetectedPatterns: []string{"shell_chain"}},
		{AccountID: "D", SuspicionScore: 20, DetectedPatterns: []string{"shell_chain"}},
		{AccountID: "E", SuspicionScore: 25, DetectedPatterns: []string{"nocturnal_activity"}},
	}

	rings := AssignRings(g, accounts)
	if len(rings) != 2 {
		t.Fatalf("rings = %d, want 2", len(rings))
	}

	// Membership partitions the flagged set: every ringed account appears
	// in exactly one ring.
	seen := make(map[string]int)
	for _, ring := range rings {
		for _, m := range ring.MemberAccounts {
			seen[m]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("account %s in %d rings", id, n)
		}
	}
	if seen["E"] != 0 {
		t.Error("isolated flagged node must not join a ring")
	}
	for i := range accounts {
		if accounts[i].AccountID == "E" && accounts[i].RingID != "" {
			t.Errorf("E ring id = %q, want empty", accounts[i].RingID)
		}
	}

	// Rings sorted by average score descending: {A,B} at 50 before {C,D}
	// at 20 — and numbering follows component order, not score order.
	if rings[0].RiskScore != 50 || rings[1].RiskScore != 20 {
		t.Errorf("ring scores = %v, %v", rings[0].RiskScore, rings[1].RiskScore)
	}
	if rings[0].RingID != "RING_001" || rings[1].RingID != "RING_002" {
		t.Errorf("ring ids = %s, %s", rings[0].RingID, rings[1].RingID)
	}
}

func TestAssignRingsCategories(t *testing.T) {
	rows := []RawRecord{rawTx("1", "A", "B", 10, testBase)}
	g := buildGraphOf(rows)
	accounts := []models.SuspiciousAccount{
		{AccountID: "A", SuspicionScore: 75, DetectedPatterns: []string{"cycle_length_3", "fan_out"}},
		{AccountID: "B", SuspicionScore: 20, DetectedPatterns: []string{"shell_chain"}},
	}
	rings := AssignRings(g, accounts)
	if len(rings) != 1 {
		t.Fatalf("rings = %d, want 1", len(rings))
	}
	if got := rings[0].PatternType; got != "cycle, shell-chain, smurfing" {
		t.Errorf("pattern type = %q, want sorted categories", got)
	}
}

func TestAssignRingsUnclassified(t *testing.T) {
	rows := []RawRecord{rawTx("1", "A", "B", 10, testBase)}
	g := buildGraphOf(rows)
	accounts := []models.SuspiciousAccount{
		{AccountID: "A", SuspicionScore: 25, DetectedPatterns: []string{"nocturnal_activity"}},
		{AccountID: "B", SuspicionScore: 15, DetectedPatterns: []string{"high_velocity"}},
	}
	rings := AssignRings(g, accounts)
	if len(rings) != 1 || rings[0].PatternType != "unclassified" {
		t.Errorf("rings = %+v, want one unclassified ring", rings)
	}
}

func TestProjectGraphNeighborhood(t *testing.T) {
	rows := []RawRecord{
		rawTx("1", "A", "B", 100, testBase),
		rawTx("2", "HUB", "A", 250, testBase.Add(time.Hour)),
		rawTx("3", "X", "Y", 10, testBase.Add(2*time.Hour)), // unrelated
	}
	g := buildGraphOf(rows)
	accounts := []models.SuspiciousAccount{
		{AccountID: "A", SuspicionScore: 40, DetectedPatterns: []string{"fan_in"}, RingID: "RING_001"},
	}
	legit := LegitimateSet{"HUB": true}

	data := ProjectGraph(g, accounts, legit)

	ids := make(map[string]models.Node)
	for _, n := range data.Nodes {
		ids[n.ID] = n
	}
	if len(ids) != 3 {
		t.Fatalf("nodes = %v, want A plus its two neighbors", sortedKeys(ids))
	}
	if _, ok := ids["X"]; ok {
		t.Error("unrelated node projected")
	}
	if !ids["HUB"].IsLegitimate {
		t.Error("legitimate neighbor must be annotated is_legitimate")
	}
	if ids["A"].RiskScore != 40 || ids["A"].RingID != "RING_001" {
		t.Errorf("flagged node annotation = %+v", ids["A"])
	}
	if ids["B"].RiskScore != 0 || len(ids["B"].Tags) != 0 {
		t.Errorf("plain neighbor annotation = %+v", ids["B"])
	}

	if len(data.Edges) != 2 {
		t.Fatalf("edges = %+v, want the two induced edges", data.Edges)
	}
	for _, e := range data.Edges {
		if e.FromNode == "A" && e.ToNode == "B" {
			if e.Label != "$100" || e.Value != 100 {
				t.Errorf("edge A→B = %+v", e)
			}
		}
	}
}
