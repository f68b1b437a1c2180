package heuristics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muletrace/forensics-engine/pkg/models"
)

// Ring Clustering (Union-Find)
//
// Flagged accounts that transact with each other form fraud rings: the
// connected components of the undirected projection of the aggregated
// graph restricted to flagged ids. Weighted union-find with path
// compression keeps this near-linear.
//
// Ring ids must be reproducible across runs and platforms, so components
// are numbered by their smallest member id in ascending order, never by
// map iteration. Components of size 1 yield no ring; ring membership
// partitions flagged accounts into disjoint sets.

type ringClusterer struct {
	parent map[string]string
	rank   map[string]int
}

func newRingClusterer() *ringClusterer {
	return &ringClusterer{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

func (rc *ringClusterer) find(id string) string {
	if _, ok := rc.parent[id]; !ok {
		rc.parent[id] = id
		rc.rank[id] = 0
	}
	if rc.parent[id] != id {
		rc.parent[id] = rc.find(rc.parent[id])
	}
	return rc.parent[id]
}

func (rc *ringClusterer) union(a, b string) {
	ra, rb := rc.find(a), rc.find(b)
	if ra == rb {
		return
	}
	switch {
	case rc.rank[ra] < rc.rank[rb]:
		rc.parent[ra] = rb
	case rc.rank[ra] > rc.rank[rb]:
		rc.parent[rb] = ra
	default:
		rc.parent[rb] = ra
		rc.rank[ra]++
	}
}

// AssignRings clusters flagged accounts, writes each member's RingID in
// place and returns the rings sorted by average member score descending.
func AssignRings(g *Graph, accounts []models.SuspiciousAccount) []models.FraudRing {
	flagged := make(map[string]*models.SuspiciousAccount, len(accounts))
	for i := range accounts {
		flagged[accounts[i].AccountID] = &accounts[i]
	}

	rc := newRingClusterer()
	for _, id := range sortedKeys(flagged) {
		rc.find(id)
		dense, ok := g.Lookup(id)
		if !ok {
			continue
		}
		for _, succ := range g.Successors(dense) {
			if neighbor := g.NodeID(succ); flagged[neighbor] != nil {
				rc.union(id, neighbor)
			}
		}
	}

	members := make(map[string][]string)
	for _, id := range sortedKeys(flagged) {
		root := rc.find(id)
		members[root] = append(members[root], id)
	}

	// Components ordered by smallest member id; member lists are already
	// sorted because ids were visited in ascending order.
	components := make([][]string, 0, len(members))
	for _, root := range sortedKeys(members) {
		if len(members[root]) >= 2 {
			components = append(components, members[root])
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	rings := make([]models.FraudRing, 0, len(components))
	for i, comp := range components {
		ringID := fmt.Sprintf("RING_%03d", i+1)
		sum := 0.0
		categories := make(map[string]bool)
		for _, id := range comp {
			acc := flagged[id]
			acc.RingID = ringID
			sum += acc.SuspicionScore
			for _, tag := range acc.DetectedPatterns {
				switch {
				case strings.Contains(tag, "cycle"):
					categories["cycle"] = true
				case strings.Contains(tag, "fan"):
					categories["smurfing"] = true
				case strings.Contains(tag, "shell"):
					categories["shell-chain"] = true
				}
			}
		}
		pattern := strings.Join(sortedKeys(categories), ", ")
		if pattern == "" {
			pattern = "unclassified"
		}
		rings = append(rings, models.FraudRing{
			RingID:         ringID,
			MemberAccounts: comp,
			PatternType:    pattern,
			RiskScore:      round2(sum / float64(len(comp))),
		})
	}

	sort.SliceStable(rings, func(i, j int) bool { return rings[i].RiskScore > rings[j].RiskScore })
	return rings
}
