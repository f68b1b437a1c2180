package heuristics

import (
	"fmt"
	"sort"

	"github.com/muletrace/forensics-engine/pkg/models"
)

// Graph Projection
//
// The visualization subgraph: flagged accounts plus their direct
// predecessors and successors, with every edge of the induced subgraph.
// Neighbors that were exempted by the legitimacy filter are annotated as
// legitimate so the frontend can render them distinctly instead of as
// anonymous bystanders.

// ProjectGraph selects the subgraph around flagged accounts. Nodes are
// emitted in ascending id order, edges in (from, to) order.
func ProjectGraph(g *Graph, accounts []models.SuspiciousAccount, legit LegitimateSet) models.GraphData {
	byID := make(map[string]*models.SuspiciousAccount, len(accounts))
	for i := range accounts {
		byID[accounts[i].AccountID] = &accounts[i]
	}

	relevant := make(map[int]bool)
	for id := range byID {
		dense, ok := g.Lookup(id)
		if !ok {
			continue
		}
		relevant[dense] = true
		for _, succ := range g.Successors(dense) {
			relevant[succ] = true
		}
		for _, pred := range g.Predecessors(dense) {
			relevant[pred] = true
		}
	}

	ids := make([]int, 0, len(relevant))
	for dense := range relevant {
		ids = append(ids, dense)
	}
	sort.Slice(ids, func(i, j int) bool { return g.NodeID(ids[i]) < g.NodeID(ids[j]) })

	nodes := make([]models.Node, 0, len(ids))
	for _, dense := range ids {
		id := g.NodeID(dense)
		node := models.Node{
			ID:                id,
			Label:             id,
			Tags:              []string{},
			TotalTransactions: g.Degree(dense),
			IsLegitimate:      legit.Contains(id),
		}
		if acc := byID[id]; acc != nil {
			node.RiskScore = acc.SuspicionScore
			node.Tags = acc.DetectedPatterns
			node.RingID = acc.RingID
		}
		nodes = append(nodes, node)
	}

	edges := make([]models.Edge, 0)
	for _, dense := range ids {
		for _, succ := range g.Successors(dense) {
			if !relevant[succ] {
				continue
			}
			stats := g.Edge(dense, succ)
			edges = append(edges, models.Edge{
				FromNode: g.NodeID(dense),
				ToNode:   g.NodeID(succ),
				Label:    fmt.Sprintf("$%.0f", stats.TotalAmount),
				Value:    stats.TotalAmount,
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].FromNode != edges[j].FromNode {
			return edges[i].FromNode < edges[j].FromNode
		}
		return edges[i].ToNode < edges[j].ToNode
	})

	return models.GraphData{Nodes: nodes, Edges: edges}
}
