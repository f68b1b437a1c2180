package heuristics

import "sort"

// Directed Transaction Graph
//
// The record table folds into a directed graph aggregated per ordered
// (sender, receiver) pair: at most one edge per pair, carrying the summed
// amount and the contributing record count. Node ids are interned into a
// dense integer arena so that grouping, component labeling and cycle
// enumeration work on small ints; the external contract still speaks
// string ids.
//
// Self-loop edges are kept (they carry real volume) but are filtered from
// cycle and chain traversals by the detectors themselves.
//
// Adjacency lists are sorted after construction so that every traversal
// order — and therefore every emitted finding order — is deterministic
// across runs and platforms.

// EdgeStats is the aggregate for one ordered endpoint pair.
type EdgeStats struct {
	TotalAmount float64
	Count       int
}

type edgeKey struct{ from, to int }

// Graph is the aggregated directed transaction graph.
type Graph struct {
	ids   []string       // dense index → account id
	index map[string]int // account id → dense index
	out   [][]int        // successors, sorted, one entry per ordered pair
	in    [][]int        // predecessors, sorted
	edges map[edgeKey]*EdgeStats
}

// BuildGraph folds the record table into the aggregated graph.
func BuildGraph(t *Table) *Graph {
	g := &Graph{
		index: make(map[string]int),
		edges: make(map[edgeKey]*EdgeStats),
	}
	for _, r := range t.Records {
		u := g.intern(r.Sender)
		v := g.intern(r.Receiver)
		key := edgeKey{u, v}
		stats, ok := g.edges[key]
		if !ok {
			stats = &EdgeStats{}
			g.edges[key] = stats
			g.out[u] = append(g.out[u], v)
			g.in[v] = append(g.in[v], u)
		}
		stats.TotalAmount += r.Amount
		stats.Count++
	}
	for i := range g.out {
		sort.Ints(g.out[i])
		sort.Ints(g.in[i])
	}
	return g
}

func (g *Graph) intern(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.index[id] = i
	g.ids = append(g.ids, id)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

// NodeCount returns the number of distinct accounts in the graph.
func (g *Graph) NodeCount() int { return len(g.ids) }

// NodeID maps a dense index back to the account id.
func (g *Graph) NodeID(i int) string { return g.ids[i] }

// Lookup resolves an account id to its dense index.
func (g *Graph) Lookup(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Successors returns the sorted dense indices of direct successors.
func (g *Graph) Successors(i int) []int { return g.out[i] }

// Predecessors returns the sorted dense indices of direct predecessors.
func (g *Graph) Predecessors(i int) []int { return g.in[i] }

// OutDegree counts distinct successor edges, self-loop included.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// InDegree counts distinct predecessor edges, self-loop included.
func (g *Graph) InDegree(i int) int { return len(g.in[i]) }

// Degree is the total degree: in + out, so a self-loop contributes 2.
func (g *Graph) Degree(i int) int { return len(g.out[i]) + len(g.in[i]) }

// Edge returns the aggregate for the ordered pair, or nil.
func (g *Graph) Edge(from, to int) *EdgeStats {
	return g.edges[edgeKey{from, to}]
}

// DegreeOf is the string-keyed convenience used by the reporting surface.
func (g *Graph) DegreeOf(id string) (inDeg, outDeg int, ok bool) {
	i, found := g.index[id]
	if !found {
		return 0, 0, false
	}
	return len(g.in[i]), len(g.out[i]), true
}
