package heuristics

// Shell Chain Detector
//
// Layering passes funds along a linear path of throwaway intermediaries:
// accounts that exist only to receive and forward. An intermediary is a
// node with almost no history — total activity count (appearances as
// sender or receiver across all records) inside a narrow band — and
// exactly one outgoing edge.
//
// From every node with out-degree exactly 1 the unique successor path is
// followed. At each hop the walk continues iff the successor stays inside
// the activity band and keeps out-degree 1; the terminating successor is
// still appended to the path (it is the chain's exit point). A successor
// already on the path stops the walk (cycle guard, which also covers
// self-loops). Paths of at least minHops nodes are emitted.

// Chain is an emitted shell path, in hop order.
type Chain struct {
	Nodes []string
}

// DetectShellChains walks the aggregated graph and returns every chain of
// length ≥ cfg.ShellMinHops, in deterministic node order.
func DetectShellChains(t *Table, g *Graph, cfg Config) []Chain {
	activity := t.activityCounts()

	var chains []Chain
	for start := 0; start < g.NodeCount(); start++ {
		if g.OutDegree(start) != 1 {
			continue
		}
		path := []int{start}
		onPath := map[int]bool{start: true}
		curr := start
		for {
			succs := g.Successors(curr)
			if len(succs) == 0 {
				break
			}
			next := succs[0]
			if onPath[next] {
				break
			}
			path = append(path, next)
			onPath[next] = true
			act := activity[g.NodeID(next)]
			if act >= cfg.ShellActivityMin && act <= cfg.ShellActivityMax && g.OutDegree(next) == 1 {
				curr = next
				continue
			}
			break
		}
		if len(path) >= cfg.ShellMinHops {
			nodes := make([]string, len(path))
			for i, n := range path {
				nodes[i] = g.NodeID(n)
			}
			chains = append(chains, Chain{Nodes: nodes})
		}
	}
	return chains
}
