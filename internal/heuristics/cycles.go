package heuristics

// Cycle Detector
//
// Circular fund routing — money leaving an account and returning to it
// through a small loop of mules — is among the strongest laundering
// signals. Short simple directed cycles (3 to 5 nodes by default) are
// enumerated over an induced subgraph that keeps only nodes that are
//
//   (a) not in the legitimacy set, and
//   (b) of total degree > 1 in the aggregated graph
//
// (degree-1 nodes cannot close a loop, and legitimacy-before-cycles
// pruning yields the same scored set as post-filtering while keeping the
// enumeration cheap).
//
// Enumeration is a bounded-depth DFS rooted at each node in ascending
// dense-index order, expanding only to higher-indexed nodes except for
// the closing edge back to the root. Every simple cycle is therefore
// produced exactly once — rooted at its minimal node — and in a stable
// order, which keeps downstream explanation assembly deterministic.
// Self-loops never participate: a length-1 closure is below the minimum.

// DetectCycles returns every simple directed cycle with length in
// [cfg.CycleMinLength, cfg.CycleMaxLength] over the induced subgraph.
func DetectCycles(g *Graph, legit LegitimateSet, cfg Config) [][]string {
	allowed := make([]bool, g.NodeCount())
	for i := 0; i < g.NodeCount(); i++ {
		allowed[i] = g.Degree(i) > 1 && !legit.Contains(g.NodeID(i))
	}

	var cycles [][]string
	path := make([]int, 0, cfg.CycleMaxLength)
	onPath := make([]bool, g.NodeCount())

	var dfs func(root, curr int)
	dfs = func(root, curr int) {
		for _, next := range g.Successors(curr) {
			if next == root {
				if len(path) >= cfg.CycleMinLength {
					cycle := make([]string, len(path))
					for i, n := range path {
						cycle[i] = g.NodeID(n)
					}
					cycles = append(cycles, cycle)
				}
				continue
			}
			// Only expand to higher-indexed nodes so each cycle is
			// rooted at its minimal member.
			if next < root || !allowed[next] || onPath[next] {
				continue
			}
			if len(path) == cfg.CycleMaxLength {
				continue
			}
			path = append(path, next)
			onPath[next] = true
			dfs(root, next)
			onPath[next] = false
			path = path[:len(path)-1]
		}
	}

	for root := 0; root < g.NodeCount(); root++ {
		if !allowed[root] {
			continue
		}
		path = append(path, root)
		onPath[root] = true
		dfs(root, root)
		onPath[root] = false
		path = path[:0]
	}
	return cycles
}
