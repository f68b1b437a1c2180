package heuristics

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/muletrace/forensics-engine/pkg/models"
)

// Analysis Pipeline
//
// One Analyze call owns the whole lifecycle: normalize → build graph →
// legitimacy filter → parallel detector sweep → fusion → ring clustering →
// graph projection. The record table and aggregated graph are read-only
// shared state during the sweep; each detector returns its findings by
// value, so fusion always observes complete sets and the fused output is
// independent of detector completion order.
//
// A detector panic is recovered into a degraded-detector entry instead of
// corrupting its siblings; fusion proceeds with whatever completed.
// Context cancellation aborts before fusion — partial findings are never
// published.

// ProgressFunc receives phase-boundary progress: a label and a fraction
// in [0, 1]. Invocations are monotonic.
type ProgressFunc func(label string, fraction float64)

// Engine runs analyses. It is stateless between invocations; all entities
// live within a single Analyze call.
type Engine struct {
	cfg Config
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Snapshot retains the table and graph of a completed analysis for
// follow-up per-account reporting.
type Snapshot struct {
	Table  *Table
	Graph  *Graph
	Result *models.AnalysisResponse
}

const (
	detectorSmurfing  = "smurfing"
	detectorCycles    = "cycles"
	detectorShell     = "shell_chains"
	detectorBurst     = "burst_nocturnal"
	maxRecentRecords  = 10
)

// Analyze runs the full detection pipeline over raw rows and returns the
// result bundle. An empty (or fully unusable) input yields an empty bundle
// with zero counts, not an error.
func (e *Engine) Analyze(ctx context.Context, rows []RawRecord, progress ProgressFunc) (*models.AnalysisResponse, *Snapshot, error) {
	start := time.Now()
	report := func(label string, fraction float64) {
		if progress != nil {
			progress(label, fraction)
		}
	}

	report("Loading data and building graph...", 0.1)
	table := Normalize(rows)
	if len(table.Records) == 0 {
		resp := emptyResponse(start)
		return resp, &Snapshot{Table: table, Graph: BuildGraph(table), Result: resp}, nil
	}

	graph := BuildGraph(table)
	report("Graph constructed.", 0.2)

	report("Filtering legitimate entities...", 0.3)
	legit := IdentifyLegitimateEntities(table, e.cfg)

	report("Executing parallel forensic sweep...", 0.5)
	sweep, degraded, err := e.runDetectors(ctx, table, graph, legit)
	if err != nil {
		return nil, nil, err
	}

	report("Compiling results...", 0.7)
	accounts := e.fuse(table, legit, sweep)

	report("Graphing clusters...", 0.85)
	rings := AssignRings(graph, accounts)
	graphData := ProjectGraph(graph, accounts, legit)

	resp := &models.AnalysisResponse{
		AnalysisID:         uuid.New().String(),
		SuspiciousAccounts: accounts,
		FraudRings:         rings,
		GraphData:          graphData,
		Summary: models.AnalysisSummary{
			TotalAccountsAnalyzed:     graph.NodeCount(),
			TotalTransactions:         len(table.Records),
			SuspiciousAccountsFlagged: len(accounts),
			FraudRingsDetected:        len(rings),
			AvgRiskScore:              averageScore(accounts),
			ProcessingTimeSeconds:     round2(time.Since(start).Seconds()),
			DegradedDetectors:         degraded,
		},
	}
	report("Analysis complete.", 1.0)
	return resp, &Snapshot{Table: table, Graph: graph, Result: resp}, nil
}

// sweepResult collects the four detectors' outputs.
type sweepResult struct {
	smurfing []Finding
	cycles   [][]string
	chains   []Chain
	burst    BurstNocturnal
}

// runDetectors executes the four pattern detectors in parallel over the
// read-only table and graph. A panicking detector is degraded, not fatal.
func (e *Engine) runDetectors(ctx context.Context, table *Table, graph *Graph, legit LegitimateSet) (sweepResult, []string, error) {
	var res sweepResult
	faults := make([]string, 4)

	run := func(name string, idx int, fn func()) func() error {
		return func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Engine] %v: %s: %v", ErrDetectorInternal, name, r)
					faults[idx] = name
				}
			}()
			fn()
			return nil
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(run(detectorSmurfing, 0, func() { res.smurfing = DetectSmurfing(table, e.cfg) }))
	g.Go(run(detectorCycles, 1, func() { res.cycles = DetectCycles(graph, legit, e.cfg) }))
	g.Go(run(detectorShell, 2, func() { res.chains = DetectShellChains(table, graph, e.cfg) }))
	g.Go(run(detectorBurst, 3, func() { res.burst = DetectBurstAndNocturnal(table, e.cfg) }))
	if err := g.Wait(); err != nil {
		return res, nil, err
	}
	if err := ctx.Err(); err != nil {
		return res, nil, err
	}

	var degraded []string
	for _, f := range faults {
		if f != "" {
			degraded = append(degraded, f)
		}
	}
	return res, degraded, nil
}

// fusionState accumulates per-account score, tags and explanations.
type fusionState struct {
	scores       map[string]float64
	tags         map[string]map[string]bool
	explanations map[string][]string
}

func (f *fusionState) add(account, tag string, delta float64, explanation string) {
	f.scores[account] += delta
	set, ok := f.tags[account]
	if !ok {
		set = make(map[string]bool)
		f.tags[account] = set
	}
	set[tag] = true
	f.explanations[account] = append(f.explanations[account], explanation)
}

// fuse combines detector outputs into the ranked suspicious-account list.
// Detector order is fixed — smurfing, cycles, shells, burst/nocturnal —
// so explanation assembly is deterministic. Legitimate accounts are
// dropped outright.
func (e *Engine) fuse(table *Table, legit LegitimateSet, sweep sweepResult) []models.SuspiciousAccount {
	state := &fusionState{
		scores:       make(map[string]float64),
		tags:         make(map[string]map[string]bool),
		explanations: make(map[string][]string),
	}

	// 1. Smurfing
	for _, f := range sweep.smurfing {
		if legit.Contains(f.Account) {
			continue
		}
		state.add(f.Account, f.Tag, f.Delta, f.Explanation)
	}

	// 2. Cycles: +25 × (6 − length) per participant.
	for _, cycle := range sweep.cycles {
		l := len(cycle)
		if l < e.cfg.CycleMinLength || l > e.cfg.CycleMaxLength {
			continue
		}
		delta := float64(25 * (6 - l))
		for _, node := range cycle {
			state.add(node, fmt.Sprintf("cycle_length_%d", l), delta,
				fmt.Sprintf("Involved in a %d-step circular fund routing loop.", l))
		}
	}

	// 3. Shell chains: +20 per node; the explanation keeps the longest
	// chain the node participated in.
	maxChain := make(map[string]int)
	for _, chain := range sweep.chains {
		for _, node := range chain.Nodes {
			if len(chain.Nodes) > maxChain[node] {
				maxChain[node] = len(chain.Nodes)
			}
		}
	}
	for _, node := range sortedKeys(maxChain) {
		if legit.Contains(node) {
			continue
		}
		state.add(node, "shell_chain", 20,
			fmt.Sprintf("Part of a %d-hop layered shell network.", maxChain[node]))
	}

	// 4. Bursts & nocturnal. The burst guard fires before nocturnal is
	// recorded, so a quiet-history account bursting at night carries both
	// tags; accounts already tagged by a structural detector get no burst
	// increment (double-count guard).
	burstAccounts := make(map[string]bool, len(sweep.burst.Burst)+len(sweep.burst.NightPct))
	for a := range sweep.burst.Burst {
		burstAccounts[a] = true
	}
	for a := range sweep.burst.NightPct {
		burstAccounts[a] = true
	}
	for _, node := range sortedKeys(burstAccounts) {
		if legit.Contains(node) {
			continue
		}
		if sweep.burst.Burst[node] && len(state.tags[node]) == 0 {
			state.add(node, "high_velocity", 15,
				"Detected unusual transaction burst frequency.")
		}
		if pct, ok := sweep.burst.NightPct[node]; ok && pct > e.cfg.NocturnalThresholdPct {
			state.add(node, "nocturnal_activity", 25,
				fmt.Sprintf("Suspicious nocturnal pattern: %.1f%% of volume during 23:00-05:00.", pct))
		}
	}

	// Compile the ranked list.
	accounts := make([]models.SuspiciousAccount, 0, len(state.scores))
	for _, node := range sortedKeys(state.scores) {
		score := state.scores[node]
		if score <= 0 {
			continue
		}
		if score > 100 {
			score = 100
		}
		accounts = append(accounts, models.SuspiciousAccount{
			AccountID:          node,
			SuspicionScore:     round2(score),
			DetectedPatterns:   sortedKeys(state.tags[node]),
			Explanation:        joinUnique(state.explanations[node]),
			IsLegitimateHub:    legit.Contains(node),
			RingID:             "",
			RecentTransactions: recentTransactions(table, node),
		})
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].SuspicionScore != accounts[j].SuspicionScore {
			return accounts[i].SuspicionScore > accounts[j].SuspicionScore
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts
}

// recentTransactions returns up to 10 most-recent records involving the
// account, newest first; untimed records rank last.
func recentTransactions(table *Table, account string) []models.Transaction {
	recs := table.AccountRecords(account)
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].HasTime != recs[j].HasTime {
			return recs[i].HasTime
		}
		if recs[i].HasTime && !recs[i].Time.Equal(recs[j].Time) {
			return recs[i].Time.After(recs[j].Time)
		}
		return recs[i].seq < recs[j].seq
	})
	if len(recs) > maxRecentRecords {
		recs = recs[:maxRecentRecords]
	}
	out := make([]models.Transaction, len(recs))
	for i, r := range recs {
		out[i] = models.Transaction{
			TransactionID: r.ID,
			SenderID:      r.Sender,
			ReceiverID:    r.Receiver,
			Amount:        r.Amount,
			Timestamp:     r.FormatTimestamp(),
		}
	}
	return out
}

// joinUnique concatenates explanations in emission order, dropping
// duplicates while preserving the first occurrence.
func joinUnique(parts []string) string {
	seen := make(map[string]bool, len(parts))
	joined := ""
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		if joined != "" {
			joined += " "
		}
		joined += p
	}
	return joined
}

func averageScore(accounts []models.SuspiciousAccount) float64 {
	if len(accounts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range accounts {
		sum += a.SuspicionScore
	}
	return round2(sum / float64(len(accounts)))
}

func emptyResponse(start time.Time) *models.AnalysisResponse {
	return &models.AnalysisResponse{
		AnalysisID:         uuid.New().String(),
		SuspiciousAccounts: []models.SuspiciousAccount{},
		FraudRings:         []models.FraudRing{},
		GraphData:          models.GraphData{Nodes: []models.Node{}, Edges: []models.Edge{}},
		Summary: models.AnalysisSummary{
			ProcessingTimeSeconds: round2(time.Since(start).Seconds()),
		},
	}
}

// sortedKeys returns the map's keys in ascending order; iteration over
// Go maps is randomized and every consumer here needs a stable order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
