package models

// Transaction is one normalized money-movement record as it appears on the
// wire. Timestamp is formatted "2006-01-02 15:04:05"; it is empty when the
// source row carried an unparseable timestamp.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	SenderID      string  `json:"sender_id"`
	ReceiverID    string  `json:"receiver_id"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
}

// SuspiciousAccount is one row of the ranked result list.
type SuspiciousAccount struct {
	AccountID          string        `json:"account_id"`
	SuspicionScore     float64       `json:"suspicion_score"`
	DetectedPatterns   []string      `json:"detected_patterns"`
	Explanation        string        `json:"explanation,omitempty"`
	IsLegitimateHub    bool          `json:"is_legitimate_hub"`
	RingID             string        `json:"ring_id"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

// FraudRing is a connected cluster of flagged accounts in the undirected
// projection of the transaction graph.
type FraudRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
}

// AnalysisSummary carries the run-level counters. DegradedDetectors lists
// detectors that faulted internally; results from the remaining detectors
// are still complete.
type AnalysisSummary struct {
	TotalAccountsAnalyzed     int      `json:"total_accounts_analyzed"`
	TotalTransactions         int      `json:"total_transactions"`
	SuspiciousAccountsFlagged int      `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int      `json:"fraud_rings_detected"`
	AvgRiskScore              float64  `json:"avg_risk_score"`
	ProcessingTimeSeconds     float64  `json:"processing_time_seconds"`
	DegradedDetectors         []string `json:"degraded_detectors,omitempty"`
}

// Node is a visualization-ready graph node.
type Node struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	RiskScore         float64  `json:"risk_score"`
	Tags              []string `json:"tags"`
	TotalTransactions int      `json:"total_transactions"`
	IsLegitimate      bool     `json:"is_legitimate"`
	RingID            string   `json:"ring_id"`
}

// Edge is a visualization-ready aggregated edge. Label is the total amount
// formatted as currency with no fractional part, e.g. "$4500".
type Edge struct {
	FromNode string  `json:"from_node"`
	ToNode   string  `json:"to_node"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}

// GraphData is the projected subgraph around flagged accounts and their
// one-hop neighbors.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// AnalysisResponse is the complete result bundle for one analysis run.
type AnalysisResponse struct {
	AnalysisID         string              `json:"analysis_id"`
	SuspiciousAccounts []SuspiciousAccount `json:"suspicious_accounts"`
	FraudRings         []FraudRing         `json:"fraud_rings"`
	GraphData          GraphData           `json:"graph_data"`
	Summary            AnalysisSummary     `json:"summary"`
}
