package heuristics

import "time"

// Config tunes every detector threshold. Start from DefaultConfig and
// override individual fields; the zero value is not usable.
type Config struct {
	// Smurfing (fan-in / fan-out)
	SmurfingWindow    time.Duration // width of the sliding window
	SmurfingThreshold int           // distinct counterparties triggering a finding

	// Shell chains
	ShellMinHops     int // minimum chain length (node count) to emit
	ShellActivityMin int // inclusive activity-count range for intermediaries
	ShellActivityMax int

	// Cycles
	CycleMinLength int
	CycleMaxLength int

	// Bursts & nocturnal activity
	BurstSenderMinRecords int         // minimum outgoing records to consider an account
	NocturnalHours        map[int]bool // local hours counted as night
	NocturnalThresholdPct float64      // night share above which nocturnal is flagged

	// Legitimacy filter
	HubMinSenders     int     // distinct senders qualifying a merchant candidate
	HubCVThreshold    float64 // stddev(daily) < threshold × mean(daily)
	PayrollMinRecords int
	PayrollGapMinDays int // inclusive consecutive-gap range, whole days
	PayrollGapMaxDays int
	PayrollAmountCV   float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		SmurfingWindow:        72 * time.Hour,
		SmurfingThreshold:     10,
		ShellMinHops:          4,
		ShellActivityMin:      2,
		ShellActivityMax:      3,
		CycleMinLength:        3,
		CycleMaxLength:        5,
		BurstSenderMinRecords: 6,
		NocturnalHours:        map[int]bool{23: true, 0: true, 1: true, 2: true, 3: true, 4: true},
		NocturnalThresholdPct: 40.0,
		HubMinSenders:         50,
		HubCVThreshold:        0.7,
		PayrollMinRecords:     3,
		PayrollGapMinDays:     25,
		PayrollGapMaxDays:     35,
		PayrollAmountCV:       0.05,
	}
}
