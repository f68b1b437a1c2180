package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/muletrace/forensics-engine/internal/heuristics"
)

// Synthetic Dataset Generator
//
// Produces a demo transaction set: a large body of random noise with four
// injected fraud shapes layered on top — short cycles, a fan-in sink, a
// high-velocity burst and a shell chain. Seeded, so demo analyses are
// reproducible.

// DefaultSeed keeps the demo endpoint deterministic across restarts.
const DefaultSeed int64 = 1

const (
	accountPool  = 1000
	injectedRows = 125 // 5 cycles × 4 + 50 fan-in + 50 burst + 5 shell
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Generate returns count raw records containing noise plus the injected
// patterns. Small counts still yield every pattern; only the noise shrinks.
func Generate(count int, seed int64) []heuristics.RawRecord {
	rng := rand.New(rand.NewSource(seed))

	accounts := make([]string, accountPool)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("ACC_%04d", i+1)
	}

	noise := count - injectedRows
	if noise < 0 {
		noise = 0
	}
	records := make([]heuristics.RawRecord, 0, count+100)

	// 1. Random noise.
	for i := 0; i < noise; i++ {
		sender := accounts[rng.Intn(len(accounts))]
		receiver := accounts[rng.Intn(len(accounts))]
		for receiver == sender {
			receiver = accounts[rng.Intn(len(accounts))]
		}
		records = append(records, record(
			fmt.Sprintf("TX_%06d", i),
			sender, receiver,
			10+rng.Float64()*4990,
			baseTime.Add(time.Duration(rng.Intn(30*24*3600))*time.Second),
		))
	}

	// 2. Cycles (length 4, closed loops of fresh accounts).
	for r := 0; r < 5; r++ {
		nodes := make([]string, 4)
		for i := range nodes {
			nodes[i] = fmt.Sprintf("CYC_%d_%d", r, i)
		}
		for i := range nodes {
			records = append(records, record(
				fmt.Sprintf("TX_CYC_%d_%d", r, i),
				nodes[i], nodes[(i+1)%len(nodes)],
				1000,
				baseTime.Add(time.Duration(r)*24*time.Hour+time.Duration(i)*time.Hour),
			))
		}
	}

	// 3. Fan-in aggregation onto a single sink.
	for i := 0; i < 50; i++ {
		records = append(records, record(
			fmt.Sprintf("TX_FAN_IN_%d", i),
			fmt.Sprintf("SRCE_%03d", i), "SINK_MEGA_01",
			500,
			baseTime.Add(10*24*time.Hour+time.Duration(i)*time.Hour),
		))
	}

	// 4. High-velocity burst from one account.
	for i := 0; i < 50; i++ {
		records = append(records, record(
			fmt.Sprintf("TX_BURST_%d", i),
			"BURST_NODE_X", accounts[rng.Intn(len(accounts))],
			50,
			baseTime.Add(15*24*time.Hour+time.Duration(i)*time.Minute),
		))
	}

	// 5. Shell chain through low-activity intermediaries.
	for i := 0; i < 5; i++ {
		records = append(records, record(
			fmt.Sprintf("TX_SHELL_%d", i),
			fmt.Sprintf("SHELL_%d", i), fmt.Sprintf("SHELL_%d", i+1),
			2500,
			baseTime.Add(20*24*time.Hour+time.Duration(i)*time.Hour),
		))
	}

	return records
}

func record(id, sender, receiver string, amount float64, ts time.Time) heuristics.RawRecord {
	return heuristics.RawRecord{
		TransactionID: id,
		SenderID:      sender,
		ReceiverID:    receiver,
		Amount:        fmt.Sprintf("%.2f", amount),
		Timestamp:     ts.Format(heuristics.TimestampLayout),
	}
}

// WriteCSV renders records in the canonical upload format.
func WriteCSV(w io.Writer, records []heuristics.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.TransactionID, r.SenderID, r.ReceiverID, r.Amount, r.Timestamp}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
