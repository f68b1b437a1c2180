package main

import (
	"flag"
	"log"
	"os"

	"github.com/muletrace/forensics-engine/internal/datagen"
)

func main() {
	count := flag.Int("transactions", 10000, "number of transactions to generate")
	output := flag.String("output", "transactions.csv", "output CSV path")
	seed := flag.Int64("seed", datagen.DefaultSeed, "RNG seed")
	flag.Parse()

	log.Printf("Generating %d transactions...", *count)
	records := datagen.Generate(*count, *seed)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()

	if err := datagen.WriteCSV(f, records); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	log.Printf("Successfully generated %d transactions into %s", len(records), *output)
}
