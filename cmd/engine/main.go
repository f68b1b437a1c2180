package main

import (
	"log"
	"os"

	"github.com/muletrace/forensics-engine/internal/api"
	"github.com/muletrace/forensics-engine/internal/db"
	"github.com/muletrace/forensics-engine/internal/heuristics"
)

func main() {
	log.Println("Starting MULE TRACE Financial Forensics Engine...")

	// DATABASE_URL is optional: without it the engine runs fully
	// in-memory and simply skips run persistence.
	var dbConn *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without run persistence. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set, run persistence disabled")
	}

	engine := heuristics.New(heuristics.DefaultConfig())

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(engine, dbConn, wsHub)

	port := getEnvOrDefault("PORT", "5340")
	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
