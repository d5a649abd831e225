package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"villabook/internal/config"
	"villabook/internal/database"
	"villabook/internal/modules/sweeper"
	"villabook/internal/repository"
)

// One-shot expiry pass for cron-style deployments. The API binary runs the
// same sweep on a ticker; only one of the two needs to be scheduled.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	svc := sweeper.NewService(
		repository.NewBookingRepository(db),
		repository.NewLedgerRepository(db),
		cfg.HoldWindow,
		log.Printf,
	)

	expired, err := svc.SweepOnce(context.Background())
	if err != nil {
		log.Fatalf("expiry sweep failed: %v", err)
	}
	log.Printf("expiry sweep completed: expired=%d", expired)
}
