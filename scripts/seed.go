// Development utility: seeds the starter doctor dataset for one user
// directly into the remote store, bypassing the API.
//
// Usage: go run scripts/seed.go <uid>
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/database"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
	"github.com/farmacliniq/fieldcrm/backend/internal/seed"
	"github.com/farmacliniq/fieldcrm/backend/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <uid>")
	}
	uid := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	doctors, err := seed.Doctors()
	if err != nil {
		log.Fatalf("Failed to load seed dataset: %v", err)
	}

	now := time.Now().Format(time.RFC3339)
	for _, doctor := range doctors {
		doctor.ID = uuid.New().String()
		doctor.OwnerUID = uid
		doctor.Consultant = uid
		if doctor.LastContactAt == "" {
			doctor.LastContactAt = now
		}
	}

	doctorRepo := database.NewDoctorAdapter(pgClient)
	if err := doctorRepo.UpsertBatch(ctx, uid, doctors); err != nil {
		log.Fatalf("Failed to write seed batch: %v", err)
	}

	log.Printf("Seeded %d doctors for %s", len(doctors), uid)
}
