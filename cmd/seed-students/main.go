package main

import (
	"context"
	"fmt"
	"time"

	"github.com/suneung/mocktrack-backend/internal/config"
	"github.com/suneung/mocktrack-backend/internal/database"
	"github.com/suneung/mocktrack-backend/internal/logger"
	"github.com/suneung/mocktrack-backend/internal/repository"
)

// roster is the fixed group of students this deployment tracks. Seeding
// is idempotent; rerunning leaves existing rows alone.
var roster = []string{
	"민준",
	"서연",
	"지호",
	"하은",
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)

	fmt.Printf("=== Seeding %d Students ===\n", len(roster))

	for _, name := range roster {
		if err := studentRepo.Upsert(ctx, name); err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("Failed to seed student")
		}
		fmt.Printf("ok: %s\n", name)
	}

	students, err := studentRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list students")
	}
	fmt.Printf("Roster now has %d students\n", len(students))
}
