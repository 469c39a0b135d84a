package main

import (
	"fmt"
	"log"

	"datagate/internal/config"
	"datagate/internal/db"
	httpserver "datagate/internal/http"
	"datagate/internal/seed"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DSN)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("❌ Auto-migration failed: %v", err)
	}

	if err := seed.FirstSetup(gdb); err != nil {
		log.Fatalf("❌ First setup failed: %v", err)
	}
	if cfg.SeedSampleData {
		if err := seed.SampleData(gdb); err != nil {
			log.Fatalf("❌ Sample data seeding failed: %v", err)
		}
	}

	r := httpserver.NewRouter(gdb, cfg.JWTSecret)
	log.Printf("🚀 Server listening on :%s\n", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
