// Package main is the entry point for the pgrunner service.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"pgrunner/src/app/server"
	"pgrunner/src/core/usecase"
	"pgrunner/src/infra/config"
	"pgrunner/src/infra/db"
	"pgrunner/src/infra/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; real environments set vars directly.
	_ = godotenv.Load()

	// Load configuration from environment variables.
	// A missing POSTGRES_URL fails here and stops the process.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	logg := logger.New(cfg.Log)
	logg.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
	)

	// Wire the pgx driver into the pool manager
	driver := db.NewPgxDriver(cfg.Postgres, logger.WithComponent(logg, "db"))
	pool := usecase.NewPoolManager(driver, usecase.PoolConfig{
		URL:            cfg.Postgres.URL,
		MaxPoolSize:    cfg.Postgres.MaxPoolSize,
		MinPoolSize:    cfg.Postgres.MinPoolSize,
		ConnectTimeout: cfg.Postgres.ConnectTimeout,
		QueryTimeout:   cfg.Postgres.QueryTimeout,
	}, logger.WithComponent(logg, "pool"))

	// Create and run HTTP server; Run starts the pool, blocks until a
	// shutdown signal, and drains the pool on the way out.
	srv := server.New(cfg, logg, pool)
	return srv.Run()
}
