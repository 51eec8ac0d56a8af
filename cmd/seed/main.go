package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"notsolong/internal/config"
	"notsolong/internal/db"
	"notsolong/internal/services"
	"notsolong/internal/utils"
)

// Seeds the demo dataset and rebuilds recap counters from the vote
// ledger. Safe to run repeatedly.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.Env)
	defer zap.L().Sync()

	conn, err := db.Init(cfg)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}

	if err := services.Seed(conn); err != nil {
		zap.L().Fatal("seed failed", zap.Error(err))
	}
}
