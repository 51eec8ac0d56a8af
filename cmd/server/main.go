package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notsolong/internal/config"
	"notsolong/internal/db"
	"notsolong/internal/router"
	"notsolong/internal/utils"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.Env)
	defer zap.L().Sync()

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Init(cfg)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	zap.L().Info("database connection established")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		zap.L().Info("redis rate limiter enabled", zap.String("addr", cfg.RedisAddr))
	}

	r := router.New(cfg, conn, rdb)

	zap.L().Info("listening", zap.String("port", cfg.ServerPort))
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
