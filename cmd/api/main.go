package main

import (
	"context"
	"log"

	"sentinal-social/config"
	"sentinal-social/internal/bootstrap"
	"sentinal-social/internal/redis"
	"sentinal-social/internal/repository"
	"sentinal-social/pkg/database"
	"sentinal-social/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	// Connect to Database
	sqlDB, dialect, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repository.InitSchema(ctx, repository.NewDB(sqlDB, dialect)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	var rdb *goredis.Client
	if cfg.RedisEnabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
	}

	app := bootstrap.New(cfg, sqlDB, dialect, rdb, l)
	go app.RunBridge(ctx)

	if err := app.Server.Start(); err != nil {
		l.Errorf("server stopped with error: %s", err)
	}
}
