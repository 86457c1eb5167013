package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"sentinal-social/config"
	"sentinal-social/internal/bootstrap"
	"sentinal-social/internal/repository"
	"sentinal-social/internal/seed"
	"sentinal-social/pkg/database"
	"sentinal-social/pkg/logger"
)

const usage = `
Sentinal Social - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create missing tables and indexes
  status      Show database connection status and table sizes
  seed-dev    Seed with development data (runs up first)

Flags:
  -password string   Password for seeded users (default "password123")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  DB_DRIVER=sqlite go run cmd/migrate/main.go seed-dev
`

var tables = []string{"users", "friendships", "friend_requests", "conversations", "conversation_participants", "messages"}

func main() {
	password := flag.String("password", seed.DefaultConfig().Password, "Password for seeded users")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	// Load config and connect to database
	cfg := config.LoadConfig()
	sqlDB, dialect, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	db := repository.NewDB(sqlDB, dialect)

	switch command {
	case "up":
		runMigrationsUp(ctx, db)
	case "status":
		showStatus(ctx, db)
	case "seed-dev":
		runMigrationsUp(ctx, db)
		runSeedDevelopment(ctx, cfg, db, *password)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(ctx context.Context, db *repository.DB) {
	log.Printf("Applying schema (%s)...", db.Dialect())

	if err := repository.InitSchema(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema is up to date")
}

func showStatus(ctx context.Context, db *repository.DB) {
	if err := database.HealthCheck(ctx, db.DB); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range tables {
		var count int64
		// table names come from the fixed list above
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			log.Printf("Table %-26s missing or unreadable: %v", table, err)
			continue
		}
		log.Printf("Table %-26s %d rows", table, count)
	}
}

func runSeedDevelopment(ctx context.Context, cfg *config.Config, db *repository.DB, password string) {
	log.Println("Seeding database (development mode)...")

	app := bootstrap.New(cfg, db.DB, db.Dialect(), nil, logger.New(cfg.AppMode))
	seedCfg := seed.DefaultConfig()
	seedCfg.Password = password

	result, err := seed.Run(ctx, seed.Services{
		Auth:          app.Auth,
		Relationships: app.Relationships,
		Conversations: app.Conversations,
		Groups:        app.Groups,
		Messages:      app.Messages,
	}, seedCfg)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seed Summary:")
	for _, u := range result.Users {
		log.Printf("   - User: %s (%s)", u.Username, u.ID)
	}
	log.Printf("   - Chat: %s", result.ChatID)
	log.Printf("   - Group: %s", result.GroupID)
	log.Printf("   - Messages: %d", result.Messages)
}
