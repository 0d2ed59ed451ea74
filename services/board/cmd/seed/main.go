package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"shenanigigs/common/database"
	"shenanigigs/services/board/internal/config"
	"shenanigigs/services/board/internal/messaging"
	"shenanigigs/services/board/internal/models"
	"shenanigigs/services/board/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "JSON array of postings to load instead of the built-in samples")
	notify := flag.Bool("notify", true, "publish a postings changed event after seeding")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	postings := seed.Samples()
	if *file != "" {
		postings, err = readPostings(*file)
		if err != nil {
			logger.Fatal("Failed to read seed file", zap.String("file", *file), zap.Error(err))
		}
	}

	ctx := context.Background()
	db, err := database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	count, err := seed.Store(ctx, db.Conn(), postings, logger)
	if err != nil {
		logger.Fatal("Failed to seed postings", zap.Error(err))
	}

	if !*notify {
		return
	}

	nc, err := messaging.Connect(cfg.NATSURL, cfg.NATSConnTimeout)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	publisher := messaging.NewPublisher(nc, cfg.NATSRefreshSubject, logger)
	defer publisher.Close()

	if err := publisher.PublishPostingsChanged(ctx, messaging.PostingsChanged{
		Source: "seed",
		Count:  count,
		At:     time.Now().UTC(),
	}); err != nil {
		logger.Fatal("Failed to publish postings changed", zap.Error(err))
	}
	if err := nc.Flush(); err != nil {
		logger.Warn("Failed to flush NATS connection", zap.Error(err))
	}
}

func readPostings(path string) ([]models.Posting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Decode(f)
}
