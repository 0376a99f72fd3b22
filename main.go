package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	if len(os.Args) > 1 && os.Args[1] == "export" {
		if _, err := ExportClassifications(ctx, store, cfg.ExportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	catalog, err := LoadTagCatalog(cfg.TagCatalogPath)
	if err != nil {
		log.Fatalf("Failed to load tag catalog: %v", err)
	}
	log.Printf("Tag catalog loaded (%d tags)", catalog.Len())

	client := NewCompleter(cfg)
	if cfg.UseLLM && client == nil {
		log.Println("LLM unavailable, keyword classification only")
	}
	classifier := NewClassifier(cfg, catalog, client)
	runner := NewRunner(cfg, store, classifier)

	var api *slack.Client
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		api = slack.New(cfg.SlackBotToken)
	}

	runOnce := func(ctx context.Context) {
		population, err := ReadCustomerPopulation(cfg.CustomersCSV)
		if err != nil {
			log.Printf("Failed to read customer population: %v", err)
			return
		}
		stats, err := runner.Run(ctx, population)
		if err != nil {
			log.Printf("Run aborted: %v", err)
			return
		}
		PostRunSummary(api, cfg.SlackChannelID, stats)
	}

	log.Println("Starting conversation classifier...")
	if cfg.RunSchedule != "" {
		if err := RunScheduled(ctx, cfg.RunSchedule, runOnce); err != nil && ctx.Err() == nil {
			log.Fatalf("Scheduler error: %v", err)
		}
		return
	}
	runOnce(ctx)
}

func openStore(ctx context.Context, cfg Config) (Store, error) {
	if cfg.StorageDriver == "postgres" {
		store, err := OpenPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return OpenSQLiteStore(cfg.DBPath)
}
