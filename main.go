package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gamma-omg/docqa-mcp/answering"
	"github.com/gamma-omg/docqa-mcp/llm"
	"github.com/gamma-omg/docqa-mcp/readers"
	"github.com/gamma-omg/docqa-mcp/recordstore"
)

func main() {
	reset := flag.Bool("reset", false, "Recreate the record store from scratch if set")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the DocQA server")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	if *reset {
		if err := os.Remove(cfg.Database); err != nil && !os.IsNotExist(err) {
			log.Fatalf("failed to reset record store: %s", err)
		}
	}

	store, err := recordstore.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	gen, err := llm.NewGenerator(os.Getenv(cfg.LLM.APIKeyEnv), cfg.LLM.BaseURL, cfg.LLM.Model)
	if err != nil {
		log.Fatal(err)
	}

	reg := DocRegistry{
		log:              logger,
		root:             cfg.DocRoot,
		store:            store,
		readers:          readers.Default(),
		mergeEventsDelay: time.Duration(cfg.WriteDebounceMs) * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := reg.Sync(ctx); err != nil {
			log.Fatal(err)
		}

		if err := reg.Watch(ctx); err != nil {
			log.Fatal(err)
		}
	}()

	svc := answering.NewService(logger, store, gen, cfg.retrievalOptions())

	srv := NewDocQAServer(svc, logger)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
	log.Println(sse.Start(cfg.ServerAddr))
}
