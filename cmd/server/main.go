package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"replay-doctor/internal/config"
	"replay-doctor/internal/diagnosis"
	"replay-doctor/internal/janitor"
	"replay-doctor/internal/mcptool"
	"replay-doctor/internal/pipeline"
	"replay-doctor/internal/recording"
	"replay-doctor/internal/renderer"
	"replay-doctor/internal/rendezvous"
	"replay-doctor/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	store, err := recording.NewStore(cfg.RecordingsDir, cfg.OutputsDir)
	if err != nil {
		log.Fatalf("failed to init recording store: %v", err)
	}

	client, err := diagnosis.NewFactory(cfg).CreateClient(cfg.DiagnosisProvider)
	if err != nil {
		log.Fatalf("failed to create diagnosis client: %v", err)
	}
	log.Printf("🧠 Diagnosis provider: %s", cfg.DiagnosisProvider)

	broker := rendezvous.New()
	orch := pipeline.New(store, renderer.New(cfg.RendererPath, cfg.BrowserPath), client, broker)

	jan := janitor.New(store, cfg.JanitorSchedule, cfg.JanitorMaxAge)
	if err := jan.Start(); err != nil {
		log.Fatalf("failed to start janitor: %v", err)
	}
	defer jan.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := web.NewServer(orch, cfg.Port)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("❌ HTTP server failed: %v", err)
		}
	}()
	defer func() { _ = srv.Stop() }()

	if cfg.MCPEnabled {
		// Blocks serving find-bugs over stdio until the transport closes.
		mcpSrv := mcptool.NewServer(broker)
		if err := mcpSrv.Run(ctx); err != nil {
			log.Printf("🔌 MCP server stopped: %v", err)
		}
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("👋 Shutting down")
}
