package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tartanair/va-backend/internal/nats"
	"github.com/tartanair/va-backend/internal/storage"
	"github.com/tartanair/va-backend/internal/types"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Position logger failed: %v", err)
		os.Exit(1)
	}
}

// run contains the main application logic and can be tested
func run() error {
	outputDir, natsURL := parseEnvironment()

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	client, err := nats.New(natsURL)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}

	archive := storage.New(outputDir)
	if err := archive.Start(); err != nil {
		client.Close()
		return fmt.Errorf("failed to start archive: %w", err)
	}

	if err := client.SubscribePositions(func(report *types.PositionReport) {
		line, err := json.Marshal(report)
		if err != nil {
			log.Printf("Failed to marshal report: %v", err)
			return
		}
		if err := archive.WriteLine(line); err != nil {
			log.Printf("Failed to archive report: %v", err)
		}
	}); err != nil {
		client.Close()
		if serr := archive.Stop(); serr != nil {
			log.Printf("Failed to stop archive: %v", serr)
		}
		return fmt.Errorf("failed to subscribe to position reports: %w", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	client.Close()
	if err := archive.Stop(); err != nil {
		log.Printf("Failed to stop archive: %v", err)
	}
	time.Sleep(time.Second) // Give time for goroutines to clean up

	return nil
}

// parseEnvironment extracts environment variables with defaults
func parseEnvironment() (string, string) {
	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "./logs"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return outputDir, natsURL
}
