package nats

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tartanair/va-backend/internal/types"
)

// setupNATSContainer starts a NATS container for integration tests
func setupNATSContainer(t *testing.T) *natscontainer.NATSContainer {
	t.Helper()
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2.9-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server is ready"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate NATS container: %v", err)
		}
	})
	return container
}

func TestClient_Integration_Connection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container := setupNATSContainer(t)

	natsURL, err := container.ConnectionString(context.Background())
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}

	client, err := New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	if client.conn == nil {
		t.Error("Expected connection to be initialized")
	}
	if client.js == nil {
		t.Error("Expected JetStream context to be initialized")
	}
}

func TestClient_Integration_PublishAndSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container := setupNATSContainer(t)

	natsURL, err := container.ConnectionString(context.Background())
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}

	client, err := New(natsURL)
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	report := &types.PositionReport{
		Position: types.Position{
			FlightID: "flight-1",
			TS:       time.Now().UTC(),
			Lat:      55.95,
			Lon:      -3.37,
			AltFt:    34000,
			IASKt:    280,
		},
		ReceivedAt: time.Now().UTC(),
	}

	received := make(chan *types.PositionReport, 1)
	if err := client.SubscribePositions(func(r *types.PositionReport) {
		received <- r
	}); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	// Give subscription time to establish
	time.Sleep(100 * time.Millisecond)

	if err := client.PublishPosition(report); err != nil {
		t.Fatalf("Failed to publish position report: %v", err)
	}

	select {
	case got := <-received:
		if got.FlightID != report.FlightID {
			t.Errorf("Expected flight %s, got %s", report.FlightID, got.FlightID)
		}
		if got.Lat != report.Lat || got.Lon != report.Lon {
			t.Errorf("Expected position %v/%v, got %v/%v", report.Lat, report.Lon, got.Lat, got.Lon)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for position report")
	}
}
