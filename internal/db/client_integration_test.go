package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tartanair/va-backend/internal/db/migrations"
	"github.com/tartanair/va-backend/internal/types"
)

// setupTestDatabase starts a PostgreSQL container, applies the schema
// and returns a connected client.
func setupTestDatabase(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:14-alpine",
		postgres.WithDatabase("tartanair"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	migrator := migrations.New(sqlDB)
	if err := migrator.Migrate([]*migrations.Migration{migrations.InitialSchema}); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewWithDB(sqlDB)
}

func TestFlightRoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := setupTestDatabase(t)

	user := &types.User{
		ID:           uuid.New().String(),
		Email:        "pilot@example.com",
		PasswordHash: "$2a$12$hash",
		Callsign:     "TAR101",
	}
	if err := client.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	got, err := client.GetUserByEmail("pilot@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("Expected stored user, got %+v", got)
	}

	start := time.Now().UTC().Truncate(time.Microsecond)
	flight := &types.Flight{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Dep:     "EGPH",
		Arr:     "EGNM",
		Status:  types.StatusActive,
		StartTS: start,
	}
	if err := client.CreateFlight(flight); err != nil {
		t.Fatalf("CreateFlight() failed: %v", err)
	}

	// Append samples out of timestamp order; reads come back ordered.
	for _, offset := range []time.Duration{2 * time.Minute, time.Minute} {
		pos := &types.Position{
			FlightID: flight.ID,
			TS:       start.Add(offset),
			Lat:      55.95,
			Lon:      -3.37,
			AltFt:    1000,
		}
		if err := client.AppendPosition(pos); err != nil {
			t.Fatalf("AppendPosition() failed: %v", err)
		}
	}

	positions, err := client.ListPositions(flight.ID)
	if err != nil {
		t.Fatalf("ListPositions() failed: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}
	if !positions[0].TS.Before(positions[1].TS) {
		t.Error("Expected positions ordered by timestamp")
	}

	last, err := client.LastPosition(flight.ID)
	if err != nil {
		t.Fatalf("LastPosition() failed: %v", err)
	}
	if last == nil || !last.TS.Equal(start.Add(2*time.Minute)) {
		t.Errorf("Expected latest sample, got %+v", last)
	}

	active, err := client.ListActiveFlights()
	if err != nil {
		t.Fatalf("ListActiveFlights() failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != flight.ID {
		t.Fatalf("Expected 1 active flight, got %d", len(active))
	}

	end := start.Add(90 * time.Minute)
	rate := -210.0
	committed, err := client.FinishFlight(flight.ID, end, 90.0, 138.1, &rate)
	if err != nil {
		t.Fatalf("FinishFlight() failed: %v", err)
	}
	if !committed {
		t.Fatal("Expected finish to commit")
	}

	// Second finish loses the conditional update.
	committed, err = client.FinishFlight(flight.ID, end.Add(time.Hour), 150.0, 999.9, nil)
	if err != nil {
		t.Fatalf("FinishFlight() failed: %v", err)
	}
	if committed {
		t.Error("Expected second finish to be rejected")
	}

	finished, err := client.GetFlight(flight.ID)
	if err != nil {
		t.Fatalf("GetFlight() failed: %v", err)
	}
	if !finished.Finished() {
		t.Error("Expected finished status")
	}
	if finished.BlockMinutes == nil || *finished.BlockMinutes != 90.0 {
		t.Errorf("Expected block minutes 90.0, got %v", finished.BlockMinutes)
	}
	if finished.DistanceNM == nil || *finished.DistanceNM != 138.1 {
		t.Errorf("Expected distance 138.1, got %v", finished.DistanceNM)
	}
	if finished.LandingRateFPM == nil || *finished.LandingRateFPM != -210.0 {
		t.Errorf("Expected landing rate -210.0, got %v", finished.LandingRateFPM)
	}
	if finished.EndTS == nil || !finished.EndTS.Equal(end) {
		t.Errorf("Expected frozen end timestamp %v, got %v", end, finished.EndTS)
	}

	active, err = client.ListActiveFlights()
	if err != nil {
		t.Fatalf("ListActiveFlights() failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active flights after finish, got %d", len(active))
	}
}

func TestEnsureRoutes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := setupTestDatabase(t)

	if err := client.EnsureRoutes(RouteCatalog); err != nil {
		t.Fatalf("EnsureRoutes() failed: %v", err)
	}
	// Seeding again must not duplicate rows.
	if err := client.EnsureRoutes(RouteCatalog); err != nil {
		t.Fatalf("EnsureRoutes() second run failed: %v", err)
	}

	routes, err := client.ListRoutes()
	if err != nil {
		t.Fatalf("ListRoutes() failed: %v", err)
	}
	if len(routes) != len(RouteCatalog) {
		t.Fatalf("Expected %d routes, got %d", len(RouteCatalog), len(routes))
	}

	route, err := client.GetRoute(routes[0].ID)
	if err != nil {
		t.Fatalf("GetRoute() failed: %v", err)
	}
	if route == nil || route.Dep == "" {
		t.Fatalf("Expected seeded route, got %+v", route)
	}

	missing, err := client.GetRoute(9999)
	if err != nil {
		t.Fatalf("GetRoute() failed for unknown id: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown route, got %+v", missing)
	}
}
