package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/tartanair/va-backend/internal/types"
)

// MockPosition creates a position sample for testing
func MockPosition(flightID string, ts time.Time, lat, lon float64) *types.Position {
	return &types.Position{
		FlightID: flightID,
		TS:       ts,
		Lat:      lat,
		Lon:      lon,
		AltFt:    35000,
		IASKt:    250,
		VSFpm:    0,
		OnGround: false,
	}
}

// MockFlight creates an active flight for testing
func MockFlight(id, userID string, start time.Time) *types.Flight {
	return &types.Flight{
		ID:      id,
		UserID:  userID,
		Dep:     "EGPH",
		Arr:     "EGNM",
		Status:  types.StatusActive,
		StartTS: start,
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
