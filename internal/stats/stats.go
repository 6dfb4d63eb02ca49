package stats

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Stats tracks flight tracking statistics
type Stats struct {
	StartedFlights    uint64
	FinishedFlights   uint64
	AcceptedPositions uint64
	RejectedRequests  uint64

	ActiveFlights uint64
}

// New creates a new Stats instance
func New() *Stats {
	return &Stats{}
}

// IncrementStartedFlights increments the started flights counter
func (s *Stats) IncrementStartedFlights() {
	atomic.AddUint64(&s.StartedFlights, 1)
}

// IncrementFinishedFlights increments the finished flights counter
func (s *Stats) IncrementFinishedFlights() {
	atomic.AddUint64(&s.FinishedFlights, 1)
}

// IncrementAcceptedPositions increments the accepted positions counter
func (s *Stats) IncrementAcceptedPositions() {
	atomic.AddUint64(&s.AcceptedPositions, 1)
}

// IncrementRejectedRequests increments the rejected requests counter
func (s *Stats) IncrementRejectedRequests() {
	atomic.AddUint64(&s.RejectedRequests, 1)
}

// SetActiveFlights sets the active flights gauge
func (s *Stats) SetActiveFlights(count uint64) {
	atomic.StoreUint64(&s.ActiveFlights, count)
}

// Snapshot returns a consistent copy of the counters
func (s *Stats) Snapshot() Stats {
	return Stats{
		StartedFlights:    atomic.LoadUint64(&s.StartedFlights),
		FinishedFlights:   atomic.LoadUint64(&s.FinishedFlights),
		AcceptedPositions: atomic.LoadUint64(&s.AcceptedPositions),
		RejectedRequests:  atomic.LoadUint64(&s.RejectedRequests),
		ActiveFlights:     atomic.LoadUint64(&s.ActiveFlights),
	}
}

// StartLogging periodically logs a statistics summary until ctx is done
func (s *Stats) StartLogging(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Snapshot()
			log.Printf("Stats: started=%d finished=%d positions=%d rejected=%d active=%d",
				snap.StartedFlights, snap.FinishedFlights, snap.AcceptedPositions,
				snap.RejectedRequests, snap.ActiveFlights)
		}
	}
}
