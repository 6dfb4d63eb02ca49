// Package tracker implements the flight lifecycle: starting a flight,
// ingesting position reports, and finishing it with derived metrics. It
// also builds the live fleet snapshot served to polling clients.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartanair/va-backend/internal/geo"
	"github.com/tartanair/va-backend/internal/stats"
	"github.com/tartanair/va-backend/internal/types"
)

// ErrNotFound is returned when a referenced route or flight does not
// exist, or when a flight exists but is not owned by the caller.
// Ownership failures are deliberately indistinguishable from absence.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface the tracker depends on.
// *db.Client satisfies it; tests use an in-memory implementation.
// Lookups return (nil, nil) when the record is absent.
type Store interface {
	GetUser(id string) (*types.User, error)
	GetRoute(id int) (*types.Route, error)
	CreateFlight(flight *types.Flight) error
	GetFlight(id string) (*types.Flight, error)
	AppendPosition(pos *types.Position) error
	ListPositions(flightID string) ([]*types.Position, error)
	LastPosition(flightID string) (*types.Position, error)
	FinishFlight(id string, endTS time.Time, blockMinutes, distanceNM float64, landingRateFPM *float64) (bool, error)
	ListActiveFlights() ([]*types.Flight, error)
}

// Cache holds the most recent position per flight. May be nil; all
// cache operations are best-effort.
type Cache interface {
	StoreLastPosition(ctx context.Context, pos *types.Position) error
	GetLastPosition(ctx context.Context, flightID string) (*types.Position, error)
	DeleteLastPosition(ctx context.Context, flightID string) error
}

// Bus receives every accepted position report. May be nil; publishing
// is best-effort.
type Bus interface {
	PublishPosition(report *types.PositionReport) error
}

// Sample is a single position report as submitted by the client. The
// timestamp is assigned server-side on ingestion.
type Sample struct {
	Lat      float64
	Lon      float64
	AltFt    float64
	IASKt    float64
	VSFpm    float64
	OnGround bool
}

// FinishResult carries the metrics frozen by a finish operation.
// AlreadyFinished marks the idempotent no-op case: the flight was
// finished earlier and the returned values are the frozen ones.
type FinishResult struct {
	AlreadyFinished bool
	BlockMinutes    float64
	DistanceNM      float64
}

// Tracker enforces the active→finished state machine and computes
// derived metrics. Mutations targeting the same flight are serialized
// through a per-flight lock so a finish never races an append.
type Tracker struct {
	store Store
	cache Cache
	bus   Bus
	stats *stats.Stats

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a new Tracker. cache and bus may be nil.
func New(store Store, cache Cache, bus Bus) *Tracker {
	return &Tracker{
		store: store,
		cache: cache,
		bus:   bus,
		stats: stats.New(),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// Stats exposes the tracker's counters
func (t *Tracker) Stats() *stats.Stats {
	return t.stats
}

// flightLock returns the mutex serializing mutations of one flight
func (t *Tracker) flightLock(flightID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[flightID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[flightID] = l
	}
	return l
}

func (t *Tracker) dropFlightLock(flightID string) {
	t.mu.Lock()
	delete(t.locks, flightID)
	t.mu.Unlock()
}

// Start creates a new active flight owned by userID. When routeID is
// given it must resolve to a seeded route. Airport codes are normalized
// to uppercase.
func (t *Tracker) Start(ctx context.Context, userID, dep, arr string, routeID *int) (*types.Flight, error) {
	if routeID != nil {
		route, err := t.store.GetRoute(*routeID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve route: %w", err)
		}
		if route == nil {
			return nil, fmt.Errorf("route %d: %w", *routeID, ErrNotFound)
		}
	}

	flight := &types.Flight{
		ID:      uuid.New().String(),
		UserID:  userID,
		RouteID: routeID,
		Dep:     strings.ToUpper(dep),
		Arr:     strings.ToUpper(arr),
		Status:  types.StatusActive,
		StartTS: t.now().UTC(),
	}

	if err := t.store.CreateFlight(flight); err != nil {
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}

	t.stats.IncrementStartedFlights()
	return flight, nil
}

// resolveOwned fetches a flight and checks ownership. Absence and
// foreign ownership both come back as ErrNotFound.
func (t *Tracker) resolveOwned(flightID, userID string) (*types.Flight, error) {
	flight, err := t.store.GetFlight(flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if flight == nil || flight.UserID != userID {
		return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
	}
	return flight, nil
}

// Update appends a position sample to the caller's flight. The sample
// is accepted regardless of flight status: the source system allowed
// late telemetry after finish and that behavior is kept as-is.
func (t *Tracker) Update(ctx context.Context, userID, flightID string, sample Sample) error {
	lock := t.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := t.resolveOwned(flightID, userID)
	if err != nil {
		return err
	}

	pos := &types.Position{
		FlightID: flight.ID,
		TS:       t.now().UTC(),
		Lat:      sample.Lat,
		Lon:      sample.Lon,
		AltFt:    sample.AltFt,
		IASKt:    sample.IASKt,
		VSFpm:    sample.VSFpm,
		OnGround: sample.OnGround,
	}

	if err := t.store.AppendPosition(pos); err != nil {
		return fmt.Errorf("failed to append position: %w", err)
	}
	t.stats.IncrementAcceptedPositions()

	if t.cache != nil {
		if err := t.cache.StoreLastPosition(ctx, pos); err != nil {
			log.Printf("Warning: failed to cache last position: %v", err)
		}
	}

	if t.bus != nil {
		report := &types.PositionReport{Position: *pos, ReceivedAt: t.now().UTC()}
		if err := t.bus.PublishPosition(report); err != nil {
			log.Printf("Warning: failed to publish position report: %v", err)
		}
	}

	return nil
}

// Finish transitions the caller's flight to its terminal state and
// freezes the derived metrics. Finishing an already-finished flight is
// a no-op that returns the frozen values.
func (t *Tracker) Finish(ctx context.Context, userID, flightID string, landingRateFPM *float64) (*FinishResult, error) {
	lock := t.flightLock(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := t.resolveOwned(flightID, userID)
	if err != nil {
		return nil, err
	}
	if flight.Finished() {
		return frozenResult(flight), nil
	}

	endTS := t.now().UTC()
	blockMinutes := round1(endTS.Sub(flight.StartTS).Minutes())

	positions, err := t.store.ListPositions(flight.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	distanceNM := round1(accumulateDistance(positions))

	committed, err := t.store.FinishFlight(flight.ID, endTS, blockMinutes, distanceNM, landingRateFPM)
	if err != nil {
		return nil, fmt.Errorf("failed to finish flight: %w", err)
	}
	if !committed {
		// Lost a race against another finish; the first writer's
		// metrics stand.
		frozen, err := t.store.GetFlight(flight.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get flight: %w", err)
		}
		if frozen == nil {
			return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
		}
		return frozenResult(frozen), nil
	}

	if t.cache != nil {
		if err := t.cache.DeleteLastPosition(ctx, flight.ID); err != nil {
			log.Printf("Warning: failed to drop cached position: %v", err)
		}
	}

	t.stats.IncrementFinishedFlights()
	t.dropFlightLock(flight.ID)

	return &FinishResult{BlockMinutes: blockMinutes, DistanceNM: distanceNM}, nil
}

// Live builds the live fleet snapshot: every active flight with at
// least one recorded position, ordered by start time ascending. The
// callsign falls back to "user<id>" when the owner has none assigned.
func (t *Tracker) Live(ctx context.Context) ([]types.LiveFlight, error) {
	flights, err := t.store.ListActiveFlights()
	if err != nil {
		return nil, fmt.Errorf("failed to list active flights: %w", err)
	}
	t.stats.SetActiveFlights(uint64(len(flights)))

	out := make([]types.LiveFlight, 0, len(flights))
	for _, f := range flights {
		pos, err := t.lastPosition(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			// No telemetry yet, nothing to display.
			continue
		}

		out = append(out, types.LiveFlight{
			FlightID:     f.ID,
			Callsign:     t.callsign(f.UserID),
			Dep:          f.Dep,
			Arr:          f.Arr,
			LastPosition: *pos,
		})
	}
	return out, nil
}

// lastPosition consults the cache first and falls back to the store
func (t *Tracker) lastPosition(ctx context.Context, flightID string) (*types.Position, error) {
	if t.cache != nil {
		pos, err := t.cache.GetLastPosition(ctx, flightID)
		if err != nil {
			log.Printf("Warning: failed to read cached position: %v", err)
		} else if pos != nil {
			return pos, nil
		}
	}

	pos, err := t.store.LastPosition(flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last position: %w", err)
	}
	return pos, nil
}

func (t *Tracker) callsign(userID string) string {
	user, err := t.store.GetUser(userID)
	if err != nil {
		log.Printf("Warning: failed to look up user %s: %v", userID, err)
	}
	if user == nil || user.Callsign == "" {
		return "user" + userID
	}
	return user.Callsign
}

// accumulateDistance sums great-circle legs over consecutive position
// pairs. Positions must already be ordered by timestamp ascending.
func accumulateDistance(positions []*types.Position) float64 {
	var total float64
	for i := 1; i < len(positions); i++ {
		a := geo.Coord{Lat: positions[i-1].Lat, Lon: positions[i-1].Lon}
		b := geo.Coord{Lat: positions[i].Lat, Lon: positions[i].Lon}
		total += geo.DistanceNM(a, b)
	}
	return total
}

func frozenResult(flight *types.Flight) *FinishResult {
	res := &FinishResult{AlreadyFinished: true}
	if flight.BlockMinutes != nil {
		res.BlockMinutes = *flight.BlockMinutes
	}
	if flight.DistanceNM != nil {
		res.DistanceNM = *flight.DistanceNM
	}
	return res
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
