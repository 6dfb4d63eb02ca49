package testutils

import (
	"sort"
	"sync"
	"time"

	"github.com/tartanair/va-backend/internal/types"
)

// MemStore is an in-memory store implementing the persistence
// contracts of the tracker and the API handlers. Lookups return
// (nil, nil) when absent, matching the database client.
type MemStore struct {
	mu        sync.Mutex
	users     map[string]*types.User
	routes    map[int]*types.Route
	flights   map[string]*types.Flight
	positions map[string][]*types.Position
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		users:     make(map[string]*types.User),
		routes:    make(map[int]*types.Route),
		flights:   make(map[string]*types.Flight),
		positions: make(map[string][]*types.Position),
	}
}

func (s *MemStore) CreateUser(user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *MemStore) GetUser(id string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *MemStore) GetUserByEmail(email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemStore) SeedRoutes(routes []types.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range routes {
		copied := r
		s.routes[r.ID] = &copied
	}
	return nil
}

func (s *MemStore) ListRoutes() ([]*types.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Route, 0, len(s.routes))
	for _, r := range s.routes {
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetRoute(id int) (*types.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *MemStore) CreateFlight(flight *types.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := *flight
	s.flights[f.ID] = &f
	return nil
}

func (s *MemStore) GetFlight(id string) (*types.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[id]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

func (s *MemStore) AppendPosition(pos *types.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *pos
	s.positions[p.FlightID] = append(s.positions[p.FlightID], &p)
	return nil
}

// ListPositions returns positions ordered by timestamp ascending,
// regardless of insertion order, like the SQL query it stands in for.
func (s *MemStore) ListPositions(flightID string) ([]*types.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Position, 0, len(s.positions[flightID]))
	for _, p := range s.positions[flightID] {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out, nil
}

func (s *MemStore) LastPosition(flightID string) (*types.Position, error) {
	positions, err := s.ListPositions(flightID)
	if err != nil || len(positions) == 0 {
		return nil, err
	}
	return positions[len(positions)-1], nil
}

func (s *MemStore) FinishFlight(id string, endTS time.Time, blockMinutes, distanceNM float64, landingRateFPM *float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[id]
	if !ok || f.Status != types.StatusActive {
		return false, nil
	}
	f.Status = types.StatusFinished
	f.EndTS = &endTS
	f.BlockMinutes = &blockMinutes
	f.DistanceNM = &distanceNM
	f.LandingRateFPM = landingRateFPM
	return true, nil
}

func (s *MemStore) ListActiveFlights() ([]*types.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Flight
	for _, f := range s.flights {
		if f.Status == types.StatusActive {
			copied := *f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTS.Before(out[j].StartTS) })
	return out, nil
}
