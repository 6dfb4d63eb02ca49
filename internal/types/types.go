package types

import (
	"time"
)

// FlightStatus is the lifecycle state of a flight. Transitions are
// monotonic: active flights may become finished, never the reverse.
type FlightStatus string

const (
	StatusActive   FlightStatus = "active"
	StatusFinished FlightStatus = "finished"
)

// User is an account that owns flights. The password hash is bcrypt
// and never leaves the server.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Callsign     string `json:"callsign,omitempty"`
}

// Route is seeded reference data: a published company route. Aircraft
// is a comma-separated list of type codes and is treated as opaque.
type Route struct {
	ID         int    `json:"id"`
	Dep        string `json:"dep"`
	Arr        string `json:"arr"`
	DistanceNM int    `json:"distance_nm"`
	Aircraft   string `json:"aircraft"`
}

// Flight is a single tracked flight from start to finish. The three
// derived metrics are nil while the flight is active and are computed
// and frozen exactly once, when the flight is finished.
type Flight struct {
	ID      string       `json:"id"`
	UserID  string       `json:"user_id"`
	RouteID *int         `json:"route_id,omitempty"`
	Dep     string       `json:"dep"`
	Arr     string       `json:"arr"`
	Status  FlightStatus `json:"status"`
	StartTS time.Time    `json:"start_ts"`
	EndTS   *time.Time   `json:"end_ts,omitempty"`

	BlockMinutes   *float64 `json:"block_minutes,omitempty"`
	DistanceNM     *float64 `json:"distance_nm,omitempty"`
	LandingRateFPM *float64 `json:"landing_rate_fpm,omitempty"`
}

// Finished reports whether the flight has reached its terminal state.
func (f *Flight) Finished() bool {
	return f.Status == StatusFinished
}

// Position is an immutable telemetry sample belonging to one flight.
type Position struct {
	FlightID string    `json:"flight_id"`
	TS       time.Time `json:"ts"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	AltFt    float64   `json:"alt_ft"`
	IASKt    float64   `json:"ias_kt"`
	VSFpm    float64   `json:"vs_fpm"`
	OnGround bool      `json:"onground"`
}

// PositionReport is the message published to the telemetry bus for
// every accepted position sample.
type PositionReport struct {
	Position
	ReceivedAt time.Time `json:"received_at"`
}

// LiveFlight is one row of the live fleet snapshot: an active flight
// with its most recent known position.
type LiveFlight struct {
	FlightID     string   `json:"flight_id"`
	Callsign     string   `json:"callsign"`
	Dep          string   `json:"dep"`
	Arr          string   `json:"arr"`
	LastPosition Position `json:"last_position"`
}
