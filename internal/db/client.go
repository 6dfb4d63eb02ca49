package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/tartanair/va-backend/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// NewWithDB wraps an existing connection (useful for testing)
func NewWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the database connection
func (c *Client) Ping() error {
	return c.db.Ping()
}

// CreateUser creates a new user account
func (c *Client) CreateUser(user *types.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, callsign)
		VALUES ($1, $2, $3, $4)
	`
	_, err := c.db.Exec(query, user.ID, user.Email, user.PasswordHash, user.Callsign)
	return err
}

// GetUser retrieves a user by id. Returns nil when the user is unknown.
func (c *Client) GetUser(id string) (*types.User, error) {
	query := `SELECT id, email, password_hash, callsign FROM users WHERE id = $1`
	return c.scanUser(c.db.QueryRow(query, id))
}

// GetUserByEmail retrieves a user by email. Returns nil when the user is unknown.
func (c *Client) GetUserByEmail(email string) (*types.User, error) {
	query := `SELECT id, email, password_hash, callsign FROM users WHERE email = $1`
	return c.scanUser(c.db.QueryRow(query, email))
}

func (c *Client) scanUser(row *sql.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Callsign)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountRoutes returns the number of seeded routes
func (c *Client) CountRoutes() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM routes`).Scan(&n)
	return n, err
}

// SeedRoutes inserts the route catalog
func (c *Client) SeedRoutes(routes []types.Route) error {
	query := `
		INSERT INTO routes (id, dep, arr, distance_nm, aircraft)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, r := range routes {
		if _, err := c.db.Exec(query, r.ID, r.Dep, r.Arr, r.DistanceNM, r.Aircraft); err != nil {
			return err
		}
	}
	return nil
}

// ListRoutes retrieves the full route catalog
func (c *Client) ListRoutes() ([]*types.Route, error) {
	query := `SELECT id, dep, arr, distance_nm, aircraft FROM routes ORDER BY id`
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*types.Route
	for rows.Next() {
		var r types.Route
		if err := rows.Scan(&r.ID, &r.Dep, &r.Arr, &r.DistanceNM, &r.Aircraft); err != nil {
			return nil, err
		}
		routes = append(routes, &r)
	}
	return routes, rows.Err()
}

// GetRoute retrieves a route by id. Returns nil when the route is unknown.
func (c *Client) GetRoute(id int) (*types.Route, error) {
	query := `SELECT id, dep, arr, distance_nm, aircraft FROM routes WHERE id = $1`
	var r types.Route
	err := c.db.QueryRow(query, id).Scan(&r.ID, &r.Dep, &r.Arr, &r.DistanceNM, &r.Aircraft)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateFlight creates a new flight
func (c *Client) CreateFlight(flight *types.Flight) error {
	query := `
		INSERT INTO flights (id, user_id, route_id, dep, arr, status, start_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := c.db.Exec(query,
		flight.ID, flight.UserID, flight.RouteID,
		flight.Dep, flight.Arr, flight.Status, flight.StartTS,
	)
	return err
}

// GetFlight retrieves a flight by id. Returns nil when the flight is unknown.
func (c *Client) GetFlight(id string) (*types.Flight, error) {
	query := `
		SELECT id, user_id, route_id, dep, arr, status, start_ts, end_ts,
			block_minutes, distance_nm, landing_rate_fpm
		FROM flights
		WHERE id = $1
	`
	var f types.Flight
	err := c.db.QueryRow(query, id).Scan(
		&f.ID, &f.UserID, &f.RouteID, &f.Dep, &f.Arr, &f.Status, &f.StartTS, &f.EndTS,
		&f.BlockMinutes, &f.DistanceNM, &f.LandingRateFPM,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// AppendPosition persists a position sample for a flight
func (c *Client) AppendPosition(pos *types.Position) error {
	query := `
		INSERT INTO positions (flight_id, ts, lat, lon, alt_ft, ias_kt, vs_fpm, onground)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := c.db.Exec(query,
		pos.FlightID, pos.TS, pos.Lat, pos.Lon,
		pos.AltFt, pos.IASKt, pos.VSFpm, pos.OnGround,
	)
	return err
}

// ListPositions retrieves all positions for a flight ordered by timestamp ascending
func (c *Client) ListPositions(flightID string) ([]*types.Position, error) {
	query := `
		SELECT flight_id, ts, lat, lon, alt_ft, ias_kt, vs_fpm, onground
		FROM positions
		WHERE flight_id = $1
		ORDER BY ts ASC
	`
	rows, err := c.db.Query(query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*types.Position
	for rows.Next() {
		var p types.Position
		if err := rows.Scan(&p.FlightID, &p.TS, &p.Lat, &p.Lon, &p.AltFt, &p.IASKt, &p.VSFpm, &p.OnGround); err != nil {
			return nil, err
		}
		positions = append(positions, &p)
	}
	return positions, rows.Err()
}

// LastPosition retrieves the most recent position for a flight.
// Returns nil when the flight has no recorded positions.
func (c *Client) LastPosition(flightID string) (*types.Position, error) {
	query := `
		SELECT flight_id, ts, lat, lon, alt_ft, ias_kt, vs_fpm, onground
		FROM positions
		WHERE flight_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`
	var p types.Position
	err := c.db.QueryRow(query, flightID).Scan(
		&p.FlightID, &p.TS, &p.Lat, &p.Lon, &p.AltFt, &p.IASKt, &p.VSFpm, &p.OnGround,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FinishFlight transitions a flight to finished and freezes its derived
// metrics in a single statement. The status guard makes the transition
// atomic: a flight that is already finished is left untouched and the
// call reports false.
func (c *Client) FinishFlight(id string, endTS time.Time, blockMinutes, distanceNM float64, landingRateFPM *float64) (bool, error) {
	query := `
		UPDATE flights SET
			status = $1, end_ts = $2,
			block_minutes = $3, distance_nm = $4, landing_rate_fpm = $5
		WHERE id = $6 AND status = $7
	`
	res, err := c.db.Exec(query,
		types.StatusFinished, endTS,
		blockMinutes, distanceNM, landingRateFPM,
		id, types.StatusActive,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActiveFlights retrieves all active flights ordered by start time
func (c *Client) ListActiveFlights() ([]*types.Flight, error) {
	query := `
		SELECT id, user_id, route_id, dep, arr, status, start_ts, end_ts,
			block_minutes, distance_nm, landing_rate_fpm
		FROM flights
		WHERE status = $1
		ORDER BY start_ts ASC
	`
	rows, err := c.db.Query(query, types.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []*types.Flight
	for rows.Next() {
		var f types.Flight
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.RouteID, &f.Dep, &f.Arr, &f.Status, &f.StartTS, &f.EndTS,
			&f.BlockMinutes, &f.DistanceNM, &f.LandingRateFPM,
		); err != nil {
			return nil, err
		}
		flights = append(flights, &f)
	}
	return flights, rows.Err()
}
