package migrations

import "time"

// InitialSchema creates the initial database schema
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		-- Create users table
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			callsign TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);

		-- Create routes table (seed/reference data)
		CREATE TABLE IF NOT EXISTS routes (
			id INTEGER PRIMARY KEY,
			dep TEXT NOT NULL,
			arr TEXT NOT NULL,
			distance_nm INTEGER NOT NULL,
			aircraft TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_routes_dep ON routes (dep);
		CREATE INDEX IF NOT EXISTS idx_routes_arr ON routes (arr);

		-- Create flights table
		CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id),
			route_id INTEGER REFERENCES routes (id),
			dep TEXT NOT NULL,
			arr TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			start_ts TIMESTAMPTZ NOT NULL,
			end_ts TIMESTAMPTZ,
			block_minutes DOUBLE PRECISION,
			distance_nm DOUBLE PRECISION,
			landing_rate_fpm DOUBLE PRECISION
		);

		CREATE INDEX IF NOT EXISTS idx_flights_user_id ON flights (user_id);
		CREATE INDEX IF NOT EXISTS idx_flights_status ON flights (status);
		CREATE INDEX IF NOT EXISTS idx_flights_start_ts ON flights (start_ts);

		-- Create positions table
		CREATE TABLE IF NOT EXISTS positions (
			id BIGSERIAL PRIMARY KEY,
			flight_id TEXT NOT NULL REFERENCES flights (id),
			ts TIMESTAMPTZ NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			alt_ft DOUBLE PRECISION NOT NULL,
			ias_kt DOUBLE PRECISION NOT NULL,
			vs_fpm DOUBLE PRECISION NOT NULL,
			onground BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE INDEX IF NOT EXISTS idx_positions_flight_ts ON positions (flight_id, ts);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS positions;
		DROP TABLE IF EXISTS flights;
		DROP TABLE IF EXISTS routes;
		DROP TABLE IF EXISTS users;
	`,
	CreatedAt: time.Now(),
}
