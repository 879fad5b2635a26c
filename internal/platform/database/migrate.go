package database

import (
	"fmt"
	"log"
)

// schema holds the DDL for the five core tables plus the evaluation job table.
// The partial unique index on levels guarantees at most one active level per room
// even if two activation requests race past the service-layer check.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
		current_level INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'waiting',
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS room_participants (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (room_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS levels (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT NOT NULL,
		initial_code TEXT NOT NULL,
		movie_reference TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		points INTEGER NOT NULL,
		sort_order INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'waiting',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS levels_one_active_per_room
		ON levels (room_id) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS level_test_cases (
		id UUID PRIMARY KEY,
		level_id UUID NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
		input TEXT NOT NULL,
		expected_output TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		level_id UUID NOT NULL REFERENCES levels(id),
		code TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		points INTEGER NOT NULL DEFAULT 0,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS submission_test_results (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		test_case_id UUID NOT NULL REFERENCES level_test_cases(id),
		actual_output TEXT,
		status TEXT NOT NULL,
		execution_time_ms INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS evaluation_jobs (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL REFERENCES submissions(id),
		status TEXT NOT NULL DEFAULT 'queued',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func Migrate() error {
	for i, stmt := range schema {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	log.Println("Database schema up to date.")
	return nil
}
