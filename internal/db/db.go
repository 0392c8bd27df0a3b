package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"social-service/internal/logger"
)

// Connect initializes the database connection and runs migrations.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`DO $$ BEGIN
        CREATE TYPE role_enum AS ENUM ('admin', 'moderator', 'user');
    EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
        CREATE TYPE state_enum AS ENUM ('active', 'inactive', 'deleted');
    EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
        CREATE TYPE visibility_enum AS ENUM ('public', 'private');
    EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
        CREATE TYPE friendship_status_enum AS ENUM ('pending', 'seen', 'accepted', 'rejected');
    EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
        CREATE TYPE message_status_enum AS ENUM ('delivered', 'seen');
    EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        username TEXT NOT NULL UNIQUE,
        firstname TEXT NOT NULL,
        lastname TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        password TEXT NOT NULL DEFAULT '',
        role role_enum NOT NULL DEFAULT 'user',
        state state_enum NOT NULL DEFAULT 'active',
        visibility visibility_enum NOT NULL DEFAULT 'public'
    );`,
	`CREATE TABLE IF NOT EXISTS friendships (
        id UUID PRIMARY KEY,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        requester_id UUID NOT NULL REFERENCES users(id),
        recipient_id UUID NOT NULL REFERENCES users(id),
        status friendship_status_enum NOT NULL DEFAULT 'pending',
        responded_at TIMESTAMPTZ,
        CONSTRAINT friendships_not_self CHECK (requester_id <> recipient_id),
        CONSTRAINT friendships_responded CHECK ((status = 'pending') = (responded_at IS NULL))
    );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS friendships_pair_key
        ON friendships (LEAST(requester_id, recipient_id), GREATEST(requester_id, recipient_id));`,
	`CREATE INDEX IF NOT EXISTS friendships_recipient_status_idx ON friendships (recipient_id, status);`,
	`CREATE INDEX IF NOT EXISTS friendships_requester_status_idx ON friendships (requester_id, status);`,
	`CREATE TABLE IF NOT EXISTS messages (
        id UUID PRIMARY KEY,
        sender_id UUID NOT NULL REFERENCES users(id),
        receiver_id UUID NOT NULL REFERENCES users(id),
        content TEXT NOT NULL,
        status message_status_enum NOT NULL DEFAULT 'delivered',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        seen_at TIMESTAMPTZ
    );`,
	`CREATE INDEX IF NOT EXISTS messages_participants_idx ON messages (sender_id, receiver_id, created_at);`,
}

// Migrate applies the schema idempotently.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	logger.Info("database migrations applied", "count", len(migrations))
	return nil
}
