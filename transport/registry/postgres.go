package registry

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Postgres keeps the participant set in a table so it can be inspected
// from outside the relay process. Rows are scoped by relay name.
type Postgres struct {
	db    *sql.DB
	relay string
}

// NewPostgres connects, pings and creates the schema if needed.
func NewPostgres(ctx context.Context, connectionString, relayName string) (*Postgres, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Postgres{db: db, relay: relayName}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS relay_participants (
		relay TEXT NOT NULL,
		connection_id TEXT NOT NULL,
		connected_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (relay, connection_id)
	);
	`
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *Postgres) Add(ctx context.Context, id string) error {
	query := `
	INSERT INTO relay_participants (relay, connection_id)
	VALUES ($1, $2)
	ON CONFLICT (relay, connection_id) DO NOTHING
	`
	if _, err := p.db.ExecContext(ctx, query, p.relay, id); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM relay_participants WHERE relay = $1 AND connection_id = $2`
	if _, err := p.db.ExecContext(ctx, query, p.relay, id); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

func (p *Postgres) Members(ctx context.Context) ([]string, error) {
	query := `SELECT connection_id FROM relay_participants WHERE relay = $1 ORDER BY connection_id COLLATE "C"`
	rows, err := p.db.QueryContext(ctx, query, p.relay)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Reset drops this relay's rows; called at startup so rows left by a
// crashed run never take part in an election.
func (p *Postgres) Reset(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM relay_participants WHERE relay = $1`, p.relay); err != nil {
		return fmt.Errorf("failed to reset participants: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
