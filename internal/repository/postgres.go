package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"
)

// PostgresRepository is the shared base embedded by every repository in this
// package. Connection lifecycle (open, ping, close) belongs to the database
// package and the app wiring, not here.
type PostgresRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresRepository(db *sql.DB, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// BeginTx starts a transaction with default isolation. Multi-statement
// writes, like the wholesale weak-topic replace, go through this.
func (r *PostgresRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}
