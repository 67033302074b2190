package postgres

import (
	"context"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
)

// PostgresBaseRepo carries the registry connection and the transaction
// entry point shared by the concrete repositories. Queries go through
// sqlx on the embedded connection; cross-repository deletes share one
// transaction started here.
type PostgresBaseRepo struct {
	db database.DB
}

func (r *PostgresBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}
