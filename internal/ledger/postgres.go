package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway persists wallets and transaction records in PostgreSQL.
// Conditional deltas are applied in a single guarded UPDATE so concurrent
// requests serialize at the row instead of racing a read-then-write.
type PostgresGateway struct {
	db   *pgxpool.Pool
	kind string
}

// NewPostgres constructs a gateway over the central wallet namespace.
func NewPostgres(db *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{db: db, kind: KindCentral}
}

// NewPostgresKind constructs a gateway over a specific wallet namespace.
func NewPostgresKind(db *pgxpool.Pool, kind string) *PostgresGateway {
	return &PostgresGateway{db: db, kind: kind}
}

// EnsureWallet guarantees a zero-balance wallet row exists for the owner.
func (g *PostgresGateway) EnsureWallet(ctx context.Context, ownerID string) error {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return fmt.Errorf("parse owner id: %w", err)
	}
	_, err = g.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, kind, balance)
        VALUES ($1, $2, $3, 0) ON CONFLICT (owner_id, kind) DO NOTHING`, uuid.New(), owner, g.kind)
	return err
}

// Balance returns the owner's current balance.
func (g *PostgresGateway) Balance(ctx context.Context, ownerID string) (int64, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return 0, fmt.Errorf("parse owner id: %w", err)
	}
	var balance int64
	err = g.db.QueryRow(ctx, `SELECT balance FROM wallets WHERE owner_id = $1 AND kind = $2`,
		owner, g.kind).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrWalletNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ApplyDelta adjusts the balance in one guarded UPDATE. The statement refuses
// both overdrafts and, when an expectation is supplied, stale writes.
func (g *PostgresGateway) ApplyDelta(ctx context.Context, ownerID string, delta int64, expectedPrior int64) (int64, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return 0, fmt.Errorf("parse owner id: %w", err)
	}

	var (
		newBalance int64
		row        pgx.Row
	)
	if expectedPrior == AnyBalance {
		row = g.db.QueryRow(ctx, `UPDATE wallets SET balance = balance + $3, updated_at = now()
            WHERE owner_id = $1 AND kind = $2 AND balance + $3 >= 0
            RETURNING balance`, owner, g.kind, delta)
	} else {
		row = g.db.QueryRow(ctx, `UPDATE wallets SET balance = balance + $3, updated_at = now()
            WHERE owner_id = $1 AND kind = $2 AND balance = $4 AND balance + $3 >= 0
            RETURNING balance`, owner, g.kind, delta, expectedPrior)
	}

	if err := row.Scan(&newBalance); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
		// The guard rejected the update; disambiguate why.
		current, berr := g.Balance(ctx, ownerID)
		if berr != nil {
			return 0, berr
		}
		if expectedPrior != AnyBalance && current != expectedPrior {
			return 0, ErrConcurrentModification
		}
		return 0, ErrInsufficientFunds
	}
	return newBalance, nil
}

// AppendTransaction inserts an immutable audit record.
func (g *PostgresGateway) AppendTransaction(ctx context.Context, rec Record) error {
	owner, err := uuid.Parse(rec.OwnerID)
	if err != nil {
		return fmt.Errorf("parse owner id: %w", err)
	}

	var metadata []byte
	if rec.Metadata != nil {
		metadata, err = json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	_, err = g.db.Exec(ctx, `INSERT INTO transactions
        (id, owner_id, kind, amount, description, status, reference, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), owner, rec.Kind, rec.Amount, rec.Description, rec.Status, rec.Reference, metadata)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}
