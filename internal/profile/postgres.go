package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository reads member profiles from PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByID fetches a member by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return Member{}, fmt.Errorf("parse member id: %w", err)
	}
	row := r.db.QueryRow(ctx, `SELECT id, email, phone, display_name, created_at
        FROM members WHERE id = $1`, memberID)
	return scanMember(row)
}

// FindByEmail fetches a member by email, case-insensitively.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Member, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, phone, display_name, created_at
        FROM members WHERE lower(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanMember(row)
}

func scanMember(row pgx.Row) (Member, error) {
	var (
		m         Member
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &m.Email, &m.Phone, &m.DisplayName, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, err
	}
	m.ID = id.String()
	m.CreatedAt = createdAt.UTC()
	return m, nil
}
