package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

const routeColumns = `
	id, user_id, origin, destination, route_data,
	avoid_tolls, avoid_highways, share_code, created_at
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL route repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new route and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, route *Route) error {
	data, err := json.Marshal(route.Data)
	if err != nil {
		return fmt.Errorf("marshaling route data: %w", err)
	}

	query := `
		INSERT INTO routes (
			user_id, origin, destination, route_data,
			avoid_tolls, avoid_highways, share_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		route.UserID,
		route.Origin,
		route.Destination,
		data,
		route.AvoidTolls,
		route.AvoidHighways,
		route.ShareCode,
		route.CreatedAt,
	).Scan(&route.ID)
}

// ListByUser retrieves all routes saved by a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// Recent retrieves the user's most recently saved routes.
func (r *PostgresRepository) Recent(ctx context.Context, userID int64, limit int) ([]*Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

// GetByShareCode retrieves a route by its public share code.
func (r *PostgresRepository) GetByShareCode(ctx context.Context, code string) (*Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE share_code = $1`

	route, err := r.scanRow(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

// ListAll retrieves every saved route, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

// CountByUser reports how many routes a user has saved.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM routes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Delete removes a route owned by the given user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, routeID int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1 AND user_id = $2`, routeID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresRepository) scanRow(row rowScanner) (*Route, error) {
	var route Route
	var data []byte
	err := row.Scan(
		&route.ID,
		&route.UserID,
		&route.Origin,
		&route.Destination,
		&data,
		&route.AvoidTolls,
		&route.AvoidHighways,
		&route.ShareCode,
		&route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &route.Data); err != nil {
			return nil, fmt.Errorf("unmarshaling route data: %w", err)
		}
	} else {
		route.Data = models.RouteData{}
	}
	return &route, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Route, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		route, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
