package incident

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const incidentColumns = `
	id, type, latitude, longitude, comment, reported_by,
	active, confirmed, refuted, created_at, updated_at
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL incident repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new incident and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, incident *Incident) error {
	query := `
		INSERT INTO incidents (
			type, latitude, longitude, comment, reported_by,
			active, confirmed, refuted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		incident.Type,
		incident.Latitude,
		incident.Longitude,
		incident.Comment,
		incident.ReportedBy,
		incident.Active,
		incident.Confirmed,
		incident.Refuted,
		incident.CreatedAt,
	).Scan(&incident.ID)
}

// GetByID retrieves an incident by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	var incident Incident
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&incident)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// ListActive retrieves all active incidents, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE active = TRUE
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

// ListAll retrieves every incident including inactive ones, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

// ListNearby retrieves active incidents within radiusMeters of the given
// coordinates, ordered nearest first. Distance is computed with the
// spherical law of cosines, which matches haversine to well below the
// precision a relevance radius needs.
func (r *PostgresRepository) ListNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]*Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE active = TRUE
		  AND 6371000 * acos(least(1.0,
			cos(radians($1)) * cos(radians(latitude::float8)) *
			cos(radians(longitude::float8) - radians($2)) +
			sin(radians($1)) * sin(radians(latitude::float8))
		  )) <= $3
		ORDER BY 6371000 * acos(least(1.0,
			cos(radians($1)) * cos(radians(latitude::float8)) *
			cos(radians(longitude::float8) - radians($2)) +
			sin(radians($1)) * sin(radians(latitude::float8))
		  ))
	`
	return r.list(ctx, query, lat, lon, radiusMeters)
}

// AddVerification records a reaction and bumps the matching counter in a
// single transaction. The unique constraint on (incident_id, user_id) makes
// the duplicate check race-free under concurrent submissions.
func (r *PostgresRepository) AddVerification(ctx context.Context, incidentID, userID int64, confirmed bool) (*Verification, *Incident, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	now := time.Now()

	verification := Verification{
		IncidentID:  incidentID,
		UserID:      userID,
		IsConfirmed: confirmed,
		CreatedAt:   now,
	}

	insertQuery := `
		INSERT INTO incident_verifications (incident_id, user_id, is_confirmed, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (incident_id, user_id) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRow(ctx, insertQuery, incidentID, userID, confirmed, now).Scan(&verification.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrDuplicateVerification
		}
		return nil, nil, err
	}

	updateQuery := `
		UPDATE incidents SET
			confirmed = confirmed + CASE WHEN $2 THEN 1 ELSE 0 END,
			refuted = refuted + CASE WHEN $2 THEN 0 ELSE 1 END,
			updated_at = $3
		WHERE id = $1
		RETURNING ` + incidentColumns

	var incident Incident
	err = tx.QueryRow(ctx, updateQuery, incidentID, confirmed, now).Scan(scanTargets(&incident)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrIncidentNotFound
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return &verification, &incident, nil
}

// SetStatus updates the active flag and returns the refreshed incident.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, active bool) (*Incident, error) {
	query := `
		UPDATE incidents SET active = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + incidentColumns

	var incident Incident
	err := r.pool.QueryRow(ctx, query, id, active, time.Now()).Scan(scanTargets(&incident)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// Update applies an admin edit to an existing incident.
func (r *PostgresRepository) Update(ctx context.Context, incident *Incident) error {
	query := `
		UPDATE incidents SET
			type = $2,
			comment = $3,
			active = $4,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		incident.ID,
		incident.Type,
		incident.Comment,
		incident.Active,
		incident.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}
	return nil
}

// Delete removes an incident and its verifications.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM incident_verifications WHERE incident_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}

	return tx.Commit(ctx)
}

// Stats aggregates incident and verification counts.
func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT type, COUNT(*), COUNT(*) FILTER (WHERE active)
		FROM incidents
		GROUP BY type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var incidentType string
		var total, active int
		if err := rows.Scan(&incidentType, &total, &active); err != nil {
			return nil, err
		}
		stats.ByType[incidentType] = total
		stats.Total += total
		stats.Active += active
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM incident_verifications`).Scan(&stats.Verifications); err != nil {
		return nil, err
	}

	return stats, nil
}

// StatsByUser aggregates reporting counts for a single user.
func (r *PostgresRepository) StatsByUser(ctx context.Context, userID int64) (*UserStats, error) {
	stats := &UserStats{ByType: make(map[string]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT type, COUNT(*)
		FROM incidents
		WHERE reported_by = $1
		GROUP BY type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var incidentType string
		var count int
		if err := rows.Scan(&incidentType, &count); err != nil {
			return nil, err
		}
		stats.ByType[incidentType] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func scanTargets(i *Incident) []interface{} {
	return []interface{}{
		&i.ID,
		&i.Type,
		&i.Latitude,
		&i.Longitude,
		&i.Comment,
		&i.ReportedBy,
		&i.Active,
		&i.Confirmed,
		&i.Refuted,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Incident, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*Incident
	for rows.Next() {
		var incident Incident
		if err := rows.Scan(scanTargets(&incident)...); err != nil {
			return nil, err
		}
		incidents = append(incidents, &incident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incidents, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
