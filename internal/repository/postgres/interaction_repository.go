package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
)

// InteractionRepository implements repository.InteractionRepository using
// PostgreSQL. The unique index on external_id is the correlation mapping for
// provider callbacks.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository constructs a new repository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

const interactionColumns = `id, kind, direction, lead_id, team_member_id, external_id, status, duration_seconds, recording_url, body, created_at, updated_at`

// Create inserts a new interaction record.
func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	q := `INSERT INTO interactions (
		id, kind, direction, lead_id, team_member_id, external_id, status, duration_seconds, recording_url, body, created_at, updated_at
	) VALUES (
		:id, :kind, :direction, :lead_id, :team_member_id, :external_id, :status, :duration_seconds, :recording_url, :body, :created_at, :updated_at
	)`

	params := map[string]any{
		"id":               interaction.ID,
		"kind":             interaction.Kind,
		"direction":        interaction.Direction,
		"lead_id":          interaction.LeadID,
		"team_member_id":   interaction.TeamMemberID,
		"external_id":      interaction.ExternalID,
		"status":           interaction.Status,
		"duration_seconds": interaction.DurationSeconds,
		"recording_url":    interaction.RecordingURL,
		"body":             interaction.Body,
		"created_at":       interaction.CreatedAt,
		"updated_at":       interaction.UpdatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("interaction repo: insert: %w", err)
	}

	return nil
}

// Get fetches an interaction by id.
func (r *InteractionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Interaction, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE id = $1`, id)
	return scanInteraction(row)
}

// GetByExternalID resolves an interaction by its provider identifier.
func (r *InteractionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Interaction, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE external_id = $1`, externalID)
	return scanInteraction(row)
}

// AttachExternalID sets the provider identifier on a record that has none.
// An identifier, once set, never changes; the WHERE clause refuses to
// overwrite one, and the unique index refuses to reuse one.
func (r *InteractionRepository) AttachExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE interactions SET external_id = $1, updated_at = NOW()
		WHERE id = $2 AND external_id IS NULL`, externalID, id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("interaction repo: attach external id: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("interaction repo: rows affected: %w", err)
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// ApplyStatus overwrites the status in a single atomic row update. Duration
// and recording URL are only touched when provided, so a bare status
// re-delivery leaves them intact.
func (r *InteractionRepository) ApplyStatus(ctx context.Context, id uuid.UUID, status domain.InteractionStatus, durationSeconds *int, recordingURL *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE interactions SET
		status = $1,
		duration_seconds = COALESCE($2, duration_seconds),
		recording_url = COALESCE($3, recording_url),
		updated_at = NOW()
	WHERE id = $4`, status, durationSeconds, recordingURL, id)
	if err != nil {
		return fmt.Errorf("interaction repo: apply status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("interaction repo: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByLead returns the most recent interactions for a lead.
func (r *InteractionRepository) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]*domain.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT `+interactionColumns+` FROM interactions
		WHERE lead_id = $1 ORDER BY created_at DESC LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("interaction repo: list by lead: %w", err)
	}
	defer rows.Close()

	var results []*domain.Interaction
	for rows.Next() {
		var record interactionRecord
		if err := rows.StructScan(&record); err != nil {
			return nil, fmt.Errorf("interaction repo: scan: %w", err)
		}
		interaction := record.toDomain()
		results = append(results, &interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interaction repo: rows err: %w", err)
	}

	return results, nil
}

func scanInteraction(row *sqlx.Row) (*domain.Interaction, error) {
	var record interactionRecord
	if err := row.StructScan(&record); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("interaction repo: scan: %w", err)
	}
	interaction := record.toDomain()
	return &interaction, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type interactionRecord struct {
	ID              uuid.UUID      `db:"id"`
	Kind            string         `db:"kind"`
	Direction       string         `db:"direction"`
	LeadID          uuid.UUID      `db:"lead_id"`
	TeamMemberID    *uuid.UUID     `db:"team_member_id"`
	ExternalID      sql.NullString `db:"external_id"`
	Status          string         `db:"status"`
	DurationSeconds sql.NullInt64  `db:"duration_seconds"`
	RecordingURL    sql.NullString `db:"recording_url"`
	Body            sql.NullString `db:"body"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

func (r interactionRecord) toDomain() domain.Interaction {
	interaction := domain.Interaction{
		ID:           r.ID,
		Kind:         domain.InteractionKind(r.Kind),
		Direction:    domain.Direction(r.Direction),
		LeadID:       r.LeadID,
		TeamMemberID: r.TeamMemberID,
		Status:       domain.InteractionStatus(r.Status),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
	if r.ExternalID.Valid {
		v := r.ExternalID.String
		interaction.ExternalID = &v
	}
	if r.DurationSeconds.Valid {
		v := int(r.DurationSeconds.Int64)
		interaction.DurationSeconds = &v
	}
	if r.RecordingURL.Valid {
		v := r.RecordingURL.String
		interaction.RecordingURL = &v
	}
	if r.Body.Valid {
		v := r.Body.String
		interaction.Body = &v
	}
	return interaction
}
