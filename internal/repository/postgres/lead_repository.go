package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
)

// LeadRepository implements repository.LeadRepository using PostgreSQL.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs a new repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, first_name, last_name, phone, email, company, status, notes, assigned_to_id, created_at, updated_at`

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	q := `INSERT INTO leads (
		id, first_name, last_name, phone, email, company, status, notes, assigned_to_id, created_at, updated_at
	) VALUES (
		:id, :first_name, :last_name, :phone, :email, :company, :status, :notes, :assigned_to_id, :created_at, :updated_at
	)`

	params := map[string]any{
		"id":             lead.ID,
		"first_name":     lead.FirstName,
		"last_name":      lead.LastName,
		"phone":          lead.Phone,
		"email":          lead.Email,
		"company":        lead.Company,
		"status":         lead.Status,
		"notes":          lead.Notes,
		"assigned_to_id": lead.AssignedToID,
		"created_at":     lead.CreatedAt,
		"updated_at":     lead.UpdatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		return fmt.Errorf("lead repo: insert: %w", err)
	}

	return nil
}

// Get fetches a lead by id.
func (r *LeadRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	var record leadRecord
	if err := row.StructScan(&record); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lead repo: get: %w", err)
	}

	lead := record.toDomain()
	return &lead, nil
}

// Update overwrites mutable lead fields.
func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	q := `UPDATE leads SET
		first_name = :first_name,
		last_name = :last_name,
		phone = :phone,
		email = :email,
		company = :company,
		status = :status,
		notes = :notes,
		assigned_to_id = :assigned_to_id,
		updated_at = NOW()
	 WHERE id = :id`

	params := map[string]any{
		"id":             lead.ID,
		"first_name":     lead.FirstName,
		"last_name":      lead.LastName,
		"phone":          lead.Phone,
		"email":          lead.Email,
		"company":        lead.Company,
		"status":         lead.Status,
		"notes":          lead.Notes,
		"assigned_to_id": lead.AssignedToID,
	}

	res, err := r.db.NamedExecContext(ctx, q, params)
	if err != nil {
		return fmt.Errorf("lead repo: update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lead repo: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatus advances the lead's pipeline status.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("lead repo: update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lead repo: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a lead and its interactions.
func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE lead_id = $1`, id); err != nil {
			return fmt.Errorf("lead repo: delete interactions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("lead repo: delete: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("lead repo: rows affected: %w", err)
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// List returns the most recently created leads.
func (r *LeadRepository) List(ctx context.Context, limit int) ([]*domain.Lead, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("lead repo: list: %w", err)
	}
	defer rows.Close()

	var results []*domain.Lead
	for rows.Next() {
		var record leadRecord
		if err := rows.StructScan(&record); err != nil {
			return nil, fmt.Errorf("lead repo: scan: %w", err)
		}
		lead := record.toDomain()
		results = append(results, &lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lead repo: rows err: %w", err)
	}

	return results, nil
}

// FindByPhone returns the oldest lead matching the phone number. Phone is not
// unique; when several leads share a number the first one created wins.
func (r *LeadRepository) FindByPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone = $1 ORDER BY created_at ASC LIMIT 1`, phone)

	var record leadRecord
	if err := row.StructScan(&record); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lead repo: find by phone: %w", err)
	}

	lead := record.toDomain()
	return &lead, nil
}

type leadRecord struct {
	ID           uuid.UUID      `db:"id"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Phone        string         `db:"phone"`
	Email        sql.NullString `db:"email"`
	Company      sql.NullString `db:"company"`
	Status       string         `db:"status"`
	Notes        sql.NullString `db:"notes"`
	AssignedToID *uuid.UUID     `db:"assigned_to_id"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

func (r leadRecord) toDomain() domain.Lead {
	return domain.Lead{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Email:        r.Email.String,
		Company:      r.Company.String,
		Status:       domain.LeadStatus(r.Status),
		Notes:        r.Notes.String,
		AssignedToID: r.AssignedToID,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}
