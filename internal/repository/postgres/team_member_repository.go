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

// TeamMemberRepository implements repository.TeamMemberRepository using PostgreSQL.
type TeamMemberRepository struct {
	db *sqlx.DB
}

// NewTeamMemberRepository constructs a new repository.
func NewTeamMemberRepository(db *sqlx.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

// Create inserts a new team member.
func (r *TeamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	q := `INSERT INTO team_members (id, name, email, phone, role, created_at)
		VALUES (:id, :name, :email, :phone, :role, :created_at)`

	params := map[string]any{
		"id":         member.ID,
		"name":       member.Name,
		"email":      member.Email,
		"phone":      member.Phone,
		"role":       member.Role,
		"created_at": member.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		return fmt.Errorf("team member repo: insert: %w", err)
	}

	return nil
}

// Get fetches a team member by id.
func (r *TeamMemberRepository) Get(ctx context.Context, id uuid.UUID) (*domain.TeamMember, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT id, name, email, phone, role, created_at
		FROM team_members WHERE id = $1`, id)

	var record teamMemberRecord
	if err := row.StructScan(&record); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("team member repo: get: %w", err)
	}

	member := record.toDomain()
	return &member, nil
}

// Delete removes a team member.
func (r *TeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("team member repo: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("team member repo: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns the most recently created team members.
func (r *TeamMemberRepository) List(ctx context.Context, limit int) ([]*domain.TeamMember, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT id, name, email, phone, role, created_at
		FROM team_members ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("team member repo: list: %w", err)
	}
	defer rows.Close()

	var results []*domain.TeamMember
	for rows.Next() {
		var record teamMemberRecord
		if err := rows.StructScan(&record); err != nil {
			return nil, fmt.Errorf("team member repo: scan: %w", err)
		}
		member := record.toDomain()
		results = append(results, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team member repo: rows err: %w", err)
	}

	return results, nil
}

type teamMemberRecord struct {
	ID        uuid.UUID      `db:"id"`
	Name      string         `db:"name"`
	Email     sql.NullString `db:"email"`
	Phone     string         `db:"phone"`
	Role      sql.NullString `db:"role"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

func (r teamMemberRecord) toDomain() domain.TeamMember {
	return domain.TeamMember{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email.String,
		Phone:     r.Phone,
		Role:      r.Role.String,
		CreatedAt: r.CreatedAt.Time,
	}
}
