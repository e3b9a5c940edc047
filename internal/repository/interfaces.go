package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

var (
	// ErrNotFound indicates the entity was not located.
	ErrNotFound = apperrors.ErrNotFound
	// ErrConflict indicates a unique constraint violation.
	ErrConflict = apperrors.ErrConflict
)

// LeadRepository manages lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]*domain.Lead, error)
	// FindByPhone returns the oldest lead with the given phone number.
	// Phone numbers are not unique across leads; callers get the first match.
	FindByPhone(ctx context.Context, phone string) (*domain.Lead, error)
}

// TeamMemberRepository manages team member persistence.
type TeamMemberRepository interface {
	Create(ctx context.Context, member *domain.TeamMember) error
	Get(ctx context.Context, id uuid.UUID) (*domain.TeamMember, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]*domain.TeamMember, error)
}

// InteractionRepository manages interaction records and the external-id
// correlation lookup.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Interaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Interaction, error)
	// AttachExternalID sets the provider identifier on a record that does not
	// have one yet. Returns ErrConflict if the identifier is already in use.
	AttachExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	// ApplyStatus overwrites the status and, when non-nil, the duration and
	// recording URL in a single row update. Last write wins.
	ApplyStatus(ctx context.Context, id uuid.UUID, status domain.InteractionStatus, durationSeconds *int, recordingURL *string) error
	ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]*domain.Interaction, error)
}

// StatsRepository serves the dashboard aggregation queries.
type StatsRepository interface {
	Overview(ctx context.Context) (*domain.DashboardStats, error)
}

// InteractionEventLog is the append-only transition audit trail.
type InteractionEventLog interface {
	Append(ctx context.Context, event domain.InteractionEvent) error
	ListByInteraction(ctx context.Context, interactionID uuid.UUID, limit int) ([]domain.InteractionEvent, error)
}
