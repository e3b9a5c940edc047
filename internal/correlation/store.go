package correlation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

// Store resolves provider identifiers to local interaction records. The
// mapping itself lives in Postgres (unique external_id column); Redis fronts
// it as a read-through cache so callback bursts do not hammer the indexed
// lookup. A cache failure degrades to a direct database read, never to a
// request failure.
type Store struct {
	interactions repository.InteractionRepository
	cache        *redis.Client
	ttl          time.Duration
}

// NewStore constructs a correlation store. cache may be nil, in which case
// every resolve goes straight to the repository.
func NewStore(interactions repository.InteractionRepository, cache *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{interactions: interactions, cache: cache, ttl: ttl}
}

// Resolve looks up the interaction the provider identifier belongs to.
// Returns ErrNotFound when no interaction carries the identifier.
func (s *Store) Resolve(ctx context.Context, externalID string) (*domain.Interaction, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", apperrors.ErrValidation)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.key(externalID)).Result(); err == nil {
			if id, parseErr := uuid.Parse(cached); parseErr == nil {
				interaction, getErr := s.interactions.Get(ctx, id)
				if getErr == nil {
					return interaction, nil
				}
				// Stale cache entry; fall through to the indexed lookup.
			}
		}
	}

	interaction, err := s.interactions.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	s.prime(ctx, externalID, interaction.ID)
	return interaction, nil
}

// Bind primes the cache after an external identifier has been attached to a
// record. Best effort; the durable mapping is the database column.
func (s *Store) Bind(ctx context.Context, externalID string, interactionID uuid.UUID) {
	s.prime(ctx, externalID, interactionID)
}

func (s *Store) prime(ctx context.Context, externalID string, interactionID uuid.UUID) {
	if s.cache == nil || externalID == "" {
		return
	}
	_ = s.cache.Set(ctx, s.key(externalID), interactionID.String(), s.ttl).Err()
}

func (s *Store) key(externalID string) string {
	return fmt.Sprintf("outreach:correlation:%s", externalID)
}
