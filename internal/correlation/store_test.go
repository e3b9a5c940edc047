package correlation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

type fakeInteractionRepo struct {
	repository.InteractionRepository
	byExternal map[string]*domain.Interaction
	lookups    int
}

func (f *fakeInteractionRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Interaction, error) {
	f.lookups++
	interaction, ok := f.byExternal[externalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return interaction, nil
}

func TestResolveWithoutCache(t *testing.T) {
	id := uuid.New()
	repo := &fakeInteractionRepo{byExternal: map[string]*domain.Interaction{
		"CA123": {ID: id, Kind: domain.KindCall, Status: domain.StatusQueued},
	}}
	store := NewStore(repo, nil, time.Hour)

	interaction, err := store.Resolve(context.Background(), "CA123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interaction.ID != id {
		t.Errorf("resolved wrong interaction: %s", interaction.ID)
	}
	if repo.lookups != 1 {
		t.Errorf("expected one repository lookup, got %d", repo.lookups)
	}
}

func TestResolveUnknownExternalID(t *testing.T) {
	store := NewStore(&fakeInteractionRepo{byExternal: map[string]*domain.Interaction{}}, nil, time.Hour)

	_, err := store.Resolve(context.Background(), "CA404")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestResolveEmptyExternalID(t *testing.T) {
	store := NewStore(&fakeInteractionRepo{}, nil, time.Hour)

	_, err := store.Resolve(context.Background(), "")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBindWithoutCacheIsNoop(t *testing.T) {
	store := NewStore(&fakeInteractionRepo{}, nil, time.Hour)
	// Must not panic with a nil cache.
	store.Bind(context.Background(), "CA123", uuid.New())
}
