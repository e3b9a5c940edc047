package lead

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

type memLeadRepo struct {
	repository.LeadRepository
	leads map[uuid.UUID]*domain.Lead
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{leads: make(map[uuid.UUID]*domain.Lead)}
}

func (m *memLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	clone := *lead
	m.leads[lead.ID] = &clone
	return nil
}

func (m *memLeadRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, ok := m.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *lead
	return &clone, nil
}

func (m *memLeadRepo) Update(ctx context.Context, lead *domain.Lead) error {
	if _, ok := m.leads[lead.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *lead
	m.leads[lead.ID] = &clone
	return nil
}

func (m *memLeadRepo) List(ctx context.Context, limit int) ([]*domain.Lead, error) {
	results := make([]*domain.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		clone := *lead
		results = append(results, &clone)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

type memInteractionRepo struct {
	repository.InteractionRepository
	byLead map[uuid.UUID][]*domain.Interaction
}

func (m *memInteractionRepo) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]*domain.Interaction, error) {
	records := m.byLead[leadID]
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func TestCreateDefaultsStatus(t *testing.T) {
	repo := newMemLeadRepo()
	svc := NewService(repo, &memInteractionRepo{})

	lead, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+15550001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != domain.LeadStatusNew {
		t.Errorf("expected default status new, got %s", lead.Status)
	}
	if _, ok := repo.leads[lead.ID]; !ok {
		t.Errorf("expected lead persisted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemLeadRepo(), &memInteractionRepo{})

	cases := []CreateInput{
		{LastName: "Lovelace", Phone: "+15550001"},
		{FirstName: "Ada", Phone: "+15550001"},
		{FirstName: "Ada", LastName: "Lovelace"},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("expected validation error for input %+v, got %v", tc, err)
		}
	}
}

func TestGetIncludesRecentInteractions(t *testing.T) {
	repo := newMemLeadRepo()
	leadID := uuid.New()
	repo.leads[leadID] = &domain.Lead{ID: leadID, FirstName: "Ada", Phone: "+15550001"}

	interactions := &memInteractionRepo{byLead: map[uuid.UUID][]*domain.Interaction{
		leadID: {
			{ID: uuid.New(), Kind: domain.KindCall, LeadID: leadID},
			{ID: uuid.New(), Kind: domain.KindMessage, LeadID: leadID},
		},
	}}

	svc := NewService(repo, interactions)
	activity, err := svc.Get(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activity.Lead.ID != leadID {
		t.Errorf("unexpected lead %s", activity.Lead.ID)
	}
	if len(activity.Interactions) != 2 {
		t.Errorf("expected 2 interactions, got %d", len(activity.Interactions))
	}
}

func TestListIncludesRecentInteractions(t *testing.T) {
	repo := newMemLeadRepo()
	quietID := uuid.New()
	busyID := uuid.New()
	repo.leads[quietID] = &domain.Lead{ID: quietID, FirstName: "Ada", Phone: "+15550001"}
	repo.leads[busyID] = &domain.Lead{ID: busyID, FirstName: "Grace", Phone: "+15550002"}

	busyInteractions := make([]*domain.Interaction, 0, 8)
	for i := 0; i < 8; i++ {
		busyInteractions = append(busyInteractions, &domain.Interaction{ID: uuid.New(), Kind: domain.KindCall, LeadID: busyID})
	}
	interactions := &memInteractionRepo{byLead: map[uuid.UUID][]*domain.Interaction{
		busyID: busyInteractions,
	}}

	svc := NewService(repo, interactions)
	activities, err := svc.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(activities))
	}

	for _, activity := range activities {
		switch activity.Lead.ID {
		case busyID:
			// The list view carries at most the five most recent interactions.
			if len(activity.Interactions) != 5 {
				t.Errorf("expected 5 interactions for busy lead, got %d", len(activity.Interactions))
			}
		case quietID:
			if len(activity.Interactions) != 0 {
				t.Errorf("expected no interactions for quiet lead, got %d", len(activity.Interactions))
			}
		default:
			t.Errorf("unexpected lead %s in list", activity.Lead.ID)
		}
	}
}

func TestUpdatePreservesStatusWhenOmitted(t *testing.T) {
	repo := newMemLeadRepo()
	leadID := uuid.New()
	repo.leads[leadID] = &domain.Lead{
		ID: leadID, FirstName: "Ada", LastName: "Lovelace",
		Phone: "+15550001", Status: domain.LeadStatusQualified,
	}

	svc := NewService(repo, &memInteractionRepo{})
	updated, err := svc.Update(context.Background(), leadID, UpdateInput{
		FirstName: "Ada",
		LastName:  "King",
		Phone:     "+15550002",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.LeadStatusQualified {
		t.Errorf("expected status preserved when omitted, got %s", updated.Status)
	}
	if updated.LastName != "King" || updated.Phone != "+15550002" {
		t.Errorf("expected fields updated, got %+v", updated)
	}
}

func TestUpdateUnknownLead(t *testing.T) {
	svc := NewService(newMemLeadRepo(), &memInteractionRepo{})

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Phone: "+15550001"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
