package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

// Service coordinates lead CRUD operations.
type Service struct {
	leads        repository.LeadRepository
	interactions repository.InteractionRepository
}

// NewService builds the lead service.
func NewService(leads repository.LeadRepository, interactions repository.InteractionRepository) *Service {
	return &Service{leads: leads, interactions: interactions}
}

// CreateInput captures the fields for creating a lead.
type CreateInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	Company      string
	Status       domain.LeadStatus
	Notes        string
	AssignedToID *uuid.UUID
}

// UpdateInput captures the fields for updating a lead.
type UpdateInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	Company      string
	Status       domain.LeadStatus
	Notes        string
	AssignedToID *uuid.UUID
}

// Activity is a lead with its most recent interactions.
type Activity struct {
	Lead         *domain.Lead
	Interactions []*domain.Interaction
}

// Create validates and persists a new lead.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Lead, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", apperrors.ErrValidation)
	}
	if input.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", apperrors.ErrValidation)
	}

	status := input.Status
	if status == "" {
		status = domain.LeadStatusNew
	}

	now := time.Now().UTC()
	lead := &domain.Lead{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Email:        input.Email,
		Company:      input.Company,
		Status:       status,
		Notes:        input.Notes,
		AssignedToID: input.AssignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("lead service: create: %w", err)
	}

	return lead, nil
}

// Get returns a lead with its recent interactions.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Activity, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	interactions, err := s.interactions.ListByLead(ctx, id, 10)
	if err != nil {
		return nil, fmt.Errorf("lead service: list interactions: %w", err)
	}

	return &Activity{Lead: lead, Interactions: interactions}, nil
}

// Update overwrites the lead's mutable fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Lead, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", apperrors.ErrValidation)
	}

	lead.FirstName = input.FirstName
	lead.LastName = input.LastName
	lead.Phone = input.Phone
	lead.Email = input.Email
	lead.Company = input.Company
	lead.Notes = input.Notes
	lead.AssignedToID = input.AssignedToID
	if input.Status != "" {
		lead.Status = input.Status
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("lead service: update: %w", err)
	}

	return lead, nil
}

// Delete removes a lead and its interaction history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.leads.Delete(ctx, id)
}

// List returns the most recently created leads, each with its five most
// recent interactions.
func (s *Service) List(ctx context.Context, limit int) ([]*Activity, error) {
	leads, err := s.leads.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*Activity, 0, len(leads))
	for _, lead := range leads {
		interactions, err := s.interactions.ListByLead(ctx, lead.ID, 5)
		if err != nil {
			return nil, fmt.Errorf("lead service: list interactions for %s: %w", lead.ID, err)
		}
		results = append(results, &Activity{Lead: lead, Interactions: interactions})
	}

	return results, nil
}
