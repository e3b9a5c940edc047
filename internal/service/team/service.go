package team

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

// Service coordinates team member CRUD operations.
type Service struct {
	members repository.TeamMemberRepository
}

// NewService builds the team service.
func NewService(members repository.TeamMemberRepository) *Service {
	return &Service{members: members}
}

// CreateInput captures the fields for creating a team member.
type CreateInput struct {
	Name  string
	Email string
	Phone string
	Role  string
}

// Create validates and persists a new team member.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.TeamMember, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if input.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", apperrors.ErrValidation)
	}

	member := &domain.TeamMember{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Role:      input.Role,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("team service: create: %w", err)
	}

	return member, nil
}

// Get fetches a team member.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.TeamMember, error) {
	return s.members.Get(ctx, id)
}

// Delete removes a team member.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.members.Delete(ctx, id)
}

// List returns the most recently created team members.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.TeamMember, error) {
	return s.members.List(ctx, limit)
}
