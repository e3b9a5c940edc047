package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus enumerates pipeline stages for a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Lead is a prospective contact tracked by the sales team. Phone is the
// correlation key for inbound messages and is not required to be unique.
type Lead struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	Company      string
	Status       LeadStatus
	Notes        string
	AssignedToID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TeamMember is a sales rep who places calls and sends messages.
type TeamMember struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Role      string
	CreatedAt time.Time
}

// LeadStatusCount is one bucket of the leads-by-status aggregation.
type LeadStatusCount struct {
	Status LeadStatus
	Count  int64
}

// DashboardStats aggregates activity metrics for the dashboard.
type DashboardStats struct {
	TotalLeads          int64
	TotalCalls          int64
	TotalMessages       int64
	TotalTeamMembers    int64
	LeadsByStatus       []LeadStatusCount
	AvgCallDurationSecs int64
	CallsToday          int64
	MessagesToday       int64
}
