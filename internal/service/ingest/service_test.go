package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/correlation"
	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
	"github.com/acme/lead-outreach/pkg/logger"
)

type memLeadRepo struct {
	repository.LeadRepository
	mu    sync.Mutex
	leads map[uuid.UUID]*domain.Lead
}

func (m *memLeadRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *lead
	return &clone, nil
}

func (m *memLeadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Status = status
	return nil
}

func (m *memLeadRepo) FindByPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *domain.Lead
	for _, lead := range m.leads {
		if lead.Phone != phone {
			continue
		}
		if oldest == nil || lead.CreatedAt.Before(oldest.CreatedAt) {
			oldest = lead
		}
	}
	if oldest == nil {
		return nil, repository.ErrNotFound
	}
	clone := *oldest
	return &clone, nil
}

func (m *memLeadRepo) status(t *testing.T, id uuid.UUID) domain.LeadStatus {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		t.Fatalf("lead %s not found", id)
	}
	return lead.Status
}

type memInteractionRepo struct {
	repository.InteractionRepository
	mu      sync.Mutex
	records map[uuid.UUID]*domain.Interaction
}

func newMemInteractionRepo() *memInteractionRepo {
	return &memInteractionRepo{records: make(map[uuid.UUID]*domain.Interaction)}
}

func (m *memInteractionRepo) Create(ctx context.Context, interaction *domain.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if interaction.ExternalID != nil {
		for _, existing := range m.records {
			if existing.ExternalID != nil && *existing.ExternalID == *interaction.ExternalID {
				return repository.ErrConflict
			}
		}
	}
	clone := *interaction
	m.records[interaction.ID] = &clone
	return nil
}

func (m *memInteractionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *memInteractionRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ExternalID != nil && *record.ExternalID == externalID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memInteractionRepo) ApplyStatus(ctx context.Context, id uuid.UUID, status domain.InteractionStatus, durationSeconds *int, recordingURL *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	record.Status = status
	if durationSeconds != nil {
		v := *durationSeconds
		record.DurationSeconds = &v
	}
	if recordingURL != nil {
		v := *recordingURL
		record.RecordingURL = &v
	}
	return nil
}

func (m *memInteractionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memInteractionRepo) get(t *testing.T, id uuid.UUID) *domain.Interaction {
	t.Helper()
	record, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("interaction %s not found", id)
	}
	return record
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func newTestService(interactions *memInteractionRepo, leads *memLeadRepo) *Service {
	correlations := correlation.NewStore(interactions, nil, 0)
	return NewService(correlations, interactions, leads, nil, nil, testLogger())
}

func seedCall(t *testing.T, interactions *memInteractionRepo, leadID uuid.UUID, externalID string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	interaction := &domain.Interaction{
		ID:         uuid.New(),
		Kind:       domain.KindCall,
		Direction:  domain.DirectionOutbound,
		LeadID:     leadID,
		ExternalID: &externalID,
		Status:     domain.StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := interactions.Create(context.Background(), interaction); err != nil {
		t.Fatalf("seed interaction: %v", err)
	}
	return interaction.ID
}

func intPtr(v int) *int { return &v }

func TestIngestStatusAppliesAndAdvancesLead(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001", Status: domain.LeadStatusNew},
	}}
	interactions := newMemInteractionRepo()
	id := seedCall(t, interactions, leadID, "CA123")

	svc := newTestService(interactions, leads)

	err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID:      "CA123",
		Status:          domain.StatusCompleted,
		DurationSeconds: intPtr(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := interactions.get(t, id)
	if record.Status != domain.StatusCompleted {
		t.Errorf("expected status completed, got %s", record.Status)
	}
	if record.DurationSeconds == nil || *record.DurationSeconds != 42 {
		t.Errorf("expected duration 42, got %v", record.DurationSeconds)
	}
	if got := leads.status(t, leadID); got != domain.LeadStatusContacted {
		t.Errorf("expected lead contacted after completed call, got %s", got)
	}
}

func TestIngestStatusFailedDoesNotAdvanceLead(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001", Status: domain.LeadStatusNew},
	}}
	interactions := newMemInteractionRepo()
	id := seedCall(t, interactions, leadID, "CA456")

	svc := newTestService(interactions, leads)

	if err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID: "CA456",
		Status:     domain.StatusFailed,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record := interactions.get(t, id); record.Status != domain.StatusFailed {
		t.Errorf("expected status failed, got %s", record.Status)
	}
	if got := leads.status(t, leadID); got != domain.LeadStatusNew {
		t.Errorf("lead status must not advance on failed call, got %s", got)
	}
}

func TestIngestStatusUnknownExternalID(t *testing.T) {
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{}}
	interactions := newMemInteractionRepo()
	svc := newTestService(interactions, leads)

	err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID: "CA999",
		Status:     domain.StatusCompleted,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if interactions.count() != 0 {
		t.Fatalf("unknown external id must not spawn records")
	}
}

func TestIngestStatusRedeliveryIsIdempotent(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001", Status: domain.LeadStatusNew},
	}}
	interactions := newMemInteractionRepo()
	id := seedCall(t, interactions, leadID, "CA123")

	svc := newTestService(interactions, leads)

	update := domain.StatusUpdate{
		ExternalID:      "CA123",
		Status:          domain.StatusCompleted,
		DurationSeconds: intPtr(42),
	}
	for i := 0; i < 3; i++ {
		if err := svc.IngestStatus(context.Background(), update); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i+1, err)
		}
	}

	record := interactions.get(t, id)
	if record.Status != domain.StatusCompleted || *record.DurationSeconds != 42 {
		t.Errorf("re-delivery changed the record: status=%s duration=%v", record.Status, record.DurationSeconds)
	}
	if interactions.count() != 1 {
		t.Errorf("re-delivery must not create records, got %d", interactions.count())
	}
}

func TestIngestStatusPreservesFieldsAbsentFromUpdate(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001"},
	}}
	interactions := newMemInteractionRepo()
	id := seedCall(t, interactions, leadID, "CA123")

	svc := newTestService(interactions, leads)

	if err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID:      "CA123",
		Status:          domain.StatusCompleted,
		DurationSeconds: intPtr(42),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A later callback without a duration must not clear the stored one.
	if err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID: "CA123",
		Status:     domain.StatusCompleted,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := interactions.get(t, id)
	if record.DurationSeconds == nil || *record.DurationSeconds != 42 {
		t.Errorf("expected duration preserved across sparse update, got %v", record.DurationSeconds)
	}
}

func TestIngestStatusDropsCallFieldsForMessages(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001"},
	}}
	interactions := newMemInteractionRepo()

	externalID := "SM123"
	body := "hello"
	now := time.Now().UTC()
	message := &domain.Interaction{
		ID:         uuid.New(),
		Kind:       domain.KindMessage,
		Direction:  domain.DirectionOutbound,
		LeadID:     leadID,
		ExternalID: &externalID,
		Status:     domain.StatusQueued,
		Body:       &body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := interactions.Create(context.Background(), message); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	svc := newTestService(interactions, leads)

	recording := "https://api.example.com/recordings/RE1"
	if err := svc.IngestStatus(context.Background(), domain.StatusUpdate{
		ExternalID:      "SM123",
		Status:          domain.StatusDelivered,
		DurationSeconds: intPtr(10),
		RecordingURL:    &recording,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := interactions.get(t, message.ID)
	if record.Status != domain.StatusDelivered {
		t.Errorf("expected status delivered, got %s", record.Status)
	}
	if record.DurationSeconds != nil || record.RecordingURL != nil {
		t.Errorf("call-only fields must not land on a message record")
	}
}

func TestIngestStatusMissingStatus(t *testing.T) {
	svc := newTestService(newMemInteractionRepo(), &memLeadRepo{})
	err := svc.IngestStatus(context.Background(), domain.StatusUpdate{ExternalID: "CA123"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestInboundKnownLead(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001", CreatedAt: time.Now().UTC()},
	}}
	interactions := newMemInteractionRepo()
	svc := newTestService(interactions, leads)

	err := svc.IngestInbound(context.Background(), InboundMessage{
		ExternalID: "SM777",
		From:       "+15550001",
		Body:       "call me back",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := interactions.GetByExternalID(context.Background(), "SM777")
	if err != nil {
		t.Fatalf("expected inbound interaction recorded: %v", err)
	}
	if record.Kind != domain.KindMessage || record.Direction != domain.DirectionInbound {
		t.Errorf("unexpected kind/direction: %s/%s", record.Kind, record.Direction)
	}
	if record.Status != domain.StatusReceived {
		t.Errorf("expected status received, got %s", record.Status)
	}
	if record.LeadID != leadID {
		t.Errorf("expected interaction linked to lead %s, got %s", leadID, record.LeadID)
	}
	if record.Body == nil || *record.Body != "call me back" {
		t.Errorf("expected body preserved, got %v", record.Body)
	}
}

func TestIngestInboundUnknownSenderDropped(t *testing.T) {
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{}}
	interactions := newMemInteractionRepo()
	svc := newTestService(interactions, leads)

	err := svc.IngestInbound(context.Background(), InboundMessage{
		ExternalID: "SM999",
		From:       "+19998887777",
		Body:       "who is this",
	})
	if err != nil {
		t.Fatalf("unknown sender must not be an error, got %v", err)
	}
	if interactions.count() != 0 {
		t.Fatalf("unknown sender must not create records, got %d", interactions.count())
	}
}

func TestIngestInboundSharedPhonePicksOldestLead(t *testing.T) {
	olderID := uuid.New()
	newerID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		olderID: {ID: olderID, Phone: "+15550001", CreatedAt: base},
		newerID: {ID: newerID, Phone: "+15550001", CreatedAt: base.Add(time.Minute)},
	}}
	interactions := newMemInteractionRepo()
	svc := newTestService(interactions, leads)

	if err := svc.IngestInbound(context.Background(), InboundMessage{
		ExternalID: "SM321",
		From:       "+15550001",
		Body:       "hi",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := interactions.GetByExternalID(context.Background(), "SM321")
	if err != nil {
		t.Fatalf("expected inbound interaction recorded: %v", err)
	}
	if record.LeadID != olderID {
		t.Errorf("expected oldest lead to win the shared-phone lookup, got %s", record.LeadID)
	}
}

func TestIngestInboundDuplicateDelivery(t *testing.T) {
	leadID := uuid.New()
	leads := &memLeadRepo{leads: map[uuid.UUID]*domain.Lead{
		leadID: {ID: leadID, Phone: "+15550001"},
	}}
	interactions := newMemInteractionRepo()
	svc := newTestService(interactions, leads)

	msg := InboundMessage{ExternalID: "SM777", From: "+15550001", Body: "hi"}
	if err := svc.IngestInbound(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.IngestInbound(context.Background(), msg); err != nil {
		t.Fatalf("duplicate delivery must be ignored, got %v", err)
	}
	if interactions.count() != 1 {
		t.Fatalf("expected a single record after duplicate delivery, got %d", interactions.count())
	}
}

func TestIngestInboundValidation(t *testing.T) {
	svc := newTestService(newMemInteractionRepo(), &memLeadRepo{})

	cases := []InboundMessage{
		{From: "+15550001", Body: "hi"},
		{ExternalID: "SM1", Body: "hi"},
	}
	for _, tc := range cases {
		if err := svc.IngestInbound(context.Background(), tc); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("expected validation error for input %+v, got %v", tc, err)
		}
	}
}
