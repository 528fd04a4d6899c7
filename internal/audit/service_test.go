package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type stubAuditRepo struct {
	list func(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error)
}

func (s *stubAuditRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAuditRepo) Insert(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return event, nil
}

func (s *stubAuditRepo) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error) {
	if s.list != nil {
		return s.list(ctx, storeID, params, filters)
	}
	return &EventList{Events: []EventDTO{}}, nil
}

func (s *stubAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestServiceListRequiresStore(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubAuditRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.List(context.Background(), uuid.Nil, pagination.Params{}, ListFilters{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestServiceListRejectsBadFilters(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubAuditRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	storeID := uuid.New()

	badAction := enums.AuditAction("made_up")
	if _, err := svc.List(context.Background(), storeID, pagination.Params{}, ListFilters{Action: &badAction}); err == nil {
		t.Fatal("expected error for unknown action filter")
	}

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = svc.List(context.Background(), storeID, pagination.Params{}, ListFilters{From: &from, To: &to})
	if err == nil {
		t.Fatal("expected error for inverted time range")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestServiceListPassesFiltersThrough(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	actorID := uuid.New()
	action := enums.AuditSaleVoided

	var gotStore uuid.UUID
	var gotFilters ListFilters
	repo := &stubAuditRepo{
		list: func(ctx context.Context, sid uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error) {
			gotStore = sid
			gotFilters = filters
			return &EventList{Events: []EventDTO{{ID: uuid.New(), Action: action}}, NextCursor: "next"}, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	list, err := svc.List(context.Background(), storeID, pagination.Params{Limit: 10}, ListFilters{
		Action:  &action,
		ActorID: &actorID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStore != storeID {
		t.Fatalf("expected store %s, got %s", storeID, gotStore)
	}
	if gotFilters.Action == nil || *gotFilters.Action != action {
		t.Fatalf("expected action filter to pass through, got %v", gotFilters.Action)
	}
	if gotFilters.ActorID == nil || *gotFilters.ActorID != actorID {
		t.Fatalf("expected actor filter to pass through, got %v", gotFilters.ActorID)
	}
	if len(list.Events) != 1 || list.NextCursor != "next" {
		t.Fatalf("unexpected list result: %+v", list)
	}
}
