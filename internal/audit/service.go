package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// Service exposes the audit trail read API. Writes go through the
// Repository from inside the transaction that owns the audited change.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error)
}

type service struct {
	repo Repository
}

// NewService constructs an audit service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if filters.Action != nil && !filters.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action filter")
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time range is inverted")
	}

	list, err := s.repo.List(ctx, storeID, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit events")
	}
	return list, nil
}
