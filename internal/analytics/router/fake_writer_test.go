package router

import (
	"context"

	"github.com/karatworks/aurumpos-backend/internal/analytics/types"
)

type fakeWriter struct {
	inserted  []types.RevenueFactRow
	insertErr error
}

func (f *fakeWriter) InsertRevenue(_ context.Context, row types.RevenueFactRow) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, row)
	return nil
}
