package outbox

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
)

const maxDLQErrorLen = 1024

type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// InsertTx parks a poisoned event inside the dispatcher transaction.
// Error messages are truncated so a pathological payload cannot bloat
// the row.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil {
		msg := truncateDLQError(*entry.ErrorMessage)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// CountSince reports how many events were parked at or after the given
// time. The retention sweep logs it so a growing queue gets noticed.
func (r *DLQRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxDLQ{}).
		Where("failed_at >= ?", since).
		Count(&count).Error
	return count, err
}

// DeleteBefore trims parked events older than the cutoff. Rows live
// long enough for remediation; past that they are only noise.
func (r *DLQRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := r.db.WithContext(ctx).
		Where("failed_at < ?", cutoff).
		Delete(&models.OutboxDLQ{})
	return result.RowsAffected, result.Error
}

func truncateDLQError(message string) string {
	if len(message) <= maxDLQErrorLen {
		return message
	}
	return message[:maxDLQErrorLen]
}
