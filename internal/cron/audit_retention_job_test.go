package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

type fakeAuditRetentionRepo struct {
	cutoff  time.Time
	calls   int
	deleted int64
	err     error
}

func (f *fakeAuditRetentionRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.deleted, f.err
}

func newAuditRetentionJob(t *testing.T, repo *fakeAuditRetentionRepo, retention int) Job {
	t.Helper()
	job, err := NewAuditRetentionJob(AuditRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Repository: repo,
		Retention:  retention,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*auditRetentionJob).now = func() time.Time { return expiryNow }
	return job
}

func TestAuditRetentionDeletesBeforeCutoff(t *testing.T) {
	repo := &fakeAuditRetentionRepo{deleted: 7}
	job := newAuditRetentionJob(t, repo, 30)

	rows, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows != 7 {
		t.Fatalf("expected 7 rows reported, got %d", rows)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one delete call, got %d", repo.calls)
	}
	want := expiryNow.Add(-30 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestAuditRetentionDefaultsToNinetyDays(t *testing.T) {
	repo := &fakeAuditRetentionRepo{}
	job := newAuditRetentionJob(t, repo, 0)

	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := expiryNow.Add(-90 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestAuditRetentionPropagatesErrors(t *testing.T) {
	repo := &fakeAuditRetentionRepo{err: errors.New("db down")}
	job := newAuditRetentionJob(t, repo, 30)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected delete error to surface")
	}
}
