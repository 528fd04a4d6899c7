package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

type fakeLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type stubLocker struct{}

func (stubLocker) LockFor(string) (Lock, error) { return &fakeLock{}, nil }

type testJob struct {
	name string
	rows int64
	err  error

	mu   sync.Mutex
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) (int64, error) {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
	return t.rows, t.err
}

func (t *testJob) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

func newCronTestService(t *testing.T, registry *Registry) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: registry,
		Locker:   stubLocker{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceRunCycleReleasesLockEvenOnFailure(t *testing.T) {
	job := &testJob{name: "fail", err: errors.New("boom")}
	service := newCronTestService(t, NewRegistry())
	lock := &fakeLock{}

	if err := service.runCycle(context.Background(), Entry{Job: job, Interval: time.Minute}, lock); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.Runs() != 1 {
		t.Fatalf("expected job to run once, ran %d", job.Runs())
	}
	if lock.acquired {
		t.Fatal("lock should be released after the cycle")
	}
	if lock.releases != 1 {
		t.Fatalf("expected one release, got %d", lock.releases)
	}
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "held"}
	service := newCronTestService(t, NewRegistry())
	lock := &fakeLock{acquired: true}

	if err := service.runCycle(context.Background(), Entry{Job: job, Interval: time.Minute}, lock); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.Runs() != 0 {
		t.Fatalf("job should not run while another instance holds the lock, ran %d", job.Runs())
	}
}

func TestServiceRunCyclePropagatesLockError(t *testing.T) {
	job := &testJob{name: "lockfail"}
	service := newCronTestService(t, NewRegistry())
	lock := &fakeLock{acquireErr: errors.New("redis down")}

	if err := service.runCycle(context.Background(), Entry{Job: job, Interval: time.Minute}, lock); err == nil {
		t.Fatal("expected lock error to surface")
	}
	if job.Runs() != 0 {
		t.Fatalf("job should not run when the lock cannot be acquired, ran %d", job.Runs())
	}
}

func TestServiceRunTicksEachJobOnItsOwnInterval(t *testing.T) {
	fast := &testJob{name: "fast"}
	slow := &testJob{name: "slow"}
	registry := NewRegistry(
		Entry{Job: fast, Interval: 10 * time.Millisecond},
		Entry{Job: slow, Interval: time.Hour},
	)
	service := newCronTestService(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	waitFor(t, func() bool { return fast.Runs() >= 3 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if slow.Runs() != 1 {
		t.Fatalf("expected the slow job to run only its immediate pass, ran %d", slow.Runs())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
