package cron

import (
	"context"
	"testing"
	"time"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string                       { return s.name }
func (s *stubJob) Run(context.Context) (int64, error) { return 0, nil }

func TestRegistryStoresEntries(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry.Register(jobA, time.Minute)
	registry.Register(jobB, 0)
	entries := registry.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Job != jobA || entries[1].Job != jobB {
		t.Fatalf("entries returned out of order")
	}
	if entries[0].Interval != time.Minute {
		t.Fatalf("expected 1m interval, got %s", entries[0].Interval)
	}
	if entries[1].Interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", entries[1].Interval)
	}
	// ensure caller cannot mutate internal slice
	entries[0].Job = nil
	if registry.Entries()[0].Job == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(Entry{Job: nil, Interval: time.Minute})
	registry.Register(nil, time.Minute)
	if len(registry.Entries()) != 0 {
		t.Fatalf("expected nil jobs to be skipped")
	}
}
