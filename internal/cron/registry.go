package cron

import (
	"context"
	"time"
)

// Job represents a scheduled task that runs inside the cron worker.
// Run reports how many rows the cycle touched; a sweep that stops
// matching anything shows up as a flat line instead of going unnoticed.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Entry pairs a job with its cadence.
type Entry struct {
	Job      Job
	Interval time.Duration
}

// Registry tracks registered cron jobs.
type Registry struct {
	entries []Entry
}

// NewRegistry builds a registry preloaded with the provided entries.
func NewRegistry(entries ...Entry) *Registry {
	registry := &Registry{}
	for _, entry := range entries {
		registry.Register(entry.Job, entry.Interval)
	}
	return registry
}

// Register adds a job to the registry. A non-positive interval falls
// back to the daily default.
func (r *Registry) Register(job Job, interval time.Duration) {
	if job == nil {
		return
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	r.entries = append(r.entries, Entry{Job: job, Interval: interval})
}

// Entries returns the registered jobs in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
