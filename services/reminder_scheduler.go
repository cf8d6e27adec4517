package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// Scheduler owns the recurring reminder jobs. Each reminder id maps to its own
// cron runner so it can be replaced or cancelled on its own, and Stop releases
// every runner and waits for jobs already running.
type Scheduler struct {
	mu      sync.Mutex
	loc     *time.Location
	entries map[string]*cron.Cron
	stopped bool
	running sync.WaitGroup
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		loc:     loc,
		entries: make(map[string]*cron.Cron),
	}
}

// Schedule runs job on spec (six fields, seconds first, or a descriptor such
// as "@daily"). An existing job with the same id is stopped and replaced.
func (s *Scheduler) Schedule(id, spec string, job func()) error {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("scheduler stopped, cannot add %s", id)
	}

	if old, ok := s.entries[id]; ok {
		old.Stop()
	}

	c := cron.NewWithLocation(s.loc)
	c.Schedule(schedule, cron.FuncJob(s.track(job)))
	c.Start()
	s.entries[id] = c

	log.WithFields(log.Fields{"job": id, "spec": spec}).Info("reminder scheduled")
	return nil
}

// track registers a run with the WaitGroup. Runs that start after Stop are
// dropped, so Add never races the Wait in Stop.
func (s *Scheduler) track(job func()) func() {
	return func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.running.Add(1)
		s.mu.Unlock()

		defer s.running.Done()
		job()
	}
}

// Cancel stops the job with the given id and reports whether it existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.entries[id]
	if !ok {
		return false
	}
	c.Stop()
	delete(s.entries, id)
	return true
}

func (s *Scheduler) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Next returns when the job with the given id fires next.
func (s *Scheduler) Next(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.entries[id]
	if !ok {
		return time.Time{}, false
	}
	entries := c.Entries()
	if len(entries) == 0 {
		return time.Time{}, false
	}
	return entries[0].Next, true
}

// Stop cancels every job and blocks until running jobs return. Later calls
// to Schedule fail.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, c := range s.entries {
		c.Stop()
		delete(s.entries, id)
	}
	s.stopped = true
	s.mu.Unlock()

	s.running.Wait()
	log.Info("reminder scheduler stopped")
}
