package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/eventbus"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// ErrStopped is returned when scheduling on a stopped scheduler.
var ErrStopped = errors.New("scheduler is stopped")

// Firing is published every time a job reaches its instant.
type Firing struct {
	// Key is the slot that rang.
	Key alarm.Key
	// At is the firing time in the scheduler's location.
	At time.Time
}

// weekly is a cron.Schedule that recurs every week on the key's slot.
type weekly struct {
	key alarm.Key
}

// Next implements cron.Schedule.
func (w weekly) Next(t time.Time) time.Time {
	return w.key.Next(t)
}

// job is the live handle for one key.
type job struct {
	// entryID identifies the cron entry.
	entryID cron.EntryID
	// generation distinguishes this job from earlier ones under the same key.
	generation uint64
	// fired counts how many times the job has rung.
	fired int
}

// Scheduler owns the cron engine and the job table.
type Scheduler struct {
	//nolint:containedctx // Carries the logger for firing callbacks.
	ctx context.Context

	// mu guards jobs, generation and state. Firing callbacks take it too, which
	// is what orders them against Unschedule.
	mu         sync.Mutex
	jobs       map[alarm.Key]*job
	generation uint64
	started    bool
	stopped    bool

	cron   *cron.Cron
	loc    *time.Location
	bus    *eventbus.Bus[Firing]
	buffer int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the wall clock used to compute firing instants.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBuffer sets the default subscriber buffer size.
func WithBuffer(size int) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.buffer = size
		}
	}
}

// New creates a stopped scheduler. Jobs may be scheduled before Start; they
// begin counting down once Start is called.
func New(ctx context.Context, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:    logger.WithName(ctx, "scheduler"),
		jobs:   make(map[alarm.Key]*job),
		loc:    time.Local,
		bus:    eventbus.New[Firing](),
		buffer: eventbus.DefaultBuffer,
	}

	for _, opt := range opts {
		opt(s)
	}

	cronLogger := logger.NewCronLogger(s.ctx)
	s.cron = cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	return s
}

// Start starts the cron engine. It is a no-op when already started or stopped.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}

	s.started = true
	s.cron.Start()

	logger.DebugKV(s.ctx, "Scheduler started", "location", s.loc.String(), "jobs", len(s.jobs))
}

// Schedule arms a weekly job for key, replacing any job already held under it,
// and returns the next firing instant.
func (s *Scheduler) Schedule(key alarm.Key) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return time.Time{}, ErrStopped
	}

	if s.removeLocked(key) {
		logger.DebugKV(s.ctx, "Replacing scheduled job", "key", key.String())
	}

	s.generation++
	generation := s.generation

	entryID := s.cron.Schedule(weekly{key: key}, cron.FuncJob(func() {
		s.fire(key, generation)
	}))

	s.jobs[key] = &job{
		entryID:    entryID,
		generation: generation,
	}

	next := key.Next(s.now())
	logger.DebugKV(s.ctx, "Job scheduled", "key", key.String(), "next", next)

	return next, nil
}

// Unschedule cancels the job for key. It returns false when no job was held.
func (s *Scheduler) Unschedule(key alarm.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeLocked(key)
	if removed {
		logger.DebugKV(s.ctx, "Job unscheduled", "key", key.String())
	}

	return removed
}

// Has reports whether a live job exists for key.
func (s *Scheduler) Has(key alarm.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.jobs[key]

	return ok
}

// Keys returns the keys of all live jobs in a stable order.
func (s *Scheduler) Keys() []alarm.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]alarm.Key, 0, len(s.jobs))
	for key := range s.jobs {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, compareKeys)

	return keys
}

// Next returns the upcoming firing instant of the job for key.
func (s *Scheduler) Next(key alarm.Key) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[key]; !ok {
		return time.Time{}, false
	}

	return key.Next(s.now()), true
}

// Fired returns how many times the job for key has rung since it was scheduled.
func (s *Scheduler) Fired(key alarm.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[key]; ok {
		return j.fired
	}

	return 0
}

// Subscribe returns a subscription to firings. A non-positive buffer uses the
// scheduler default.
func (s *Scheduler) Subscribe(buffer int) *eventbus.Subscription[Firing] {
	if buffer <= 0 {
		buffer = s.buffer
	}

	return s.bus.Subscribe(buffer)
}

// Stop cancels every job, stops the cron engine and closes all subscriptions.
// It waits for in-flight firing callbacks until ctx is done. Stop is idempotent.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()

		return nil
	}

	s.stopped = true
	cancelled := len(s.jobs)

	for key := range s.jobs {
		s.removeLocked(key)
	}

	s.mu.Unlock()

	// Callbacks waiting on mu see the stopped flag and return, so waiting for
	// them must happen without holding mu.
	done := s.cron.Stop()

	var err error

	select {
	case <-done.Done():
	case <-ctx.Done():
		err = fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}

	s.bus.Close()
	logger.DebugKV(s.ctx, "Scheduler stopped", "cancelled_jobs", cancelled)

	return err
}

// fire runs on a cron goroutine when a job reaches its instant.
func (s *Scheduler) fire(key alarm.Key, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[key]
	if !ok || j.generation != generation || s.stopped {
		logger.DebugKV(s.ctx, "Dropping stale firing", "key", key.String())

		return
	}

	j.fired++
	at := s.now()

	logger.InfoKV(s.ctx, "Alarm ringing", "time", key.Time.String(), "weekday", key.Weekday.String())

	// Publish is non-blocking, so holding mu here cannot stall Unschedule for long.
	s.bus.Publish(Firing{Key: key, At: at})
}

// removeLocked cancels the cron entry for key. Call with mu held.
func (s *Scheduler) removeLocked(key alarm.Key) bool {
	j, ok := s.jobs[key]
	if !ok {
		return false
	}

	s.cron.Remove(j.entryID)
	delete(s.jobs, key)

	return true
}

// now returns the current time in the scheduler's location.
func (s *Scheduler) now() time.Time {
	return time.Now().In(s.loc)
}

// compareKeys orders keys by weekday, then time.
func compareKeys(a, b alarm.Key) int {
	if a.Weekday != b.Weekday {
		return int(a.Weekday) - int(b.Weekday)
	}

	if a.Time.Hour != b.Time.Hour {
		return a.Time.Hour - b.Time.Hour
	}

	return a.Time.Minute - b.Time.Minute
}
