package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/eventbus"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Scheduler is the part of scheduler.Scheduler the clock depends on.
type Scheduler interface {
	Schedule(key alarm.Key) (time.Time, error)
	Unschedule(key alarm.Key) bool
	Subscribe(buffer int) *eventbus.Subscription[scheduler.Firing]
	Start()
	Stop(ctx context.Context) error
}

// Clock is the alarm registry.
type Clock struct {
	// mu serializes the alarm sequence, latest and every scheduler call made
	// on behalf of a registry operation.
	mu     sync.Mutex
	alarms []*alarm.Alarm
	// latest is the ID of the snooze target, uuid.Nil when unset.
	latest uuid.UUID

	scheduler Scheduler
	now       func() time.Time
	events    *eventbus.Bus[Ringing]
	buffer    int

	// handlerDone is closed when the firing handler exits; nil before Start.
	handlerDone chan struct{}
	startOnce   sync.Once
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow overrides the wall clock used for defaults and next-ring display.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation makes the clock read the wall clock in loc.
func WithLocation(loc *time.Location) Option {
	return func(c *Clock) {
		if loc != nil {
			c.now = func() time.Time { return time.Now().In(loc) }
		}
	}
}

// WithBuffer sets the buffer of the internal scheduler subscription and the
// default buffer of Ringing subscriptions.
func WithBuffer(size int) Option {
	return func(c *Clock) {
		if size > 0 {
			c.buffer = size
		}
	}
}

// New creates a clock on top of s. Call Start to begin handling firings.
func New(s Scheduler, opts ...Option) *Clock {
	c := &Clock{
		scheduler: s,
		now:       time.Now,
		events:    eventbus.New[Ringing](),
		buffer:    eventbus.DefaultBuffer,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start starts the scheduler and the firing handler. Later calls are no-ops.
func (c *Clock) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx = logger.WithName(ctx, "clock")
		sub := c.scheduler.Subscribe(c.buffer)
		c.handlerDone = make(chan struct{})

		go c.handleFirings(ctx, sub)

		c.scheduler.Start()
	})
}

// Close stops the scheduler, cancelling every job, waits for the firing
// handler and closes all Ringing subscriptions.
func (c *Clock) Close(ctx context.Context) error {
	// Make a later Start a no-op.
	c.startOnce.Do(func() {})

	err := c.scheduler.Stop(ctx)

	if c.handlerDone != nil {
		select {
		case <-c.handlerDone:
		case <-ctx.Done():
			if err == nil {
				err = fmt.Errorf("wait for firing handler: %w", ctx.Err())
			}
		}
	}

	c.events.Close()

	return err
}

// Subscribe returns a stream of Ringing events. A non-positive buffer uses the
// clock default.
func (c *Clock) Subscribe(buffer int) *eventbus.Subscription[Ringing] {
	if buffer <= 0 {
		buffer = c.buffer
	}

	return c.events.Subscribe(buffer)
}

// AddAlarm sets a weekly alarm at the given time and day.
func (c *Clock) AddAlarm(ctx context.Context, at alarm.TimeOfDay, day alarm.Weekday) (Entry, error) {
	return c.add(ctx, at, day)
}

// AddAlarmToday sets a weekly alarm on the current weekday. When the time has
// already passed today the alarm keeps today's weekday and first rings a week
// from today.
func (c *Clock) AddAlarmToday(ctx context.Context, at alarm.TimeOfDay) (Entry, error) {
	return c.add(ctx, at, alarm.WeekdayOf(c.now()))
}

// DeleteByIndex removes the alarm at the 1-based display index.
func (c *Clock) DeleteByIndex(ctx context.Context, index int) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 1 || index > len(c.alarms) {
		return Entry{}, fmt.Errorf("%w: index %d out of range 1..%d", alarm.ErrNotFound, index, len(c.alarms))
	}

	return c.removeLocked(ctx, index-1), nil
}

// Delete removes the alarm currently holding key.
func (c *Clock) Delete(ctx context.Context, key alarm.Key) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfLocked(key)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %s on %s", alarm.ErrNotFound, key.Time, key.Weekday)
	}

	return c.removeLocked(ctx, i), nil
}

// SnoozeLatest snoozes the latest alarm and moves its job to the new slot.
func (c *Clock) SnoozeLatest(ctx context.Context) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfIDLocked(c.latest)
	if i < 0 {
		c.latest = uuid.Nil

		return Entry{}, alarm.ErrNoTargetAlarm
	}

	current := c.alarms[i]

	snoozed := current.Clone()
	if !snoozed.Snooze() {
		return Entry{}, fmt.Errorf("%w: %d of %d snoozes used", alarm.ErrSnoozeLimitReached,
			current.SnoozeCount, alarm.SnoozeLimit)
	}

	oldKey, newKey := current.Key(), snoozed.Key()
	if c.indexOfLocked(newKey) >= 0 {
		return Entry{}, fmt.Errorf("%w: %s on %s", alarm.ErrDuplicateAlarm, newKey.Time, newKey.Weekday)
	}

	// The scheduler only replaces a job under the key it is given, so the
	// pre-snooze slot must be cancelled explicitly.
	c.scheduler.Unschedule(oldKey)

	if _, err := c.scheduler.Schedule(newKey); err != nil {
		return Entry{}, fmt.Errorf("schedule snoozed alarm: %w", err)
	}

	*current = *snoozed
	entry := c.entryLocked(i)

	logger.InfoKV(ctx, "Alarm snoozed",
		"from", oldKey.String(),
		"to", newKey.String(),
		"snooze_count", current.SnoozeCount,
		"next", entry.Next)

	return entry, nil
}

// List returns all alarms in display order.
func (c *Clock) List(_ context.Context) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, len(c.alarms))
	for i := range c.alarms {
		entries = append(entries, c.entryLocked(i))
	}

	return entries
}

// Latest returns the current snooze target.
func (c *Clock) Latest() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfIDLocked(c.latest)
	if i < 0 {
		return Entry{}, false
	}

	return c.entryLocked(i), true
}

// Len returns the number of alarms.
func (c *Clock) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.alarms)
}

// Now returns the clock's current wall time.
func (c *Clock) Now() time.Time {
	return c.now()
}

func (c *Clock) add(ctx context.Context, at alarm.TimeOfDay, day alarm.Weekday) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := alarm.Key{Time: at, Weekday: day}
	if c.indexOfLocked(key) >= 0 {
		return Entry{}, fmt.Errorf("%w: %s on %s", alarm.ErrDuplicateAlarm, at, day)
	}

	a := alarm.New(at, day)

	if _, err := c.scheduler.Schedule(key); err != nil {
		return Entry{}, fmt.Errorf("schedule alarm: %w", err)
	}

	c.alarms = append(c.alarms, a)
	c.latest = a.ID
	entry := c.entryLocked(len(c.alarms) - 1)

	logger.InfoKV(ctx, "Alarm set", "time", at.String(), "weekday", day.String(), "next", entry.Next)

	return entry, nil
}

// removeLocked unschedules and removes the alarm at position i.
func (c *Clock) removeLocked(ctx context.Context, i int) Entry {
	entry := c.entryLocked(i)
	removed := c.alarms[i]

	c.scheduler.Unschedule(removed.Key())
	c.alarms = append(c.alarms[:i], c.alarms[i+1:]...)

	if c.latest == removed.ID {
		c.latest = uuid.Nil
	}

	logger.InfoKV(ctx, "Alarm deleted", "time", removed.Time.String(), "weekday", removed.Weekday.String())

	return entry
}

// handleFirings marks each ringing alarm as latest and re-publishes it.
// It returns when the scheduler closes the subscription.
func (c *Clock) handleFirings(ctx context.Context, sub *eventbus.Subscription[scheduler.Firing]) {
	defer close(c.handlerDone)
	defer sub.Close()

	for firing := range sub.C() {
		ringing, ok := c.ring(firing)
		if !ok {
			logger.DebugKV(ctx, "Ignoring firing for removed alarm", "key", firing.Key.String())

			continue
		}

		c.events.Publish(ringing)
	}
}

func (c *Clock) ring(firing scheduler.Firing) (Ringing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfLocked(firing.Key)
	if i < 0 {
		return Ringing{}, false
	}

	c.latest = c.alarms[i].ID

	return Ringing{Entry: c.entryLocked(i), At: firing.At}, true
}

func (c *Clock) entryLocked(i int) Entry {
	a := c.alarms[i]

	return Entry{
		Index: i + 1,
		Alarm: *a.Clone(),
		Next:  a.Key().Next(c.now()),
	}
}

func (c *Clock) indexOfLocked(key alarm.Key) int {
	for i, a := range c.alarms {
		if a.Key() == key {
			return i
		}
	}

	return -1
}

func (c *Clock) indexOfIDLocked(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}

	for i, a := range c.alarms {
		if a.ID == id {
			return i
		}
	}

	return -1
}
