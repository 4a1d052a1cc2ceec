package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benvon/flow/internal/events"
	"github.com/benvon/flow/internal/graphql"
	"github.com/benvon/flow/internal/logger"
	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/validation"
	"go.uber.org/zap"
)

var (
	// ErrRecordNotFound is returned when selecting an ID that is not in the record list
	ErrRecordNotFound = errors.New("time record not found")
	// ErrClosed is returned by operations on a closed tracker
	ErrClosed = errors.New("tracker closed")
)

// RecordSource is the backend the tracker reads and mutates time records through
type RecordSource interface {
	List(ctx context.Context) ([]models.TimeRecord, error)
	Start(ctx context.Context) (models.TimeRecord, error)
	Stop(ctx context.Context) (models.TimeRecord, error)
	Delete(ctx context.Context, id string) (models.TimeRecord, error)
	Tag(ctx context.Context, id, tag string) (models.TimeRecord, error)
	Untag(ctx context.Context, id, tag string) (models.TimeRecord, error)
	ModifyDates(ctx context.Context, id string, start, end *time.Time) (models.TimeRecord, error)
}

// Tracker holds the time record view state. The server's record list is the
// source of truth: every successful fetch re-derives the tracking flag, the
// elapsed counter and the started-at label from the record with an empty end.
// At most one tick loop is alive at any time.
type Tracker struct {
	source    RecordSource
	logger    *zap.Logger
	publisher events.Publisher
	now       func() time.Time
	interval  time.Duration
	loc       *time.Location

	mu         sync.Mutex
	state      models.TimerState
	closed     bool
	generation uint64
	fetchSeq   uint64
	appliedSeq uint64
	tickCancel context.CancelFunc
	subs       map[int]chan models.TimerState
	nextSub    int
	errs       chan string

	tickWG  sync.WaitGroup
	tickers atomic.Int32
}

// New creates a tracker. Call Load to populate it.
func New(source RecordSource, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		source:    source,
		logger:    log,
		publisher: events.NoopPublisher{},
		now:       time.Now,
		interval:  DefaultTickInterval,
		loc:       time.Local,
		state:     models.TimerState{Records: []models.TimeRecord{}, RecentTags: []string{}},
		subs:      make(map[int]chan models.TimerState),
		errs:      make(chan string, errorBufferSize),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load performs the initial fetch with the loading flag raised
func (t *Tracker) Load(ctx context.Context) error {
	if !t.update(func(s *models.TimerState) { s.IsLoading = true }) {
		return ErrClosed
	}
	err := t.Refresh(ctx)
	t.update(func(s *models.TimerState) { s.IsLoading = false })
	return err
}

// Refresh fetches the record list and reconciles the timer against it.
// On failure the previous state, including any running tick, is kept.
// A fetch that completes after a later-started fetch was applied is discarded.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.fetchSeq++
	seq := t.fetchSeq
	t.mu.Unlock()

	records, err := t.source.List(ctx)
	if err != nil {
		return t.fail("fetch_time_records", err)
	}
	return t.reconcile(ctx, seq, records)
}

// reconcile derives the tracking state from records and restarts the tick loop
func (t *Tracker) reconcile(ctx context.Context, seq uint64, records []models.TimeRecord) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if applied := t.appliedSeq; seq < applied {
		t.mu.Unlock()
		t.logger.Debug("stale_fetch_discarded", zap.Uint64("fetch_seq", seq), zap.Uint64("applied_seq", applied))
		return nil
	}
	t.appliedSeq = seq

	t.stopTickerLocked()

	wasTracking := t.state.IsTracking
	previousID := t.state.ActiveID()

	t.state.Records = cloneRecords(records)
	t.state.RecentTags = models.DistinctTags(records)

	active, found := models.ActiveRecord(records)
	if found {
		t.state.IsTracking = true
		t.state.CurrentTimeSeconds = 0
		t.state.StartedAt = ""
		if active.StartTime != nil {
			t.state.CurrentTimeSeconds = elapsedSeconds(*active.StartTime, t.now())
			t.state.StartedAt = active.StartTime.In(t.loc).Format(clockLayout)
		}
		t.startTickerLocked()
	} else {
		t.state.IsTracking = false
		t.state.CurrentTimeSeconds = 0
		t.state.StartedAt = ""
	}

	snapshot := t.state.Clone()
	t.broadcastLocked(snapshot)
	t.mu.Unlock()

	t.logger.Debug("timer_reconciled",
		zap.Int("records", len(records)),
		zap.Bool("tracking", snapshot.IsTracking),
		zap.Int("elapsed_seconds", snapshot.CurrentTimeSeconds),
	)

	switch {
	case found && (!wasTracking || previousID != active.ID):
		t.publish(ctx, events.NewEvent(events.TypeTimerStarted, active.ID, active.StartTime, t.now()))
	case !found && wasTracking:
		t.publish(ctx, events.NewEvent(events.TypeTimerStopped, previousID, nil, t.now()))
	}
	return nil
}

// startTickerLocked launches the tick loop for the current generation
func (t *Tracker) startTickerLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	t.tickCancel = cancel
	gen := t.generation

	t.tickWG.Add(1)
	t.tickers.Add(1)
	go t.tickLoop(ctx, gen)
}

// stopTickerLocked cancels the running tick loop, if any. The generation bump
// makes a tick already past its select a no-op.
func (t *Tracker) stopTickerLocked() {
	t.generation++
	if t.tickCancel != nil {
		t.tickCancel()
		t.tickCancel = nil
	}
}

func (t *Tracker) tickLoop(ctx context.Context, gen uint64) {
	defer t.tickWG.Done()
	defer t.tickers.Add(-1)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.tick(gen) {
				return
			}
		}
	}
}

func (t *Tracker) tick(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || gen != t.generation || !t.state.IsTracking {
		return false
	}
	t.state.CurrentTimeSeconds++
	t.broadcastLocked(t.state.Clone())
	return true
}

// StartTimer starts a new record on the backend and reconciles
func (t *Tracker) StartTimer(ctx context.Context) error {
	if _, err := t.source.Start(ctx); err != nil {
		return t.fail("start_timer", err)
	}
	t.logger.Info("timer_start_requested")
	return t.Refresh(ctx)
}

// StopTimer stops the active record on the backend and reconciles
func (t *Tracker) StopTimer(ctx context.Context) error {
	if _, err := t.source.Stop(ctx); err != nil {
		return t.fail("stop_timer", err)
	}
	t.logger.Info("timer_stop_requested")
	return t.Refresh(ctx)
}

// DeleteSelected deletes the selected record and clears the selection
func (t *Tracker) DeleteSelected(ctx context.Context) error {
	id, ok := t.selectedID()
	if !ok {
		return nil
	}
	if _, err := t.source.Delete(ctx, id); err != nil {
		return t.fail("delete_time_record", err)
	}
	t.update(func(s *models.TimerState) { s.SelectedRecord = nil })
	return t.Refresh(ctx)
}

// TagSelected adds tag to the selected record
func (t *Tracker) TagSelected(ctx context.Context, tag string) error {
	if err := validation.ValidateTag(tag); err != nil {
		return t.fail("tag_time_record", err)
	}
	return t.mutateSelected(ctx, "tag_time_record", func(id string) (models.TimeRecord, error) {
		return t.source.Tag(ctx, id, tag)
	})
}

// UntagSelected removes tag from the selected record
func (t *Tracker) UntagSelected(ctx context.Context, tag string) error {
	if err := validation.ValidateTag(tag); err != nil {
		return t.fail("untag_time_record", err)
	}
	return t.mutateSelected(ctx, "untag_time_record", func(id string) (models.TimeRecord, error) {
		return t.source.Untag(ctx, id, tag)
	})
}

// ModifySelectedDates changes the start and/or end of the selected record.
// Nil values are left unchanged on the backend.
func (t *Tracker) ModifySelectedDates(ctx context.Context, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return t.fail("modify_time_record_date", fmt.Errorf("end %s is before start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return t.mutateSelected(ctx, "modify_time_record_date", func(id string) (models.TimeRecord, error) {
		return t.source.ModifyDates(ctx, id, start, end)
	})
}

func (t *Tracker) mutateSelected(ctx context.Context, op string, mutate func(id string) (models.TimeRecord, error)) error {
	id, ok := t.selectedID()
	if !ok {
		return nil
	}
	record, err := mutate(id)
	if err != nil {
		return t.fail(op, err)
	}
	t.update(func(s *models.TimerState) {
		r := record.Clone()
		s.SelectedRecord = &r
	})
	return t.Refresh(ctx)
}

// Select marks the record with id as selected
func (t *Tracker) Select(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.state.Records {
		if r.ID == id {
			selected := r.Clone()
			t.state.SelectedRecord = &selected
			t.broadcastLocked(t.state.Clone())
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// SelectCurrent selects the active record and reports whether there was one
func (t *Tracker) SelectCurrent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	active, ok := models.ActiveRecord(t.state.Records)
	if !ok {
		return false
	}
	selected := active.Clone()
	t.state.SelectedRecord = &selected
	t.broadcastLocked(t.state.Clone())
	return true
}

// ClearSelection drops the selection
func (t *Tracker) ClearSelection() {
	t.update(func(s *models.TimerState) { s.SelectedRecord = nil })
}

// State returns a copy of the current view state
func (t *Tracker) State() models.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Subscribe returns a channel that receives state snapshots, starting with the
// current one. A slow reader only ever sees the most recent snapshot. The
// returned function unsubscribes and closes the channel.
func (t *Tracker) Subscribe() (<-chan models.TimerState, func()) {
	ch := make(chan models.TimerState, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	ch <- t.state.Clone()
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if c, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(c)
			}
		})
	}
}

// Errors returns the channel of user-facing error notifications
func (t *Tracker) Errors() <-chan string {
	return t.errs
}

// TickerCount returns the number of live tick loops
func (t *Tracker) TickerCount() int {
	return int(t.tickers.Load())
}

// Close stops the tick loop and closes all subscriber and error channels.
// It waits for the tick loop to exit.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.stopTickerLocked()
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
	close(t.errs)
	t.mu.Unlock()

	t.tickWG.Wait()
	t.logger.Debug("tracker_closed")
}

// update applies fn to the state and broadcasts; it reports false once closed
func (t *Tracker) update(fn func(s *models.TimerState)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	fn(&t.state)
	t.broadcastLocked(t.state.Clone())
	return true
}

func (t *Tracker) selectedID() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.SelectedRecord == nil {
		return "", false
	}
	return t.state.SelectedRecord.ID, true
}

// broadcastLocked hands snapshot to every subscriber, replacing an unread one
func (t *Tracker) broadcastLocked(snapshot models.TimerState) {
	for _, ch := range t.subs {
		s := snapshot.Clone()
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// fail logs err, posts a user-facing message and returns err
func (t *Tracker) fail(op string, err error) error {
	msg := graphql.UserMessage(err)
	t.logger.Warn("timer_operation_failed",
		zap.String("operation", op),
		zap.String("error", logger.SanitizeError(err)),
	)

	t.mu.Lock()
	if !t.closed {
		select {
		case t.errs <- msg:
		default:
			t.logger.Warn("error_notification_dropped", zap.String("operation", op))
		}
	}
	t.mu.Unlock()
	return err
}

func (t *Tracker) publish(ctx context.Context, event events.Event) {
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.Warn("timer_event_publish_failed",
			zap.String("event_type", string(event.Type)),
			zap.String("error", logger.SanitizeError(err)),
		)
	}
}

func cloneRecords(records []models.TimeRecord) []models.TimeRecord {
	out := make([]models.TimeRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
