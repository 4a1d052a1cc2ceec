package tracker

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benvon/flow/internal/events"
	"github.com/benvon/flow/internal/models"
)

// fakeSource is an in-memory RecordSource
type fakeSource struct {
	mu      sync.Mutex
	records []models.TimeRecord
	now     func() time.Time
	nextID  int
	listErr error
	mutErr  error
	calls   []string
}

func newFakeSource(now func() time.Time, records ...models.TimeRecord) *fakeSource {
	return &fakeSource{records: records, now: now, nextID: 100}
}

func (f *fakeSource) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeSource) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeSource) List(ctx context.Context) ([]models.TimeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.TimeRecord, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeSource) Start(ctx context.Context) (models.TimeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start")
	if f.mutErr != nil {
		return models.TimeRecord{}, f.mutErr
	}
	f.nextID++
	start := f.now()
	r := models.TimeRecord{ID: strconv.Itoa(f.nextID), Start: "x", StartTime: &start, Tags: []string{}}
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeSource) Stop(ctx context.Context) (models.TimeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop")
	if f.mutErr != nil {
		return models.TimeRecord{}, f.mutErr
	}
	for i := range f.records {
		if f.records[i].IsActive() {
			end := f.now()
			f.records[i].End = "x"
			f.records[i].EndTime = &end
			return f.records[i].Clone(), nil
		}
	}
	return models.TimeRecord{}, nil
}

func (f *fakeSource) Delete(ctx context.Context, id string) (models.TimeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + id)
	if f.mutErr != nil {
		return models.TimeRecord{}, f.mutErr
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return r, nil
		}
	}
	return models.TimeRecord{}, nil
}

func (f *fakeSource) Tag(ctx context.Context, id, tag string) (models.TimeRecord, error) {
	return f.modify("tag:"+id, id, func(r *models.TimeRecord) { r.Tags = append(r.Tags, tag) })
}

func (f *fakeSource) Untag(ctx context.Context, id, tag string) (models.TimeRecord, error) {
	return f.modify("untag:"+id, id, func(r *models.TimeRecord) {
		kept := []string{}
		for _, t := range r.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		r.Tags = kept
	})
}

func (f *fakeSource) ModifyDates(ctx context.Context, id string, start, end *time.Time) (models.TimeRecord, error) {
	return f.modify("dates:"+id, id, func(r *models.TimeRecord) {
		if start != nil {
			s := *start
			r.StartTime = &s
		}
		if end != nil {
			e := *end
			r.End = "x"
			r.EndTime = &e
		}
	})
}

func (f *fakeSource) modify(call, id string, fn func(r *models.TimeRecord)) (models.TimeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.mutErr != nil {
		return models.TimeRecord{}, f.mutErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			fn(&f.records[i])
			return f.records[i].Clone(), nil
		}
	}
	return models.TimeRecord{}, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func finished(id string, start, end time.Time, tags ...string) models.TimeRecord {
	if tags == nil {
		tags = []string{}
	}
	return models.TimeRecord{ID: id, Start: "x", End: "x", StartTime: &start, EndTime: &end, Tags: tags}
}

func running(id string, start time.Time, tags ...string) models.TimeRecord {
	if tags == nil {
		tags = []string{}
	}
	return models.TimeRecord{ID: id, Start: "x", End: "", StartTime: &start, Tags: tags}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

// blockingSource holds the next List call after it has read the records,
// until Release is called
type blockingSource struct {
	*fakeSource

	mu      sync.Mutex
	armed   bool
	listing chan struct{}
	release chan struct{}
}

func newBlockingSource(inner *fakeSource) *blockingSource {
	return &blockingSource{
		fakeSource: inner,
		listing:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

// BlockNext makes the next List call block
func (b *blockingSource) BlockNext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armed = true
}

// Release unblocks the held List call
func (b *blockingSource) Release() {
	close(b.release)
}

func (b *blockingSource) List(ctx context.Context) ([]models.TimeRecord, error) {
	records, err := b.fakeSource.List(ctx)

	b.mu.Lock()
	block := b.armed
	b.armed = false
	b.mu.Unlock()

	if block {
		close(b.listing)
		<-b.release
	}
	return records, err
}
