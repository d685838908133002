package etl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

type testDoc struct {
	ID       uuid.UUID
	Modified time.Time
}

func (d testDoc) DocumentID() string {
	return d.ID.String()
}

func (d testDoc) ModifiedAt() time.Time {
	return d.Modified
}

type listCall struct {
	Watermark time.Time
	Offset    int
}

// fakeSource serves records ordered by (modified, id) like the real query.
type fakeSource struct {
	mu        sync.Mutex
	records   []testDoc
	listCalls []listCall
	listErr   error
	fetchErr  error
}

func (s *fakeSource) ListChanged(_ context.Context, watermark time.Time, limit, offset int) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls = append(s.listCalls, listCall{Watermark: watermark, Offset: offset})
	if s.listErr != nil {
		return nil, s.listErr
	}

	var matched []testDoc
	for _, r := range s.records {
		if !r.Modified.Before(watermark) {
			matched = append(matched, r)
		}
	}
	slices.SortFunc(matched, func(a, b testDoc) int {
		if c := a.Modified.Compare(b.Modified); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:min(offset+limit, len(matched))]

	out := make([]Change, len(matched))
	for i, r := range matched {
		out[i] = Change{ID: r.ID, Modified: r.Modified}
	}
	return out, nil
}

func (s *fakeSource) Fetch(_ context.Context, ids []uuid.UUID) ([]testDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var rows []testDoc
	for _, id := range ids {
		for _, r := range s.records {
			if r.ID == id {
				rows = append(rows, r)
			}
		}
	}
	return rows, nil
}

func identity(rows []testDoc) []testDoc {
	return rows
}

// fakeSink upserts by id and rejects ids listed in reject.
type fakeSink struct {
	mu      sync.Mutex
	docs    map[string]testDoc
	batches [][]testDoc
	reject  map[uuid.UUID]bool
	err     error
}

func newFakeSink() *fakeSink {
	return &fakeSink{docs: map[string]testDoc{}, reject: map[uuid.UUID]bool{}}
}

func (s *fakeSink) BulkUpsert(_ context.Context, docs []testDoc) (*LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, slices.Clone(docs))

	report := &LoadReport{Total: len(docs)}
	for _, d := range docs {
		if s.reject[d.ID] {
			report.Failed++
			report.Errors = append(report.Errors, ItemError{
				ID:     d.DocumentID(),
				Status: 400,
				Type:   "mapper_parsing_exception",
				Reason: "rejected",
			})
			continue
		}
		s.docs[d.DocumentID()] = d
	}
	return report, nil
}

// instantTimer lets retries proceed without sleeping.
type instantTimer struct {
	c chan time.Time
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(time.Duration) {
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	return t.c
}

// fakePumper records how the runner drives it.
type fakePumper struct {
	name   string
	err    error
	onPump func(call int)

	mu     sync.Mutex
	forced []*time.Time
	ctxErr []error
}

func (f *fakePumper) Name() string {
	return f.name
}

func (f *fakePumper) Status() Status {
	return StatusIdle
}

func (f *fakePumper) Checkpoints() (map[string]any, error) {
	return map[string]any{}, nil
}

func (f *fakePumper) Pump(ctx context.Context, forcedStart *time.Time) error {
	f.mu.Lock()
	f.forced = append(f.forced, forcedStart)
	call := len(f.forced)
	f.mu.Unlock()

	if f.onPump != nil {
		f.onPump(call)
	}

	f.mu.Lock()
	f.ctxErr = append(f.ctxErr, ctx.Err())
	f.mu.Unlock()
	return f.err
}

func (f *fakePumper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.forced)
}

var errBoom = errors.New("boom")
