package records

import (
	"context"
	"sync"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// fakeStore is an in-memory Store. Func fields override behaviour per test.
type fakeStore struct {
	mu      sync.Mutex
	records map[model.Kind][]*model.Record
	owner   string
	nextID  int
	writes  int

	// ignoreScope makes List return every row, like a server that drops the
	// onlyMine query.
	ignoreScope bool

	createFn func(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error)
	deleteFn func(ctx context.Context, kind model.Kind, id string) error
}

func newFakeStore(owner string) *fakeStore {
	return &fakeStore{records: make(map[model.Kind][]*model.Record), owner: owner}
}

func (f *fakeStore) seed(kind model.Kind, recs ...*model.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[kind] = append(f.records[kind], recs...)
}

func (f *fakeStore) List(_ context.Context, kind model.Kind, onlyMine bool) ([]*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Record
	for _, r := range f.records[kind] {
		if onlyMine && !f.ignoreScope && r.OwnerID != f.owner {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error) {
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, kind, fields)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := &model.Record{ID: "rec-" + string(rune('0'+f.nextID)), OwnerID: f.owner, Fields: fields}
	f.records[kind] = append(f.records[kind], rec)
	return rec.Clone(), nil
}

func (f *fakeStore) Update(_ context.Context, kind model.Kind, rec *model.Record) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for i, r := range f.records[kind] {
		if r.ID == rec.ID {
			f.records[kind][i] = rec.Clone()
			return rec.Clone(), nil
		}
	}
	return nil, errNotFound
}

func (f *fakeStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, kind, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[kind]
	for i, r := range recs {
		if r.ID == id {
			f.records[kind] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type constError string

func (e constError) Error() string { return string(e) }

const errNotFound = constError("not found")
