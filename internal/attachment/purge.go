package attachment

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var objectsPurged = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coedash_attachment_objects_purged_total",
		Help: "Attachment objects removed from storage after they stopped being referenced",
	},
	[]string{"reason"},
)

// Purger removes an object that no record references any more. Purging a
// missing or still linked object succeeds without removing anything.
type Purger interface {
	Purge(ctx context.Context, key string) error
}

// StorePurger removes objects directly. It backs the purge task in the worker
// and serves inline when no queue is configured. References are checked when
// the purge runs, so a queued purge never removes an object that was linked
// again in the meantime.
type StorePurger struct {
	store ObjectStore
	links Linker
	index LinkIndex
}

// NewStorePurger returns a purger over store that keeps objects any record
// in index still links.
func NewStorePurger(store ObjectStore, links Linker, index LinkIndex) *StorePurger {
	return &StorePurger{store: store, links: links, index: index}
}

// Purge removes key if present and unreferenced.
func (p *StorePurger) Purge(ctx context.Context, key string) error {
	ids, err := p.index.LinkedBy(ctx, p.links.Link(key))
	if err != nil {
		return fmt.Errorf("check references of %s: %w", key, err)
	}
	if len(ids) > 0 {
		return nil
	}
	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check %s: %w", key, err)
	}
	if !exists {
		return nil
	}
	if err := p.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	objectsPurged.WithLabelValues("superseded").Inc()
	return nil
}
