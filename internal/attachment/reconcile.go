package attachment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// ListingStore is an ObjectStore that can enumerate keys.
type ListingStore interface {
	ObjectStore
	List(ctx context.Context, prefix string) ([]model.Object, error)
}

// LinkSource returns every fileLink currently stored on a record.
type LinkSource interface {
	FileLinks(ctx context.Context) ([]string, error)
}

// Reconciler removes attachment objects no record links to. Objects younger
// than the grace period are kept so in-flight uploads are not raced.
type Reconciler struct {
	store  ListingStore
	source LinkSource
	links  Linker
	grace  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewReconciler wires a Reconciler.
func NewReconciler(store ListingStore, source LinkSource, links Linker, grace time.Duration, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		source: source,
		links:  links,
		grace:  grace,
		now:    time.Now,
		logger: logger.Named("reconcile"),
	}
}

// Sweep lists objects and links concurrently, then removes unreferenced
// objects past the grace period. It returns how many were removed.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	var (
		objects []model.Object
		links   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		objects, err = r.store.List(gctx, KeyPrefix)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		links, err = r.source.FileLinks(gctx)
		if err != nil {
			return fmt.Errorf("list file links: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(links))
	for _, link := range links {
		key, err := r.links.Key(link)
		if err != nil {
			continue
		}
		referenced[key] = struct{}{}
	}

	cutoff := r.now().Add(-r.grace)
	removed := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := r.store.Remove(ctx, obj.Key); err != nil {
			r.logger.Warn("remove orphan", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		objectsPurged.WithLabelValues("orphaned").Inc()
		removed++
	}
	r.logger.Info("sweep finished",
		zap.Int("objects", len(objects)),
		zap.Int("referenced", len(referenced)),
		zap.Int("removed", removed))
	return removed, nil
}
