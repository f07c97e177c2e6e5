package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconciler turns raw records R that reference Ref by id into views V.
//
// A pass first fetches the whole Ref collection once to build an index, then
// resolves every record concurrently with Resolve. The output has the same
// length and order as the input. A pass is detached from the caller's
// cancellation once started; timeouts belong to the HTTP client.
type Reconciler[R, Ref, V any] struct {
	// Entity names the referenced type in logs and metrics.
	Entity string

	FetchAll   func(ctx context.Context) ([]Ref, error)
	FetchByID  func(ctx context.Context, id int64) (Ref, error)
	RefID      func(Ref) int64
	ForeignKey func(R) int64

	// Placeholder builds the stand-in for an unresolved reference of raw.
	Placeholder func(raw R) Ref
	Build       func(raw R, ref Ref) V

	// Validate rejects malformed records. A rejected record is kept, but its
	// reference is replaced by the placeholder without any fetch.
	Validate func(raw R) error

	// Limit caps concurrent resolutions; 0 means unbounded.
	Limit    int
	Log      *zap.Logger
	Observer Observer
}

func (r Reconciler[R, Ref, V]) Reconcile(ctx context.Context, raw []R) []V {
	out := make([]V, len(raw))
	if len(raw) == 0 {
		return out
	}

	ctx = context.WithoutCancel(ctx)
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	observer := r.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	index := r.buildIndex(ctx, log)

	g := new(errgroup.Group)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}
	for i := range raw {
		g.Go(func() error {
			out[i] = r.resolveOne(ctx, log, observer, index, raw[i])
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r Reconciler[R, Ref, V]) buildIndex(ctx context.Context, log *zap.Logger) map[int64]Ref {
	if r.FetchAll == nil {
		return map[int64]Ref{}
	}
	items, err := r.FetchAll(ctx)
	if err != nil {
		log.Warn("reference collection unavailable, resolving individually",
			zap.String("entity", r.Entity),
			zap.Error(err),
		)
		return map[int64]Ref{}
	}
	index := make(map[int64]Ref, len(items))
	for _, item := range items {
		index[r.RefID(item)] = item
	}
	return index
}

func (r Reconciler[R, Ref, V]) resolveOne(ctx context.Context, log *zap.Logger, observer Observer, index map[int64]Ref, raw R) V {
	id := r.ForeignKey(raw)

	if r.Validate != nil {
		if err := r.Validate(raw); err != nil {
			log.Warn("malformed record, using placeholder reference",
				zap.String("entity", r.Entity),
				zap.Int64("reference_id", id),
				zap.Error(err),
			)
			observer.ObserveMalformed(ctx, r.Entity, err.Error())
			observer.ObserveResolution(ctx, r.Entity, SourcePlaceholder)
			return r.Build(raw, r.Placeholder(raw))
		}
	}

	outcome := Resolve(ctx, id, index, r.FetchByID, func() Ref { return r.Placeholder(raw) })
	if outcome.Source == SourcePlaceholder {
		log.Warn("reference unresolved, using placeholder",
			zap.String("entity", r.Entity),
			zap.Int64("reference_id", id),
			zap.Error(outcome.Err),
		)
	}
	observer.ObserveResolution(ctx, r.Entity, outcome.Source)
	return r.Build(raw, outcome.Value)
}
