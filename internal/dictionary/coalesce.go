package dictionary

import (
	"context"

	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
	"golang.org/x/sync/singleflight"
)

// Coalescing collapses concurrent loads into a single fetch of the wrapped
// Loader. Only in-flight calls are shared; the next Load after a fetch
// completes fetches again. Each caller receives its own deep copy, so
// results are indistinguishable from uncoalesced loads.
type Coalescing struct {
	next    Loader
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCoalescing wraps next. metrics may be nil.
func NewCoalescing(next Loader, metrics *observability.Metrics) *Coalescing {
	return &Coalescing{next: next, metrics: metrics}
}

// Load joins an in-flight fetch or starts one.
func (c *Coalescing) Load(ctx context.Context) (*models.Dictionary, error) {
	// The shared fetch must not be cancelled by whichever caller happened to
	// start it; each caller still stops waiting when its own ctx ends.
	ch := c.group.DoChan("dictionary", func() (interface{}, error) {
		return c.next.Load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, &models.FetchError{Source: "coalesced load", Err: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			c.metrics.IncCoalesced()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Dictionary).Clone(), nil
	}
}
