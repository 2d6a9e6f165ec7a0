package dictionary

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingLoader counts fetches and holds each one until release is closed.
type blockingLoader struct {
	fetches atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingLoader() *blockingLoader {
	return &blockingLoader{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingLoader) Load(ctx context.Context) (*models.Dictionary, error) {
	b.fetches.Add(1)
	b.started <- struct{}{}
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	return Parse([]byte(sampleDocument), "blocking")
}

func TestCoalescingSharesInFlightFetch(t *testing.T) {
	base := newBlockingLoader()
	metrics := observability.NewMetrics()
	loader := NewCoalescing(base, metrics)

	const callers = 8
	results := make([]*models.Dictionary, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = loader.Load(context.Background())
	}()
	<-base.started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loader.Load(context.Background())
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(base.release)
	wg.Wait()

	assert.Equal(t, int32(1), base.fetches.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "Deployment A", results[i].Name)
	}

	// Each caller owns its copy.
	results[0].Measurements[0].Values[0]["name"] = "mutated"
	assert.Equal(t, "Value", results[1].Measurements[0].Values[0]["name"])
}

func TestCoalescingDoesNotMemoize(t *testing.T) {
	base := newBlockingLoader()
	close(base.release)
	loader := NewCoalescing(base, nil)

	for i := 0; i < 3; i++ {
		_, err := loader.Load(context.Background())
		require.NoError(t, err)
		<-base.started
	}
	assert.Equal(t, int32(3), base.fetches.Load())
}

func TestCoalescingPropagatesErrors(t *testing.T) {
	base := newBlockingLoader()
	base.err = &models.FetchError{Source: "x", StatusCode: 500}
	close(base.release)

	_, err := NewCoalescing(base, nil).Load(context.Background())

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 500, fetchErr.StatusCode)
}

func TestCoalescingCallerCancellation(t *testing.T) {
	base := newBlockingLoader()
	defer close(base.release)
	loader := NewCoalescing(base, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := loader.Load(ctx)
		done <- err
	}()
	<-base.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Load did not return after cancellation")
	}
}
