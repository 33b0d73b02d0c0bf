package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch_HitWithinTTL(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "payload", nil
	}

	v, err := GetOrFetch(context.Background(), c, "ref:buses", time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)

	v, err = GetOrFetch(context.Background(), c, "ref:buses", time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
	assert.Equal(t, 1, calls)

	now = now.Add(1100 * time.Millisecond)

	_, err = GetOrFetch(context.Background(), c, "ref:buses", time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_TypeMismatchFailsSoft(t *testing.T) {
	c := New()

	_, err := GetOrFetch(context.Background(), c, "ref:menu", time.Minute, func(ctx context.Context) (string, error) {
		return "payload", nil
	})
	require.NoError(t, err)

	// Reading the same key at a different type must return an error, not
	// panic on the assertion.
	var v int
	require.NotPanics(t, func() {
		v, err = GetOrFetch(context.Background(), c, "ref:menu", time.Minute, func(ctx context.Context) (int, error) {
			return 42, nil
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ref:menu")
	assert.Zero(t, v)
}

func TestGetOrFetch_FetchErrorLeavesCacheUnmodified(t *testing.T) {
	c := New()

	fetchErr := errors.New("backend down")
	_, err := GetOrFetch(context.Background(), c, "ref:cities", time.Minute, func(ctx context.Context) ([]string, error) {
		return nil, fetchErr
	})
	require.ErrorIs(t, err, fetchErr)

	// No negative caching: the next call fetches again.
	v, err := GetOrFetch(context.Background(), c, "ref:cities", time.Minute, func(ctx context.Context) ([]string, error) {
		return []string{"Jakarta"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jakarta"}, v)
}

func TestGetOrFetch_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := New()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})

	fetch := func(ctx context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrFetch(context.Background(), c, "ref:buses", time.Minute, fetch)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}

	// Give the goroutines time to pile up on the singleflight group.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestClearUserScoped_KeepsReferenceData(t *testing.T) {
	c := New()

	_, err := GetOrFetch(context.Background(), c, "ref:buses", time.Minute, func(ctx context.Context) (string, error) {
		return "buses", nil
	})
	require.NoError(t, err)
	_, err = GetOrFetch(context.Background(), c, UserScopedPrefix+"tickets:7", time.Minute, func(ctx context.Context) (string, error) {
		return "tickets", nil
	})
	require.NoError(t, err)

	c.ClearUserScoped()

	refCalls, userCalls := 0, 0
	_, err = GetOrFetch(context.Background(), c, "ref:buses", time.Minute, func(ctx context.Context) (string, error) {
		refCalls++
		return "buses", nil
	})
	require.NoError(t, err)
	_, err = GetOrFetch(context.Background(), c, UserScopedPrefix+"tickets:7", time.Minute, func(ctx context.Context) (string, error) {
		userCalls++
		return "tickets", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, refCalls, "reference data should survive teardown")
	assert.Equal(t, 1, userCalls, "user-scoped data should be refetched after teardown")
}

func TestInvalidate(t *testing.T) {
	c := New()

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, err := GetOrFetch(context.Background(), c, "ref:buses", time.Hour, fetch)
	require.NoError(t, err)

	c.Invalidate("ref:buses")

	_, err = GetOrFetch(context.Background(), c, "ref:buses", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
