package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("hit never calls the producer", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		svc.Set(ctx, "unread:5", 3, time.Minute)

		got, err := GetOrCompute(ctx, svc, "unread:5", time.Minute, func(context.Context) (int, error) {
			t.Fatal("producer called on hit")
			return 0, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("miss computes and caches", func(t *testing.T) {
		svc, f, _ := newTestService(t)
		var calls int
		produce := func(context.Context) (int, error) {
			calls++
			return 7, nil
		}

		for i := 0; i < 3; i++ {
			got, err := GetOrCompute(ctx, svc, "unread:5", 60*time.Second, produce)
			require.NoError(t, err)
			assert.Equal(t, 7, got)
		}
		assert.Equal(t, 1, calls)

		f.advance(61 * time.Second)
		_, _ = GetOrCompute(ctx, svc, "unread:5", 60*time.Second, produce)
		assert.Equal(t, 2, calls, "expired entry recomputes")
	})

	t.Run("producer error is returned and not cached", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		boom := errors.New("db down")

		_, err := GetOrCompute(ctx, svc, "profile:9", time.Minute, func(context.Context) (*profile, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, svc.Exists(ctx, "profile:9"))
	})

	t.Run("nil result is not cached", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		got, err := GetOrCompute(ctx, svc, "profile:9", time.Minute, func(context.Context) (*profile, error) {
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, svc.Exists(ctx, "profile:9"))
	})

	t.Run("empty slices are cached", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := GetOrCompute(ctx, svc, "partners:1", time.Minute, func(context.Context) ([]profile, error) {
			return []profile{}, nil
		})
		require.NoError(t, err)
		assert.True(t, svc.Exists(ctx, "partners:1"))
	})

	t.Run("unavailable cache calls the producer every time", func(t *testing.T) {
		svc := NewService(&brokenStore{}, DefaultConfig(), nil)
		var calls int
		for i := 0; i < 3; i++ {
			got, err := GetOrCompute(ctx, svc, "unread:1", time.Minute, func(context.Context) (int, error) {
				calls++
				return 4, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 4, got)
		}
		assert.Equal(t, 3, calls)
	})
}

func TestGetOrCompute_ConcurrentColdKey(t *testing.T) {
	svc, _, _ := newTestService(t)

	var calls atomic.Int32
	produce := func(context.Context) (int, error) {
		n := calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return int(n), nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = GetOrCompute(context.Background(), svc, "k", time.Minute, produce)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	var stored int
	require.True(t, svc.Get(context.Background(), "k", &stored))
	assert.Contains(t, []int{1, 2}, stored)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestGetOrCompute_Singleflight(t *testing.T) {
	f, _ := newRedisFixture(t)
	cfg := DefaultConfig()
	cfg.Singleflight = true
	svc := NewService(f.store, cfg, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	produce := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 11, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = GetOrCompute(context.Background(), svc, "recent:1:10", time.Minute, produce)
		}(i)
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 11, r)
	}
}

type lister interface{ List() []int }

func TestGetOrCompute_SingleflightNilInterface(t *testing.T) {
	f, _ := newRedisFixture(t)
	cfg := DefaultConfig()
	cfg.Singleflight = true
	svc := NewService(f.store, cfg, nil)

	got, err := GetOrCompute(context.Background(), svc, "recent:1:10", time.Minute, func(context.Context) (lister, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, svc.Exists(context.Background(), "recent:1:10"))
}

func TestCachedDecorators(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var calls int
	lookup := Cached1(svc, NSProfile, time.Minute, func(_ context.Context, id int64) (profile, error) {
		calls++
		return profile{ID: id, Username: "u"}, nil
	})

	p, err := lookup(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	_, _ = lookup(ctx, 5)
	_, _ = lookup(ctx, 6)
	assert.Equal(t, 2, calls)
	assert.True(t, svc.Exists(ctx, ProfileKey(5)))

	count := Cached2(svc, NSRecent, time.Minute, func(_ context.Context, id int64, limit int) ([]int64, error) {
		return []int64{id, int64(limit)}, nil
	})
	_, err = count(ctx, 2, 10)
	require.NoError(t, err)
	assert.True(t, svc.Exists(ctx, RecentKey(2, 10)))

	online := Cached(svc, NSOnlineUsers, time.Minute, func(context.Context) ([]int64, error) {
		return []int64{1, 2}, nil
	})
	ids, err := online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.True(t, svc.Exists(ctx, OnlineUsersKey()))
}
