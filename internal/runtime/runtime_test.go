package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
	"github.com/Eduardaskuliesa/Alina-workers/pkg/logger"
)

func newStartedRuntime(t *testing.T, st store.Store) *Runtime {
	rt := New(st, logger.NewNop())
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })
	return rt
}

func TestDo_SerializesSameKey(t *testing.T) {
	rt := newStartedRuntime(t, store.NewMemoryStore())

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rt.Do(context.Background(), "cart:user-1", func(context.Context) error {
				cur := inFlight.Add(1)
				if cur > maxInFlight.Load() {
					maxInFlight.Store(cur)
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load(), "operations on one key must not interleave")
}

func TestDo_DifferentKeysRunConcurrently(t *testing.T) {
	rt := newStartedRuntime(t, store.NewMemoryStore())

	release := make(chan struct{})
	entered := make(chan struct{})

	go func() {
		_ = rt.Do(context.Background(), "cart:user-1", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered

	done := make(chan struct{})
	go func() {
		_ = rt.Do(context.Background(), "cart:user-2", func(context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("operation on another key was blocked")
	}
	close(release)
}

func TestSetAlarm_RequiresStart(t *testing.T) {
	rt := New(store.NewMemoryStore(), logger.NewNop())

	err := rt.SetAlarm(context.Background(), "cart:user-1", time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestAlarm_FiresOnceAndClearsSlot(t *testing.T) {
	st := store.NewMemoryStore()
	rt := New(st, logger.NewNop())

	var fired atomic.Int32
	rt.RegisterHandler("cart", func(ctx context.Context, key string) error {
		fired.Add(1)
		return nil
	})
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })

	require.NoError(t, rt.Do(context.Background(), "cart:user-1", func(ctx context.Context) error {
		return rt.SetAlarm(ctx, "cart:user-1", time.Now().Add(20*time.Millisecond))
	}))

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond, "alarm should fire once")

	_, armed, err := st.Alarm(context.Background(), "cart:user-1")
	require.NoError(t, err)
	assert.False(t, armed, "alarm slot must be cleared before the handler runs")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "alarm must not re-fire")
}

func TestSetAlarm_RearmReplacesPrevious(t *testing.T) {
	st := store.NewMemoryStore()
	rt := New(st, logger.NewNop())

	var fired atomic.Int32
	rt.RegisterHandler("cart", func(ctx context.Context, key string) error {
		fired.Add(1)
		return nil
	})
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })

	ctx := context.Background()
	require.NoError(t, rt.SetAlarm(ctx, "cart:user-1", time.Now().Add(time.Hour)))
	require.NoError(t, rt.SetAlarm(ctx, "cart:user-1", time.Now().Add(20*time.Millisecond)))

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "only the replacement alarm may fire")
}

func TestCancelAlarm_PreventsFiring(t *testing.T) {
	st := store.NewMemoryStore()
	rt := New(st, logger.NewNop())

	var fired atomic.Int32
	rt.RegisterHandler("cart", func(ctx context.Context, key string) error {
		fired.Add(1)
		return nil
	})
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })

	ctx := context.Background()
	require.NoError(t, rt.SetAlarm(ctx, "cart:user-1", time.Now().Add(50*time.Millisecond)))
	require.NoError(t, rt.CancelAlarm(ctx, "cart:user-1"))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestStart_RestoresPersistedAlarms(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	// simulate alarms left behind by a previous process
	require.NoError(t, st.SetAlarm(ctx, "cart:user-1", time.Now().Add(-time.Minute))) // overdue
	require.NoError(t, st.SetAlarm(ctx, "expiry7:u2-c2", time.Now().Add(30*time.Millisecond)))

	rt := New(st, logger.NewNop())

	var cartFired, expiryFired atomic.Int32
	rt.RegisterHandler("cart", func(ctx context.Context, key string) error {
		cartFired.Add(1)
		return nil
	})
	rt.RegisterHandler("expiry7", func(ctx context.Context, key string) error {
		expiryFired.Add(1)
		return nil
	})

	require.NoError(t, rt.Start(ctx))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })

	require.Eventually(t, func() bool {
		return cartFired.Load() == 1 && expiryFired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond, "restored alarms should fire")
}

func TestDeliver_UnknownKindIsDropped(t *testing.T) {
	st := store.NewMemoryStore()
	rt := newStartedRuntime(t, st)

	ctx := context.Background()
	require.NoError(t, rt.SetAlarm(ctx, "mystery:key-1", time.Now().Add(10*time.Millisecond)))

	// nothing to assert beyond "does not panic"; give the job time to run
	time.Sleep(100 * time.Millisecond)
}
