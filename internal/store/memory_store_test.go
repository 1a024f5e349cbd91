package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "cart:user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cart:user-1", []byte(`{"items":[]}`)))

	doc, err := s.Get(ctx, "cart:user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(doc))

	require.NoError(t, s.Delete(ctx, "cart:user-1"))
	_, err = s.Get(ctx, "cart:user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Delete(context.Background(), "cart:user-404"))
}

func TestMemoryStore_AlarmLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, armed, err := s.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.False(t, armed)

	at := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, s.SetAlarm(ctx, "expiry7:u1-c1", at))

	got, armed, err := s.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, got.Equal(at))

	// setting again overwrites the single slot
	later := at.Add(time.Hour)
	require.NoError(t, s.SetAlarm(ctx, "expiry7:u1-c1", later))
	got, armed, err = s.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, got.Equal(later))

	require.NoError(t, s.CancelAlarm(ctx, "expiry7:u1-c1"))
	_, armed, err = s.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.False(t, armed)
}

func TestMemoryStore_AlarmWithoutDocument(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetAlarm(ctx, "cart:user-1", time.Now().Add(time.Minute)))

	// the alarm slot exists even though no document was ever written
	_, err := s.Get(ctx, "cart:user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, armed, err := s.Alarm(ctx, "cart:user-1")
	require.NoError(t, err)
	assert.True(t, armed)
}

func TestMemoryStore_DeleteRemovesAlarm(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cart:user-1", []byte(`{}`)))
	require.NoError(t, s.SetAlarm(ctx, "cart:user-1", time.Now().Add(time.Minute)))
	require.NoError(t, s.Delete(ctx, "cart:user-1"))

	_, armed, err := s.Alarm(ctx, "cart:user-1")
	require.NoError(t, err)
	assert.False(t, armed)
}

func TestMemoryStore_PendingAlarms(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	pending, err := s.PendingAlarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	at1 := time.Now().Add(time.Minute)
	at2 := time.Now().Add(2 * time.Minute)
	require.NoError(t, s.SetAlarm(ctx, "cart:user-1", at1))
	require.NoError(t, s.SetAlarm(ctx, "expiry1:u2-c2", at2))
	require.NoError(t, s.SetAlarm(ctx, "cart:user-3", at1))
	require.NoError(t, s.CancelAlarm(ctx, "cart:user-3"))

	pending, err = s.PendingAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	keys := []string{pending[0].Key, pending[1].Key}
	assert.ElementsMatch(t, []string{"cart:user-1", "expiry1:u2-c2"}, keys)
}
