package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestStore(t *testing.T) Store {
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	st := NewMongoStore(db)
	require.NoError(t, EnsureIndexes(ctx, st))
	return st
}

func TestMongoStore_PutGetDelete(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Get(ctx, "cart:user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Put(ctx, "cart:user-1", []byte(`{"items":[]}`)))

	doc, err := st.Get(ctx, "cart:user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(doc))

	require.NoError(t, st.Delete(ctx, "cart:user-1"))
	_, err = st.Get(ctx, "cart:user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoStore_AlarmLifecycle(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	require.NoError(t, st.SetAlarm(ctx, "expiry7:u1-c1", at))

	got, armed, err := st.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, got.Equal(at), "expected %v, got %v", at, got)

	// alarm slot survives independently of the document
	_, err = st.Get(ctx, "expiry7:u1-c1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.CancelAlarm(ctx, "expiry7:u1-c1"))
	_, armed, err = st.Alarm(ctx, "expiry7:u1-c1")
	require.NoError(t, err)
	assert.False(t, armed)
}

func TestMongoStore_PendingAlarms(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "cart:user-1", []byte(`{}`)))
	require.NoError(t, st.SetAlarm(ctx, "cart:user-1", time.Now().Add(time.Minute)))
	require.NoError(t, st.SetAlarm(ctx, "expiry1:u2-c2", time.Now().Add(2*time.Minute)))
	require.NoError(t, st.Put(ctx, "wishlist:user-3", []byte(`{}`))) // no alarm

	pending, err := st.PendingAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	keys := []string{pending[0].Key, pending[1].Key}
	assert.ElementsMatch(t, []string{"cart:user-1", "expiry1:u2-c2"}, keys)
}
