package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/session"
)

func TestRedisSessionStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := New(Options{Addr: mr.Addr()})
	defer store.Close()

	ctx := context.Background()

	first := &session.Turn{
		ID:            "turn-1",
		SessionID:     "s1",
		Question:      "Who is the author?",
		Answer:        "Jane Doe.",
		DocumentsUsed: 3,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	second := &session.Turn{
		ID:            "turn-2",
		SessionID:     "s1",
		Question:      "Where did she study?",
		Answer:        "Utrecht.",
		WebSearchUsed: true,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "turn-1", history[0].ID)
	assert.Equal(t, "Jane Doe.", history[0].Answer)
	assert.Equal(t, 3, history[0].DocumentsUsed)
	assert.Equal(t, "turn-2", history[1].ID)
	assert.True(t, history[1].WebSearchUsed)

	require.NoError(t, store.Clear(ctx, "s1"))
	history, err = store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisSessionStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := New(Options{Addr: mr.Addr(), TTL: time.Minute})
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, &session.Turn{ID: "turn-1", SessionID: "s1"}))

	key := store.sessionKey("s1")
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisSessionStoreUnknownSession(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := New(Options{Addr: mr.Addr()})
	defer store.Close()

	history, err := store.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisSessionStoreIsolatesSessions(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := New(Options{Addr: mr.Addr()})
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, &session.Turn{ID: "a", SessionID: "s1"}))
	require.NoError(t, store.Append(ctx, &session.Turn{ID: "b", SessionID: "s2"}))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].ID)
}
