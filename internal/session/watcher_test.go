package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djajbladi-console/internal/event"
	"djajbladi-console/internal/model"
)

func collectUntilClosed(t *testing.T, states <-chan State) []State {
	t.Helper()

	var seen []State
	timeout := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-states:
			if !ok {
				return seen
			}
			seen = append(seen, state)
		case <-timeout:
			t.Fatal("watcher did not terminate")
		}
	}
}

func TestWatcher_NoToken(t *testing.T) {
	resolver, store := newTestResolver(t)
	watcher := NewWatcher(resolver, store, event.NewBus(), 10*time.Millisecond)

	states := collectUntilClosed(t, watcher.Watch(context.Background(), "sid"))
	require.Len(t, states, 1)
	assert.Equal(t, StatusUnauthenticated, states[0].Status)
}

func TestWatcher_ExpiredTokenClearsStore(t *testing.T) {
	ctx := context.Background()
	resolver, store := newTestResolver(t)

	raw := mintToken(t, "a@b.com", model.RoleAdmin, testNow.Add(-time.Minute))
	require.NoError(t, store.Store(ctx, "sid", raw, "refresh", true))

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	watcher := NewWatcher(resolver, store, bus, 10*time.Millisecond)
	states := collectUntilClosed(t, watcher.Watch(ctx, "sid"))

	require.Len(t, states, 1)
	assert.Equal(t, StatusExpired, states[0].Status)

	access, err := store.AccessToken(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, access)

	select {
	case e := <-events:
		assert.Equal(t, event.TypeSessionExpired, e.Type)
		assert.Equal(t, "sid", e.SessionID)
	case <-time.After(time.Second):
		t.Fatal("expected a session.expired event")
	}
}

func TestWatcher_RoleOutsideAllowedSet(t *testing.T) {
	ctx := context.Background()
	resolver, store := newTestResolver(t)

	raw := mintToken(t, "c@b.com", model.RoleClient, testNow.Add(time.Hour))
	require.NoError(t, store.Store(ctx, "sid", raw, "refresh", false))

	watcher := NewWatcher(resolver, store, event.NewBus(), 10*time.Millisecond)
	states := collectUntilClosed(t, watcher.Watch(ctx, "sid", model.RoleAdmin))

	require.Len(t, states, 1)
	assert.Equal(t, StatusUnauthorized, states[0].Status)
	require.NotNil(t, states[0].User)
	assert.Equal(t, model.RoleClient, states[0].User.Role)
}

func TestWatcher_DetectsMidSessionLogout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolver, store := newTestResolver(t)
	raw := mintToken(t, "a@b.com", model.RoleAdmin, testNow.Add(time.Hour))
	require.NoError(t, store.Store(ctx, "sid", raw, "refresh", false))

	watcher := NewWatcher(resolver, store, event.NewBus(), 10*time.Millisecond)
	states := watcher.Watch(ctx, "sid", model.RoleAdmin)

	select {
	case first := <-states:
		assert.Equal(t, StatusAuthorized, first.Status)
		require.NotNil(t, first.User)
		assert.Equal(t, "a@b.com", first.User.Email)
	case <-time.After(time.Second):
		t.Fatal("expected an initial authorized state")
	}

	// Logout from another tab: the next tick must notice the missing token.
	require.NoError(t, store.Clear(ctx, "sid"))

	select {
	case next := <-states:
		assert.Equal(t, StatusUnauthenticated, next.Status)
	case <-time.After(time.Second):
		t.Fatal("expected the watcher to notice the cleared session")
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	resolver, store := newTestResolver(t)
	raw := mintToken(t, "a@b.com", model.RoleAdmin, testNow.Add(time.Hour))
	require.NoError(t, store.Store(ctx, "sid", raw, "refresh", false))

	watcher := NewWatcher(resolver, store, event.NewBus(), 10*time.Millisecond)
	states := watcher.Watch(ctx, "sid")

	<-states // initial authorized state
	cancel()

	select {
	case _, ok := <-states:
		assert.False(t, ok, "channel should close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("watcher leaked after cancellation")
	}
}
