package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"djajbladi-console/internal/event"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/tokenstore"
)

type Status string

const (
	StatusAuthorized      Status = "authorized"
	StatusUnauthenticated Status = "unauthenticated"
	StatusExpired         Status = "expired"
	StatusUnauthorized    Status = "unauthorized"
)

// State is one observation of a watched session.
type State struct {
	Status Status             `json:"status"`
	User   *model.SessionUser `json:"user,omitempty"`
}

// Terminal reports whether the watcher stops after emitting this state.
func (s State) Terminal() bool {
	return s.Status != StatusAuthorized
}

// Watcher re-validates a session on a fixed tick so an in-session expiry is
// noticed without user action, the way the console UI re-checks a guarded
// route. An extra advisory check fires shortly before the token's expiry;
// it only re-derives state from the store, it never calls the refresh
// endpoint itself.
type Watcher struct {
	resolver    *Resolver
	store       *tokenstore.Store
	bus         event.Bus
	interval    time.Duration
	refreshLead time.Duration
}

func NewWatcher(resolver *Resolver, store *tokenstore.Store, bus event.Bus, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Watcher{
		resolver:    resolver,
		store:       store,
		bus:         bus,
		interval:    interval,
		refreshLead: time.Minute,
	}
}

// Watch streams session states for sid until the context is cancelled or a
// terminal state is reached. When allowedRoles is non-empty, a session whose
// role falls outside the set is reported as unauthorized. On expiry the
// stored tokens are cleared before the state is emitted.
func (w *Watcher) Watch(ctx context.Context, sid string, allowedRoles ...string) <-chan State {
	states := make(chan State, 1)

	go func() {
		defer close(states)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		advisory := time.NewTimer(w.advisoryDelay(ctx, sid))
		defer advisory.Stop()

		var lastToken string
		var emitted bool

		for {
			state, currentToken := w.evaluate(ctx, sid, allowedRoles)

			if !emitted || state.Terminal() || currentToken != lastToken {
				select {
				case states <- state:
				case <-ctx.Done():
					return
				}
				emitted = true
			}

			if state.Terminal() {
				return
			}

			// Token changed (fresh login, refresh): reschedule the advisory
			// check against the new expiry.
			if currentToken != lastToken {
				lastToken = currentToken
				if !advisory.Stop() {
					select {
					case <-advisory.C:
					default:
					}
				}
				advisory.Reset(w.advisoryDelay(ctx, sid))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-advisory.C:
			}
		}
	}()

	return states
}

func (w *Watcher) evaluate(ctx context.Context, sid string, allowedRoles []string) (State, string) {
	raw, err := w.store.AccessToken(ctx, sid)
	if err != nil || raw == "" {
		return State{Status: StatusUnauthenticated}, ""
	}

	user, err := w.resolver.CurrentUser(ctx, sid)
	if err != nil || user == nil || w.resolver.IsExpired(raw) {
		// Expired or undecodable: clear both tiers so the stale token cannot
		// be replayed, then report the terminal state.
		_ = w.store.Clear(ctx, sid)
		w.publish(event.TypeSessionExpired, sid, user)
		return State{Status: StatusExpired}, ""
	}

	if len(allowedRoles) > 0 && !roleAllowed(user.Role, allowedRoles) {
		w.publish(event.TypeSessionUnauthorized, sid, user)
		return State{Status: StatusUnauthorized, User: user}, raw
	}

	return State{Status: StatusAuthorized, User: user}, raw
}

// advisoryDelay schedules the pre-expiry check at timeUntilExpiry minus the
// refresh lead, floored at zero.
func (w *Watcher) advisoryDelay(ctx context.Context, sid string) time.Duration {
	remaining, ok := w.resolver.TimeUntilExpiry(ctx, sid)
	if !ok {
		return w.interval
	}

	delay := remaining - w.refreshLead
	if delay < 0 {
		delay = 0
	}

	return delay
}

func (w *Watcher) publish(t event.Type, sid string, user *model.SessionUser) {
	if w.bus == nil {
		return
	}

	e := event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sid,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if user != nil {
		e.Email = user.Email
		e.Role = user.Role
	}

	w.bus.Publish(e)
}

func roleAllowed(role string, allowed []string) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
