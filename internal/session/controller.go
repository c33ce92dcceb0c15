// Package session owns the authenticated-identity lifecycle: startup
// rehydration from the credential store, login/logout transitions, and
// the routing of authentication failures back to the anonymous state.
// Every transition into authenticated or anonymous resets the resource
// cache, so data from one identity is never readable under another.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/credential"
	"github.com/nhle/taskhub/internal/model"
)

// State is the controller's position in the identity lifecycle.
type State int

const (
	// StateUnknown is the startup state, before rehydration has decided.
	StateUnknown State = iota

	// StateAnonymous means no session is present.
	StateAnonymous

	// StateAuthenticated means a validated session is active.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Observer is notified after every state transition.
type Observer func(State)

// Controller is the session state machine. It is the only writer of the
// credential store besides the mutation layer, which goes through it.
type Controller struct {
	mu        sync.Mutex
	state     State
	token     string
	user      *model.User
	creds     *credential.Store
	cache     *cache.Cache
	client    *api.Client
	observers []Observer
}

// NewController creates a controller in the unknown state.
func NewController(creds *credential.Store, c *cache.Cache) *Controller {
	return &Controller{
		state: StateUnknown,
		creds: creds,
		cache: c,
	}
}

// Bind attaches the API client and routes its authentication failures
// into the anonymous transition. Call once, before any request.
func (c *Controller) Bind(client *api.Client) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	client.OnAuthFailure(c.expire)
}

// Token returns the current bearer token, or "" when no session is
// present. Wired into the API client as its TokenFunc.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the authenticated user's profile, or nil.
func (c *Controller) CurrentUser() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Subscribe registers an observer for state transitions.
func (c *Controller) Subscribe(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// Rehydrate resolves the unknown startup state: a stored session that
// passes a live re-validation against the backend becomes authenticated;
// anything else (no stored session, or a backend rejection) becomes
// anonymous, clearing the stale credential entry.
func (c *Controller) Rehydrate(ctx context.Context) error {
	stored := c.creds.Load()
	if stored == nil {
		c.transition(StateAnonymous, "", nil)
		return nil
	}

	// Make the stored token visible to the client for the validation call.
	c.mu.Lock()
	c.token = stored.Token
	client := c.client
	c.mu.Unlock()

	var user model.User
	if err := client.Get(ctx, "/auth/me", nil, &user); err != nil {
		c.creds.Clear()
		c.transition(StateAnonymous, "", nil)
		return fmt.Errorf("validating stored session: %w", err)
	}

	c.transition(StateAuthenticated, stored.Token, &user)
	return nil
}

// Establish persists a freshly issued session and transitions to
// authenticated. Called by the login and register mutations.
func (c *Controller) Establish(session credential.Session) error {
	if err := c.creds.Save(session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	user := session.User
	c.transition(StateAuthenticated, session.Token, &user)
	return nil
}

// Clear drops the stored session and transitions to anonymous. Called on
// logout and on backend-rejected sessions.
func (c *Controller) Clear() {
	c.creds.Clear()
	c.transition(StateAnonymous, "", nil)
}

// SetUser replaces the user snapshot after a profile update, keeping the
// stored credential copy in sync.
func (c *Controller) SetUser(user model.User) {
	c.mu.Lock()
	token := c.token
	c.user = &user
	c.mu.Unlock()

	if token != "" {
		_ = c.creds.Save(credential.Session{Token: token, User: user})
	}
}

// expire handles an authentication failure reported by the API client.
// A failure while anonymous (e.g. a rejected login attempt) is not a
// transition.
func (c *Controller) expire() {
	c.mu.Lock()
	authenticated := c.state == StateAuthenticated
	c.mu.Unlock()

	if authenticated {
		c.Clear()
	}
}

// transition applies a state change, resets the cache, and notifies
// observers. Observers run outside the lock.
func (c *Controller) transition(state State, token string, user *model.User) {
	c.mu.Lock()
	c.state = state
	c.token = token
	c.user = user
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	// Stale pre-transition data must never leak across identities.
	c.cache.ResetAll()

	for _, obs := range observers {
		obs(state)
	}
}
