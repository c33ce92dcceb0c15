package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/credential"
	"github.com/nhle/taskhub/internal/model"
)

type fixture struct {
	ctrl  *Controller
	creds *credential.Store
	cache *cache.Cache
}

// newFixture wires a controller against a backend handler the same way
// main does: controller first, then a client using its token func.
func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := credential.NewWithKeyring(keyring.NewArrayKeyring(nil))
	c := cache.New()
	ctrl := NewController(creds, c)

	client := api.NewClient(server.URL, ctrl.Token, time.Second)
	ctrl.Bind(client)

	return &fixture{ctrl: ctrl, creds: creds, cache: c}
}

func meHandler(t *testing.T, wantToken string, user model.User) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+wantToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			t.Errorf("encoding user: %v", err)
		}
	}
}

func TestRehydrateWithoutStoredSessionIsAnonymous(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no backend call expected without a stored session")
	})

	require.NoError(t, f.ctrl.Rehydrate(context.Background()))

	assert.Equal(t, StateAnonymous, f.ctrl.State())
	assert.Empty(t, f.ctrl.Token())
	assert.Nil(t, f.ctrl.CurrentUser())
}

func TestRehydrateValidatesStoredSession(t *testing.T) {
	serverUser := model.User{ID: 42, Email: "a@example.com", FullName: "Server Fresh"}
	f := newFixture(t, meHandler(t, "stored-token", serverUser))

	// The stored snapshot is older than what the backend now has.
	require.NoError(t, f.creds.Save(credential.Session{
		Token: "stored-token",
		User:  model.User{ID: 42, Email: "a@example.com", FullName: "Stale Name"},
	}))

	require.NoError(t, f.ctrl.Rehydrate(context.Background()))

	assert.Equal(t, StateAuthenticated, f.ctrl.State())
	assert.Equal(t, "stored-token", f.ctrl.Token())

	user := f.ctrl.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Server Fresh", user.FullName)
}

func TestRehydrateRejectedSessionClearsCredential(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, f.creds.Save(credential.Session{Token: "revoked-token"}))

	err := f.ctrl.Rehydrate(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))

	assert.Equal(t, StateAnonymous, f.ctrl.State())
	assert.Empty(t, f.ctrl.Token())
	assert.Nil(t, f.creds.Load(), "rejected credential must be removed")
}

func TestEstablishPersistsAndResetsCache(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	f.cache.Set(cache.NewKey(cache.ResourceTasks, nil), "anonymous data")

	session := credential.Session{
		Token: "fresh-token",
		User:  model.User{ID: 7, Email: "b@example.com"},
	}
	require.NoError(t, f.ctrl.Establish(session))

	assert.Equal(t, StateAuthenticated, f.ctrl.State())
	assert.Equal(t, "fresh-token", f.ctrl.Token())
	assert.Zero(t, f.cache.Len())

	stored := f.creds.Load()
	require.NotNil(t, stored)
	assert.Equal(t, session, *stored)
}

func TestClearDropsEverything(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, f.ctrl.Establish(credential.Session{Token: "tok", User: model.User{ID: 1}}))
	f.cache.Set(cache.NewKey(cache.ResourceMyTasks, nil), "private data")

	f.ctrl.Clear()

	assert.Equal(t, StateAnonymous, f.ctrl.State())
	assert.Empty(t, f.ctrl.Token())
	assert.Nil(t, f.ctrl.CurrentUser())
	assert.Nil(t, f.creds.Load())
	assert.Zero(t, f.cache.Len())
}

func TestObserversSeeEveryTransition(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var seen []State
	f.ctrl.Subscribe(func(s State) { seen = append(seen, s) })

	require.NoError(t, f.ctrl.Establish(credential.Session{Token: "tok"}))
	f.ctrl.Clear()

	assert.Equal(t, []State{StateAuthenticated, StateAnonymous}, seen)
}

func TestAuthFailureMidSessionExpiresIt(t *testing.T) {
	status := http.StatusOK
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := credential.NewWithKeyring(keyring.NewArrayKeyring(nil))
	c := cache.New()
	ctrl := NewController(creds, c)
	client := api.NewClient(server.URL, ctrl.Token, time.Second)
	ctrl.Bind(client)

	require.NoError(t, ctrl.Establish(credential.Session{Token: "tok", User: model.User{ID: 1}}))

	// The token is revoked server-side; the next request comes back 401.
	status = http.StatusUnauthorized
	err := client.Get(context.Background(), "/tasks", nil, nil)
	require.Error(t, err)

	assert.Equal(t, StateAnonymous, ctrl.State())
	assert.Nil(t, creds.Load())
}

func TestAuthFailureWhileAnonymousIsNotATransition(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, f.ctrl.Rehydrate(context.Background()))
	require.Equal(t, StateAnonymous, f.ctrl.State())

	var transitions int
	f.ctrl.Subscribe(func(State) { transitions++ })

	// A rejected login attempt reports an auth error but must not
	// re-trigger the anonymous transition.
	f.ctrl.expire()

	assert.Zero(t, transitions)
	assert.Equal(t, StateAnonymous, f.ctrl.State())
}

func TestSetUserKeepsStoredCredentialInSync(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, f.ctrl.Establish(credential.Session{
		Token: "tok",
		User:  model.User{ID: 1, FullName: "Old Name"},
	}))

	f.ctrl.SetUser(model.User{ID: 1, FullName: "New Name"})

	user := f.ctrl.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "New Name", user.FullName)

	stored := f.creds.Load()
	require.NotNil(t, stored)
	assert.Equal(t, "New Name", stored.User.FullName)
}
