package app

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/credential"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/mutation"
	"github.com/nhle/taskhub/internal/query"
	"github.com/nhle/taskhub/internal/session"
	appsync "github.com/nhle/taskhub/internal/sync"
)

func newTestApp(t *testing.T) (*session.Controller, Model) {
	t.Helper()

	creds := credential.NewWithKeyring(keyring.NewArrayKeyring(nil))
	c := cache.New()
	ctrl := session.NewController(creds, c)

	// No requests are issued in these tests, so the base URL is inert.
	client := api.NewClient("http://127.0.0.1:0", ctrl.Token, time.Second)
	ctrl.Bind(client)

	q := query.New(client, c)
	muts := mutation.New(client, c, ctrl)
	poller := appsync.New(q, time.Hour)
	t.Cleanup(poller.Stop)

	return ctrl, New(ctrl, q, muts, poller, 10)
}

func TestSessionChangesCoalesceToLatestState(t *testing.T) {
	ctrl, m := newTestApp(t)

	// A burst of transitions with nobody draining the channel. The final
	// state is anonymous and must not be the one that gets lost.
	require.NoError(t, ctrl.Establish(credential.Session{Token: "a", User: model.User{ID: 1}}))
	ctrl.Clear()
	require.NoError(t, ctrl.Establish(credential.Session{Token: "b", User: model.User{ID: 1}}))
	ctrl.Clear()

	msg := m.waitForSessionChange()()
	changed, ok := msg.(sessionChangedMsg)
	require.True(t, ok)
	assert.Equal(t, session.StateAnonymous, changed.state)
}

func TestSessionChangeDeliversAuthenticatedEnd(t *testing.T) {
	ctrl, m := newTestApp(t)

	ctrl.Clear()
	require.NoError(t, ctrl.Establish(credential.Session{Token: "a", User: model.User{ID: 1}}))

	msg := m.waitForSessionChange()()
	changed, ok := msg.(sessionChangedMsg)
	require.True(t, ok)
	assert.Equal(t, session.StateAuthenticated, changed.state)
}
