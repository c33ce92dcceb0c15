package credential

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskhub/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewWithKeyring(keyring.NewArrayKeyring(nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "42", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	session := Session{
		Token: "opaque-token",
		User:  model.User{ID: 42, Email: "a@example.com", FullName: "Ada"},
	}
	require.NoError(t, store.Save(session))

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, session, *loaded)
}

func TestLoadWithoutSavedSessionIsNil(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.Load())
}

func TestClearRemovesSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Session{Token: "tok"}))

	store.Clear()
	assert.Nil(t, store.Load())
}

func TestMalformedEntryIsTreatedAsAbsent(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: tokenKey, Data: []byte("not json")},
		{Key: userKey, Data: []byte("not json")},
	})
	store := NewWithKeyring(ring)

	assert.Nil(t, store.Load())
}

func TestPartiallyStoredSessionIsDiscarded(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Session{Token: "tok", User: model.User{ID: 1}}))

	// Simulate a user entry lost from the keyring.
	require.NoError(t, store.ring.Remove(userKey))

	assert.Nil(t, store.Load())

	// The dangling token entry is cleared along the way.
	_, err := store.ring.Get(tokenKey)
	assert.Error(t, err)
}

func TestStaleEnvelopeExpires(t *testing.T) {
	store := newTestStore(t)

	saved := time.Now()
	store.now = func() time.Time { return saved }
	require.NoError(t, store.Save(Session{Token: "tok", User: model.User{ID: 1}}))

	store.now = func() time.Time { return saved.Add(maxAge + time.Minute) }
	assert.Nil(t, store.Load())

	store.now = func() time.Time { return saved.Add(maxAge - time.Minute) }
	require.NoError(t, store.Save(Session{Token: "tok", User: model.User{ID: 1}}))
	assert.NotNil(t, store.Load())
}

func TestExpiredJWTIsDiscarded(t *testing.T) {
	store := newTestStore(t)

	expired := Session{Token: signedToken(t, time.Now().Add(-time.Hour))}
	require.NoError(t, store.Save(expired))
	assert.Nil(t, store.Load())

	valid := Session{Token: signedToken(t, time.Now().Add(time.Hour))}
	require.NoError(t, store.Save(valid))
	assert.NotNil(t, store.Load())
}

func TestOpaqueTokenNeverExpiresLocally(t *testing.T) {
	assert.False(t, tokenExpired("not-a-jwt", time.Now()))
}
