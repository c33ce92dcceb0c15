package credential

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/taskhub/internal/model"
)

const serviceName = "taskhub"

const (
	tokenKey = "token"
	userKey  = "user"
)

// maxAge is how long a stored session stays usable before it is treated
// as absent, matching the backend's 7-day token lifetime.
const maxAge = 7 * 24 * time.Hour

// Session is the persisted authentication state: the bearer token and a
// denormalized snapshot of the user it belongs to.
type Session struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// envelope wraps a stored value with its save time so expiry can be
// checked without a server round trip.
type envelope struct {
	Value   json.RawMessage `json:"value"`
	SavedAt time.Time       `json:"savedAt"`
}

// Store persists the session in the system keyring, with a file backend
// as the fallback on headless systems.
type Store struct {
	ring keyring.Keyring
	now  func() time.Time
}

// Open returns a Store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskhub/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskhub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewWithKeyring(ring), nil
}

// NewWithKeyring returns a Store backed by the given keyring. Tests use
// this with keyring.NewArrayKeyring.
func NewWithKeyring(ring keyring.Keyring) *Store {
	return &Store{ring: ring, now: time.Now}
}

// Save persists the session's token and user snapshot under separate keys.
func (s *Store) Save(session Session) error {
	if err := s.setEnvelope(tokenKey, session.Token); err != nil {
		return err
	}
	return s.setEnvelope(userKey, session.User)
}

// Load returns the stored session, or nil if none is present. Malformed,
// expired, or partially stored data is discarded and reported as absent;
// Load never fails.
func (s *Store) Load() *Session {
	var token string
	if !s.getEnvelope(tokenKey, &token) || token == "" {
		s.Clear()
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.Clear()
		return nil
	}

	var user model.User
	if !s.getEnvelope(userKey, &user) {
		s.Clear()
		return nil
	}

	return &Session{Token: token, User: user}
}

// Clear removes both credential entries. Missing entries are not an error.
func (s *Store) Clear() {
	_ = s.ring.Remove(tokenKey)
	_ = s.ring.Remove(userKey)
}

// setEnvelope stores a value wrapped with its save time.
func (s *Store) setEnvelope(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding credential %q: %w", key, err)
	}

	data, err := json.Marshal(envelope{Value: raw, SavedAt: s.now()})
	if err != nil {
		return fmt.Errorf("encoding credential envelope %q: %w", key, err)
	}

	if err := s.ring.Set(keyring.Item{Key: key, Data: data}); err != nil {
		return fmt.Errorf("storing credential %q: %w", key, err)
	}
	return nil
}

// getEnvelope loads and unwraps a stored value, reporting false for any
// missing, malformed, or expired entry.
func (s *Store) getEnvelope(key string, out any) bool {
	item, err := s.ring.Get(key)
	if err != nil {
		return false
	}

	var env envelope
	if err := json.Unmarshal(item.Data, &env); err != nil {
		return false
	}

	if env.SavedAt.IsZero() || s.now().Sub(env.SavedAt) > maxAge {
		return false
	}

	return json.Unmarshal(env.Value, out) == nil
}

// tokenExpired inspects the token's exp claim without verifying the
// signature (the backend is the verifier). Opaque non-JWT tokens and
// tokens without an exp claim are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Time.Before(now)
}
