package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, func() string { return "test-token" }, time.Second)
}

func TestGetAttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	var result map[string]bool
	require.NoError(t, client.Get(context.Background(), "/ping", nil, &result))

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.True(t, result["ok"])
}

func TestGetOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, func() string { return "" }, time.Second)
	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))

	assert.Empty(t, gotAuth)
}

func TestGetEncodesQueryParams(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Encode()
		w.WriteHeader(http.StatusNoContent)
	})

	params := map[string]string{"search": "buy milk", "page": "2"}
	require.NoError(t, client.Get(context.Background(), "/tasks", params, nil))

	assert.Equal(t, "page=2&search=buy+milk", gotQuery)
}

func TestErrorTranslationByStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusConflict, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			err := client.Get(context.Background(), "/x", nil, nil)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestErrorUsesBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"title must not be empty","error":"Bad Request"}`))
	})

	err := client.Post(context.Background(), "/tasks", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "title must not be empty", apiErr.Message)
	assert.Equal(t, "Bad Request", apiErr.ServerError)
}

func TestErrorFallsBackToGenericMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	})

	err := client.Get(context.Background(), "/x", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, genericMessage, apiErr.Message)
}

func TestNetworkFailureHasNoStatusCode(t *testing.T) {
	// Point at a closed server so the dial fails.
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL, nil, time.Second)
	err := client.Get(context.Background(), "/x", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, genericMessage, apiErr.Message)
}

func TestAuthFailureHookFiresOnlyForAuthErrors(t *testing.T) {
	status := http.StatusUnauthorized
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	var fired int
	client.OnAuthFailure(func() { fired++ })

	require.Error(t, client.Get(context.Background(), "/x", nil, nil))
	assert.Equal(t, 1, fired)

	status = http.StatusNotFound
	require.Error(t, client.Get(context.Background(), "/x", nil, nil))
	assert.Equal(t, 1, fired)
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&Error{Kind: ErrAuth}))
	assert.False(t, IsAuthError(&Error{Kind: ErrServer}))
	assert.False(t, IsAuthError(context.Canceled))
}
