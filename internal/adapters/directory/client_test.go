package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
)

func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /internal/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Directory-Secret") != "s3cret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Token != "good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sessionId": "sess-1",
			"userId":    42,
			"expiresAt": time.Now().Add(time.Hour),
		})
	})
	mux.HandleFunc("GET /internal/organisations/10/members/42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"role": "member"})
	})
	mux.HandleFunc("GET /internal/organisations/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func TestClientVerify(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()
	c := NewClient(srv.URL, "s3cret")

	sess, err := c.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, domain.UserID(42), sess.UserID)

	_, err = c.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestClientVerifyRejectsExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sessionId": "sess-2",
			"userId":    42,
			"expiresAt": time.Now().Add(-time.Minute),
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "s3cret").Verify(context.Background(), "good-token")
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestClientMembership(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()
	c := NewClient(srv.URL, "s3cret")

	mem, err := c.Membership(context.Background(), 10, 42)
	require.NoError(t, err)
	require.NotNil(t, mem)
	assert.Equal(t, "member", mem.Role)

	mem, err = c.Membership(context.Background(), 10, 99)
	require.NoError(t, err)
	assert.Nil(t, mem, "non-member resolves to none, not an error")
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "s3cret")

	_, err := c.Membership(context.Background(), 10, 42)
	assert.Error(t, err)
	_, err = c.Verify(context.Background(), "good-token")
	assert.Error(t, err)
}
