package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
)

// Досрочное обновление: access-токен на грани истечения обновляется
// до отправки запроса, сам запрос уходит уже с новой парой.
func TestProactiveRenewal(t *testing.T) {
	t.Parallel()

	soon := signedToken(t, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Second)),
	})

	var refreshCalls int32
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/account/me/", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, models.User{ID: "1"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(t, w, http.StatusOK, models.RefreshResponse{Access: "A2", Refresh: "R2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess := loggedIn(t, soon, "R1")
	c := New(srv.URL, sess, WithProactiveRenewal(30*time.Second))

	_, err := c.Me(context.Background())
	require.NoError(t, err)

	require.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	require.Equal(t, "Bearer A2", gotAuth)
	require.Equal(t, "R2", sess.RefreshToken())
}

// Токен ещё жив с запасом — досрочного обновления нет.
func TestProactiveRenewal_NotNeeded(t *testing.T) {
	t.Parallel()

	fresh := signedToken(t, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
	})

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/account/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.User{ID: "1"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, loggedIn(t, fresh, "R1"), WithProactiveRenewal(30*time.Second))

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, atomic.LoadInt32(&refreshCalls))
}

// Сбой досрочного обновления не фатален: запрос уходит со старым
// токеном, и если сервер его ещё принимает — всё работает.
func TestProactiveRenewal_FailureIsSoft(t *testing.T) {
	t.Parallel()

	soon := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Second)),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/account/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.User{ID: "1"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess := loggedIn(t, soon, "R1")
	c := New(srv.URL, sess, WithProactiveRenewal(30*time.Second))

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated(), "soft failure must not log the user out")
}
