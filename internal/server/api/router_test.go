package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	srv     *httptest.Server
	users   *services.UserService
	limiter *ratelimit.Manager
	repos   *repomanager.MemoryRepositoryManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	codec, err := auth.NewTokenCodec([]byte("api-test-secret"))
	require.NoError(t, err)
	hasher := auth.NewArgon2Hasher(auth.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8})
	authn, err := auth.NewAuthenticator(repos.Users(), hasher, codec, 30*time.Minute)
	require.NoError(t, err)

	// Pinned mid-window so a burst never straddles a window boundary.
	now := time.Now().Truncate(time.Minute).Add(time.Second)
	lim, err := ratelimit.NewManager(ratelimit.Options{
		Enabled: false,
		Rules:   config.DefaultRateLimits(),
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)

	us := services.NewUserService(repos, authn, nil)
	srv := httptest.NewServer(NewRouter(Deps{
		Users:   us,
		Notes:   services.NewNoteService(repos, nil),
		Health:  repos,
		Limiter: lim,
	}))
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, users: us, limiter: lim, repos: repos}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, http.Header, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = strings.NewReader(string(buf))
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, out
}

func (a *testAPI) login(t *testing.T, username, password string) (int, []byte) {
	t.Helper()
	resp, err := a.srv.Client().PostForm(a.srv.URL+"/token", url.Values{"username": {username}, "password": {password}})
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// signup registers a user, optionally as admin, and returns a bearer token.
func (a *testAPI) signup(t *testing.T, username string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	if admin {
		_, err := a.users.CreateAdmin(ctx, username, username+"-pw")
		require.NoError(t, err)
	} else {
		status, _, body := a.do(t, http.MethodPost, "/user/create-user", "", credentials{Username: username, Password: username + "-pw"})
		require.Equal(t, http.StatusOK, status, string(body))
	}
	status, body := a.login(t, username, username+"-pw")
	require.Equal(t, http.StatusOK, status, string(body))
	var tok tokenResponse
	require.NoError(t, json.Unmarshal(body, &tok))
	return tok.AccessToken
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func detail(t *testing.T, b []byte) string {
	return decode[errorBody](t, b).Detail
}
