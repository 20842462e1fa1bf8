package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootAndHealth(t *testing.T) {
	a := newTestAPI(t)

	status, _, body := a.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Notes App API is running.", decode[messageBody](t, body).Message)

	status, _, body = a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestCreateUser(t *testing.T) {
	a := newTestAPI(t)

	status, _, body := a.do(t, http.MethodPost, "/user/create-user", "", credentials{Username: "newuser", Password: "newpass123"})
	require.Equal(t, http.StatusOK, status)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "newuser", got["username"])
	assert.Equal(t, false, got["admin_status"])
	assert.NotEmpty(t, got["id"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "password_hash")

	status, _, body = a.do(t, http.MethodPost, "/user/create-user", "", credentials{Username: "newuser", Password: "other"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already exists", detail(t, body))

	status, _, _ = a.do(t, http.MethodPost, "/user/create-user", "", `{"username":`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _, _ = a.do(t, http.MethodPost, "/user/create-user", "", credentials{Username: "", Password: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", false)

	status, body := a.login(t, "alice", "alice-pw")
	require.Equal(t, http.StatusOK, status)
	tok := decode[tokenResponse](t, body)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)

	for _, creds := range [][2]string{{"alice", "wrongpw"}, {"nobody", "alice-pw"}} {
		status, body = a.login(t, creds[0], creds[1])
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Incorrect username or password", detail(t, body))
	}

	status, _ = a.login(t, "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestCurrentUser(t *testing.T) {
	a := newTestAPI(t)
	tok := a.signup(t, "testuser", false)

	status, _, body := a.do(t, http.MethodGet, "/user/", tok, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "testuser", got["username"])
	assert.NotContains(t, got, "password")

	for _, bad := range []string{"", "garbage", tok + "x"} {
		status, hdr, body := a.do(t, http.MethodGet, "/user/", bad, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Bearer", hdr.Get("WWW-Authenticate"))
		assert.Equal(t, "Could not validate credentials", detail(t, body))
	}
}

func TestAdminUserEndpoints(t *testing.T) {
	a := newTestAPI(t)
	admin := a.signup(t, "admin", true)
	user := a.signup(t, "testuser", false)

	status, _, body := a.do(t, http.MethodGet, "/user/admin/list-all", admin, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]map[string]any](t, body)
	names := map[string]bool{}
	for _, u := range list {
		names[u["username"].(string)] = true
	}
	assert.True(t, names["admin"])
	assert.True(t, names["testuser"])

	status, _, body = a.do(t, http.MethodGet, "/user/admin/count-users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total_users":2}`, string(body))

	for _, path := range []string{"/user/admin/list-all", "/user/admin/count-users"} {
		status, _, body = a.do(t, http.MethodGet, path, user, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, "Admin privileges required", detail(t, body))
	}
}

func TestDeleteUser(t *testing.T) {
	a := newTestAPI(t)
	admin := a.signup(t, "admin", true)
	user := a.signup(t, "testuser", false)

	me := func(tok string) map[string]any {
		_, _, body := a.do(t, http.MethodGet, "/user/", tok, nil)
		return decode[map[string]any](t, body)
	}
	adminID := me(admin)["id"].(string)
	userID := me(user)["id"].(string)

	status, _, body := a.do(t, http.MethodPost, "/notes/", user, map[string]any{"title": "mine"})
	require.Equal(t, http.StatusOK, status, string(body))
	noteID := decode[map[string]any](t, body)["id"].(string)

	status, _, _ = a.do(t, http.MethodDelete, "/user/admin/delete/"+adminID, user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, body = a.do(t, http.MethodDelete, "/user/admin/delete/"+adminID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot delete own account", detail(t, body))

	status, _, body = a.do(t, http.MethodDelete, "/user/admin/delete/"+userID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, decode[messageBody](t, body).Message, "deleted successfully")

	status, _, body = a.do(t, http.MethodDelete, "/user/admin/delete/"+userID, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", detail(t, body))

	status, _, _ = a.do(t, http.MethodGet, "/user/", user, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "token of a deleted user is rejected")

	status, _, body = a.do(t, http.MethodGet, "/notes/admin/count-notes", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total_notes":0}`, string(body))
	_, err := a.repos.Notes().Get(t.Context(), noteID, "")
	assert.Error(t, err)
}
