package handlers

import (
	"net/http"
	"testing"

	"github.com/memoria-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowToggleEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})
	bob := env.users.Add(types.User{Username: "bob", Email: "bob@x.com"})

	identity := types.Identity{UserID: bob.ID.Hex(), Username: "bob"}
	body := FollowRequest{FollowedUserID: alice.ID.Hex()}

	recorder := env.request(t, http.MethodPatch, "/user/follow", body, &identity)
	require.Equal(t, http.StatusOK, recorder.Code)
	user := decodeBody[types.User](t, recorder)
	assert.Equal(t, []string{"bob"}, user.Followers)

	recorder = env.request(t, http.MethodPatch, "/user/follow", body, &identity)
	require.Equal(t, http.StatusOK, recorder.Code)
	user = decodeBody[types.User](t, recorder)
	assert.Empty(t, user.Followers)
}

func TestFollowRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})

	recorder := env.request(t, http.MethodPatch, "/user/follow", FollowRequest{FollowedUserID: alice.ID.Hex()}, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestFollowSelfForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})

	identity := types.Identity{UserID: alice.ID.Hex(), Username: "alice"}
	recorder := env.request(t, http.MethodPatch, "/user/follow", FollowRequest{FollowedUserID: alice.ID.Hex()}, &identity)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestProfileMatchesCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	env.users.Add(types.User{Username: "alice", Email: "alice@x.com", Description: "gardener"})

	recorder := env.request(t, http.MethodGet, "/user/Alice/profile", nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	user := decodeBody[types.User](t, recorder)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "gardener", user.Description)
}

func TestProfileNotFound(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, http.MethodGet, "/user/ghost/profile", nil, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSuggestionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.users.Add(types.User{Username: "alice", Email: "alice@x.com", Followers: []string{"bob"}})
	env.users.Add(types.User{Username: "carol", Email: "carol@x.com"})

	recorder := env.request(t, http.MethodGet, "/user/bob", nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	users := decodeBody[[]types.User](t, recorder)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)
}

func TestEditDescriptionOwnerOnlyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})

	bob := types.Identity{UserID: "1", Username: "bob"}
	recorder := env.request(t, http.MethodPatch, "/user/alice/editDescription", EditDescriptionRequest{Description: "hacked"}, &bob)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	alice := types.Identity{UserID: "2", Username: "alice"}
	recorder = env.request(t, http.MethodPatch, "/user/alice/editDescription", EditDescriptionRequest{Description: "gardener"}, &alice)
	require.Equal(t, http.StatusOK, recorder.Code)

	user := decodeBody[types.User](t, recorder)
	assert.Equal(t, "gardener", user.Description)
}

func TestEditImageEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})

	alice := types.Identity{UserID: "1", Username: "alice"}
	recorder := env.request(t, http.MethodPatch, "/user/editImage", EditImageRequest{
		Username: "alice",
		Image:    "https://img.example/new.png",
	}, &alice)
	require.Equal(t, http.StatusOK, recorder.Code)

	user := decodeBody[types.User](t, recorder)
	assert.Equal(t, "https://img.example/new.png", user.Image)
}

func TestEditImageMissingURL(t *testing.T) {
	env := newTestEnv(t)
	env.users.Add(types.User{Username: "alice", Email: "alice@x.com"})

	alice := types.Identity{UserID: "1", Username: "alice"}
	recorder := env.request(t, http.MethodPatch, "/user/editImage", EditImageRequest{Username: "alice"}, &alice)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
