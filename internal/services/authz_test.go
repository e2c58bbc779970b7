package services

import (
	"testing"

	"github.com/memoria-app/apiserver/types"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeAllowsOwner(t *testing.T) {
	identity := types.Identity{UserID: "1", Username: "alice"}
	assert.NoError(t, Authorize(identity, "alice"))
}

func TestAuthorizeDeniesOtherUser(t *testing.T) {
	identity := types.Identity{UserID: "2", Username: "bob"}
	assert.ErrorIs(t, Authorize(identity, "alice"), ErrForbidden)
}

func TestAuthorizeDeniesAnonymous(t *testing.T) {
	assert.ErrorIs(t, Authorize(types.Anonymous, "alice"), ErrUnauthorized)
}

func TestAuthorizeIsCaseSensitive(t *testing.T) {
	identity := types.Identity{UserID: "1", Username: "Alice"}
	assert.ErrorIs(t, Authorize(identity, "alice"), ErrForbidden)
}

func TestAuthorizeFollowDeniesAnonymous(t *testing.T) {
	assert.ErrorIs(t, AuthorizeFollow(types.Anonymous, "someid"), ErrUnauthorized)
}

func TestAuthorizeFollowDeniesSelf(t *testing.T) {
	identity := types.Identity{UserID: "abc123", Username: "alice"}
	assert.ErrorIs(t, AuthorizeFollow(identity, "abc123"), ErrSelfFollow)
}

func TestAuthorizeFollowAllowsOtherUser(t *testing.T) {
	identity := types.Identity{UserID: "abc123", Username: "alice"}
	assert.NoError(t, AuthorizeFollow(identity, "def456"))
}
