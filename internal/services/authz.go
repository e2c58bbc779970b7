package services

import "github.com/memoria-app/apiserver/types"

// Authorize decides whether identity may mutate a resource owned by owner.
// It allows the mutation only when a credential is present and its username
// equals the owner's exactly.
func Authorize(identity types.Identity, owner string) error {
	if identity.IsAnonymous() {
		return ErrUnauthorized
	}
	if identity.Username != owner {
		return ErrForbidden
	}
	return nil
}

// AuthorizeFollow decides whether identity may toggle a follow on the user
// with targetUserID. Anonymous requests are rejected, as is following
// oneself.
func AuthorizeFollow(identity types.Identity, targetUserID string) error {
	if identity.IsAnonymous() {
		return ErrUnauthorized
	}
	if identity.UserID == targetUserID {
		return ErrSelfFollow
	}
	return nil
}
