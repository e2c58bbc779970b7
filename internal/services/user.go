package services

import (
	"context"

	"github.com/memoria-app/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByUsernameFold(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	UpdateDescription(ctx context.Context, username, description string) (types.User, error)
	UpdateImage(ctx context.Context, username, image string) (types.User, error)
	AddFollower(ctx context.Context, id, follower string) (types.User, error)
	RemoveFollower(ctx context.Context, id, follower string) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// Profile looks up a user by username, ignoring case.
func (s *UserService) Profile(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsernameFold(ctx, username)
}

// Suggestions returns the users whose follower set does not contain the
// requesting username, i.e. the users the requester has not followed yet.
func (s *UserService) Suggestions(ctx context.Context, requester string) ([]types.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]types.User, 0, len(users))
	for _, user := range users {
		followed := false
		for _, follower := range user.Followers {
			if follower == requester {
				followed = true
				break
			}
		}
		if !followed {
			suggestions = append(suggestions, user)
		}
	}
	return suggestions, nil
}

// Follow toggles identity's membership in the target user's follower set and
// returns the updated user. The guard rejects anonymous and self-follow
// requests before any storage access.
func (s *UserService) Follow(ctx context.Context, identity types.Identity, targetUserID string) (types.User, error) {
	if err := AuthorizeFollow(identity, targetUserID); err != nil {
		return types.User{}, err
	}

	target, err := s.repo.GetByID(ctx, targetUserID)
	if err != nil {
		return types.User{}, err
	}

	// The toggle decides the direction; the repository applies it with an
	// atomic set update so concurrent toggles by different users cannot
	// overwrite each other.
	if _, added := ToggleMember(target.Followers, identity.Username); added {
		return s.repo.AddFollower(ctx, targetUserID, identity.Username)
	}
	return s.repo.RemoveFollower(ctx, targetUserID, identity.Username)
}

// EditDescription updates the profile description of username, provided
// identity owns that profile.
func (s *UserService) EditDescription(ctx context.Context, identity types.Identity, username, description string) (types.User, error) {
	if err := Authorize(identity, username); err != nil {
		return types.User{}, err
	}
	return s.repo.UpdateDescription(ctx, username, description)
}

// EditImage updates the profile image of username, provided identity owns
// that profile.
func (s *UserService) EditImage(ctx context.Context, identity types.Identity, username, image string) (types.User, error) {
	if err := Authorize(identity, username); err != nil {
		return types.User{}, err
	}
	return s.repo.UpdateImage(ctx, username, image)
}
