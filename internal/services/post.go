package services

import (
	"context"

	"github.com/memoria-app/apiserver/types"
)

const (
	defaultPopularLimit = 2
	maxPopularLimit     = 100
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	Popular(ctx context.Context, limit int) ([]types.Post, error)
	GetByID(ctx context.Context, id string) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, id string, update types.PostUpdate) (types.Post, error)
	Delete(ctx context.Context, id string) error
	AppendComment(ctx context.Context, id string, comment types.Comment) (types.Post, error)
	AddLike(ctx context.Context, id, username string) (types.Post, error)
	RemoveLike(ctx context.Context, id, username string) (types.Post, error)
	SearchByTitle(ctx context.Context, query string) ([]types.Post, error)
	SearchByCategory(ctx context.Context, query string) ([]types.Post, error)
	SearchByUsername(ctx context.Context, query string) ([]types.Post, error)
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo PostRepository

	// enforceOwnership gates edit/delete on the acting user being the
	// post's author.
	enforceOwnership bool
}

func NewPostService(repo PostRepository, enforceOwnership bool) *PostService {
	return &PostService{repo: repo, enforceOwnership: enforceOwnership}
}

func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) Popular(ctx context.Context, limit int) ([]types.Post, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}
	return s.repo.Popular(ctx, limit)
}

func (s *PostService) Get(ctx context.Context, id string) (types.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// Create publishes a post authored by identity. The author field always
// comes from the credential, never from the request body.
func (s *PostService) Create(ctx context.Context, identity types.Identity, post types.Post) (types.Post, error) {
	if identity.IsAnonymous() {
		return types.Post{}, ErrUnauthorized
	}
	post.Username = identity.Username
	return s.repo.Create(ctx, post)
}

// Edit updates a post's editable fields, checking ownership when the policy
// is enabled.
func (s *PostService) Edit(ctx context.Context, identity types.Identity, id string, update types.PostUpdate) (types.Post, error) {
	if err := s.checkOwnership(ctx, identity, id); err != nil {
		return types.Post{}, err
	}
	return s.repo.Update(ctx, id, update)
}

// Delete removes a post, checking ownership when the policy is enabled.
func (s *PostService) Delete(ctx context.Context, identity types.Identity, id string) error {
	if err := s.checkOwnership(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Comment appends a free-form comment record to a post.
func (s *PostService) Comment(ctx context.Context, id string, comment types.Comment) (types.Post, error) {
	return s.repo.AppendComment(ctx, id, comment)
}

// Like toggles identity's membership in the post's like set and returns the
// updated post. Any signed-in user may like any post.
func (s *PostService) Like(ctx context.Context, identity types.Identity, id string) (types.Post, error) {
	if identity.IsAnonymous() {
		return types.Post{}, ErrUnauthorized
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Post{}, err
	}

	if _, added := ToggleMember(post.Likes, identity.Username); added {
		return s.repo.AddLike(ctx, id, identity.Username)
	}
	return s.repo.RemoveLike(ctx, id, identity.Username)
}

func (s *PostService) SearchByTitle(ctx context.Context, query string) ([]types.Post, error) {
	return s.repo.SearchByTitle(ctx, query)
}

func (s *PostService) SearchByCategory(ctx context.Context, query string) ([]types.Post, error) {
	return s.repo.SearchByCategory(ctx, query)
}

func (s *PostService) SearchByUsername(ctx context.Context, query string) ([]types.Post, error) {
	return s.repo.SearchByUsername(ctx, query)
}

func (s *PostService) checkOwnership(ctx context.Context, identity types.Identity, id string) error {
	if !s.enforceOwnership {
		return nil
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return Authorize(identity, post.Username)
}
