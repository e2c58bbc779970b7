// Package storetest provides in-memory repository implementations for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/memoria-app/apiserver/internal/store"
	"github.com/memoria-app/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemUserRepo is an in-memory user repository.
type MemUserRepo struct {
	Users []types.User
}

// Add inserts a user directly, assigning an id when missing.
func (r *MemUserRepo) Add(user types.User) types.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Followers == nil {
		user.Followers = []string{}
	}
	r.Users = append(r.Users, user)
	return user
}

func (r *MemUserRepo) find(match func(types.User) bool) (int, bool) {
	for i, user := range r.Users {
		if match(user) {
			return i, true
		}
	}
	return 0, false
}

func (r *MemUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	if i, ok := r.find(func(u types.User) bool { return u.ID.Hex() == id }); ok {
		return r.Users[i], nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *MemUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	if i, ok := r.find(func(u types.User) bool { return u.Username == username }); ok {
		return r.Users[i], nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *MemUserRepo) GetByUsernameFold(ctx context.Context, username string) (types.User, error) {
	if i, ok := r.find(func(u types.User) bool { return strings.EqualFold(u.Username, username) }); ok {
		return r.Users[i], nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *MemUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	if i, ok := r.find(func(u types.User) bool { return u.Email == email }); ok {
		return r.Users[i], nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *MemUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := r.find(func(u types.User) bool {
		return u.Username == user.Username || u.Email == user.Email
	}); ok {
		return types.User{}, store.ErrConflict
	}
	return r.Add(user), nil
}

func (r *MemUserRepo) List(ctx context.Context) ([]types.User, error) {
	return append([]types.User(nil), r.Users...), nil
}

func (r *MemUserRepo) UpdateDescription(ctx context.Context, username, description string) (types.User, error) {
	i, ok := r.find(func(u types.User) bool { return strings.EqualFold(u.Username, username) })
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	r.Users[i].Description = description
	return r.Users[i], nil
}

func (r *MemUserRepo) UpdateImage(ctx context.Context, username, image string) (types.User, error) {
	i, ok := r.find(func(u types.User) bool { return strings.EqualFold(u.Username, username) })
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	r.Users[i].Image = image
	return r.Users[i], nil
}

func (r *MemUserRepo) AddFollower(ctx context.Context, id, follower string) (types.User, error) {
	i, ok := r.find(func(u types.User) bool { return u.ID.Hex() == id })
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range r.Users[i].Followers {
		if existing == follower {
			return r.Users[i], nil
		}
	}
	r.Users[i].Followers = append(r.Users[i].Followers, follower)
	return r.Users[i], nil
}

func (r *MemUserRepo) RemoveFollower(ctx context.Context, id, follower string) (types.User, error) {
	i, ok := r.find(func(u types.User) bool { return u.ID.Hex() == id })
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	kept := make([]string, 0, len(r.Users[i].Followers))
	for _, existing := range r.Users[i].Followers {
		if existing != follower {
			kept = append(kept, existing)
		}
	}
	r.Users[i].Followers = kept
	return r.Users[i], nil
}

// MemPostRepo is an in-memory post repository.
type MemPostRepo struct {
	Posts []types.Post
}

// Add inserts a post directly, assigning an id when missing.
func (r *MemPostRepo) Add(post types.Post) types.Post {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []types.Comment{}
	}
	r.Posts = append(r.Posts, post)
	return post
}

func (r *MemPostRepo) find(id string) (int, bool) {
	for i, post := range r.Posts {
		if post.ID.Hex() == id {
			return i, true
		}
	}
	return 0, false
}

func (r *MemPostRepo) List(ctx context.Context) ([]types.Post, error) {
	posts := append([]types.Post(nil), r.Posts...)
	sort.Slice(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
	return posts, nil
}

func (r *MemPostRepo) Popular(ctx context.Context, limit int) ([]types.Post, error) {
	posts := append([]types.Post(nil), r.Posts...)
	sort.SliceStable(posts, func(i, j int) bool { return len(posts[i].Likes) > len(posts[j].Likes) })
	if limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *MemPostRepo) GetByID(ctx context.Context, id string) (types.Post, error) {
	if i, ok := r.find(id); ok {
		return r.Posts[i], nil
	}
	return types.Post{}, store.ErrNotFound
}

func (r *MemPostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if post.Date.IsZero() {
		post.Date = time.Now()
	}
	return r.Add(post), nil
}

func (r *MemPostRepo) Update(ctx context.Context, id string, update types.PostUpdate) (types.Post, error) {
	i, ok := r.find(id)
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	r.Posts[i].Title = update.Title
	r.Posts[i].Message = update.Message
	if update.Image != "" {
		r.Posts[i].Image = update.Image
	}
	if update.Category != "" {
		r.Posts[i].Category = update.Category
	}
	return r.Posts[i], nil
}

func (r *MemPostRepo) Delete(ctx context.Context, id string) error {
	i, ok := r.find(id)
	if !ok {
		return store.ErrNotFound
	}
	r.Posts = append(r.Posts[:i], r.Posts[i+1:]...)
	return nil
}

func (r *MemPostRepo) AppendComment(ctx context.Context, id string, comment types.Comment) (types.Post, error) {
	i, ok := r.find(id)
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	r.Posts[i].Comments = append(r.Posts[i].Comments, comment)
	return r.Posts[i], nil
}

func (r *MemPostRepo) AddLike(ctx context.Context, id, username string) (types.Post, error) {
	i, ok := r.find(id)
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	for _, existing := range r.Posts[i].Likes {
		if existing == username {
			return r.Posts[i], nil
		}
	}
	r.Posts[i].Likes = append(r.Posts[i].Likes, username)
	return r.Posts[i], nil
}

func (r *MemPostRepo) RemoveLike(ctx context.Context, id, username string) (types.Post, error) {
	i, ok := r.find(id)
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	kept := make([]string, 0, len(r.Posts[i].Likes))
	for _, existing := range r.Posts[i].Likes {
		if existing != username {
			kept = append(kept, existing)
		}
	}
	r.Posts[i].Likes = kept
	return r.Posts[i], nil
}

func (r *MemPostRepo) search(match func(types.Post) bool) ([]types.Post, error) {
	var posts []types.Post
	for _, post := range r.Posts {
		if match(post) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *MemPostRepo) SearchByTitle(ctx context.Context, query string) ([]types.Post, error) {
	return r.search(func(p types.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), strings.ToLower(query))
	})
}

func (r *MemPostRepo) SearchByCategory(ctx context.Context, query string) ([]types.Post, error) {
	return r.search(func(p types.Post) bool {
		return strings.Contains(strings.ToLower(p.Category), strings.ToLower(query))
	})
}

func (r *MemPostRepo) SearchByUsername(ctx context.Context, query string) ([]types.Post, error) {
	return r.search(func(p types.Post) bool {
		return strings.Contains(strings.ToLower(p.Username), strings.ToLower(query))
	})
}

// MemCategoryRepo is an in-memory category repository.
type MemCategoryRepo struct {
	Categories []types.Category
}

func (r *MemCategoryRepo) List(ctx context.Context) ([]types.Category, error) {
	return append([]types.Category(nil), r.Categories...), nil
}
