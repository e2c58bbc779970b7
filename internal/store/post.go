package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/memoria-app/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// List returns all posts, newest first.
func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// Popular returns the posts with the most likes, most liked first.
func (r *PostRepository) Popular(ctx context.Context, limit int) ([]types.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"like_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "like_count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$unset", Value: "like_count"}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []types.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (types.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Post{}, ErrNotFound
	}
	var post types.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if post.Date.IsZero() {
		post.Date = time.Now()
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []types.Comment{}
	}

	res, err := r.col.InsertOne(ctx, post)
	if err != nil {
		return types.Post{}, err
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, update types.PostUpdate) (types.Post, error) {
	set := bson.M{
		"title":   update.Title,
		"message": update.Message,
	}
	if update.Image != "" {
		set["image"] = update.Image
	}
	if update.Category != "" {
		set["category"] = update.Category
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendComment pushes a comment onto the post's comment list atomically.
func (r *PostRepository) AppendComment(ctx context.Context, id string, comment types.Comment) (types.Post, error) {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"comments": comment}})
}

// AddLike adds username to the post's like set atomically.
func (r *PostRepository) AddLike(ctx context.Context, id, username string) (types.Post, error) {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"likes": username}})
}

// RemoveLike removes username from the post's like set atomically.
func (r *PostRepository) RemoveLike(ctx context.Context, id, username string) (types.Post, error) {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"likes": username}})
}

// SearchByTitle matches posts whose title contains the query,
// case-insensitively.
func (r *PostRepository) SearchByTitle(ctx context.Context, query string) ([]types.Post, error) {
	return r.find(ctx, bson.M{"title": containsFold(query)}, nil)
}

// SearchByCategory matches posts whose category contains the query,
// case-insensitively.
func (r *PostRepository) SearchByCategory(ctx context.Context, query string) ([]types.Post, error) {
	return r.find(ctx, bson.M{"category": containsFold(query)}, nil)
}

// SearchByUsername matches posts whose author name contains the query,
// case-insensitively.
func (r *PostRepository) SearchByUsername(ctx context.Context, query string) ([]types.Post, error) {
	return r.find(ctx, bson.M{"username": containsFold(query)}, nil)
}

func (r *PostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]types.Post, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []types.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) updateByID(ctx context.Context, id string, update bson.M) (types.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Post{}, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post types.Post
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func containsFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}
