package persistent

import (
	"context"
	"errors"
	"fmt"

	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database, collection string) PostRepository {
	return &mongoPostRepository{coll: db.Collection(collection)}
}

// EnsureMongoIndexes creates the indexes the media janitor counts on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "image", Value: 1}},
			Options: options.Index().SetName("image_1"),
		},
		{
			Keys:    bson.D{{Key: "author.img", Value: 1}},
			Options: options.Index().SetName("author.img_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("create image indexes: %w", err)
	}
	return nil
}

func (r *mongoPostRepository) InsertMany(ctx context.Context, posts []*entity.Post) ([]*entity.Post, error) {
	if len(posts) == 0 {
		return []*entity.Post{}, nil
	}

	docs := make([]interface{}, len(posts))
	ids := make([]primitive.ObjectID, len(posts))
	created := make([]*entity.Post, len(posts))
	for i, post := range posts {
		doc := ToPostDocument(post)
		doc.ID = primitive.NewObjectID()
		docs[i] = doc
		ids[i] = doc.ID
		created[i] = DocumentToPostEntity(doc)
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		// Roll back whatever part of the batch made it in.
		if _, cleanupErr := r.coll.DeleteMany(context.WithoutCancel(ctx), bson.M{"_id": bson.M{"$in": ids}}); cleanupErr != nil {
			return nil, fmt.Errorf("insert posts: %w (cleanup failed: %v)", err, cleanupErr)
		}
		return nil, fmt.Errorf("insert posts: %w", err)
	}

	return created, nil
}

func (r *mongoPostRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	var docs []model.PostDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]*entity.Post, len(docs))
	for i := range docs {
		posts[i] = DocumentToPostEntity(&docs[i])
	}
	return posts, nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrPostNotFound
	}

	var doc model.PostDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, noDocumentOr(err, "find post")
	}
	return DocumentToPostEntity(&doc), nil
}

func (r *mongoPostRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	set := ToSetDocument(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrPostNotFound
	}

	return r.findOneAndUpdate(ctx, oid, bson.M{"$set": set}, "update post")
}

func (r *mongoPostRepository) IncrementLikeCount(ctx context.Context, id string, delta int) (*entity.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrPostNotFound
	}

	return r.findOneAndUpdate(ctx, oid, bson.M{"$inc": bson.M{"like.count": delta}}, "increment like count")
}

func (r *mongoPostRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M, op string) (*entity.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc model.PostDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, noDocumentOr(err, op)
	}
	return DocumentToPostEntity(&doc), nil
}

func (r *mongoPostRepository) DeleteByID(ctx context.Context, id string) (*entity.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrPostNotFound
	}

	var doc model.PostDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, noDocumentOr(err, "delete post")
	}
	return DocumentToPostEntity(&doc), nil
}

func (r *mongoPostRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete all posts: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoPostRepository) CountImageReferences(ctx context.Context, url string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, imageReferenceFilter(url))
	if err != nil {
		return 0, fmt.Errorf("count image references: %w", err)
	}
	return count, nil
}

func imageReferenceFilter(url string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"image": url},
		bson.M{"author.img": url},
	}}
}

func noDocumentOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.ErrPostNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
