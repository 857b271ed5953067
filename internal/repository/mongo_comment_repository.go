package repository

import (
	"context"

	"github.com/yukikurage/taskforge-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentCollection is the collection holding the comment log.
const CommentCollection = "comments"

// MongoCommentRepository keeps the comment log in MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a MongoDB-backed CommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(CommentCollection)}
}

// EnsureIndexes creates the (task_id, created_at) index used by ListByTask
func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "task_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("idx_comments_task_created"),
	})
	return err
}

// Append stores a new comment
func (r *MongoCommentRepository) Append(ctx context.Context, comment *models.Comment) error {
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// ListByTask returns a task's comments, oldest first
func (r *MongoCommentRepository) ListByTask(ctx context.Context, taskID uint64) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
