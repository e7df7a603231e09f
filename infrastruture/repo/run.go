package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RunRepo handles the persistence of run records in MongoDB.
type RunRepo struct {
	collection *mongo.Collection
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &RunRepo{
		collection: collection,
	}
}

// Save inserts or replaces a run record.
func (r *RunRepo) Save(ctx context.Context, run *dmn.Run) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	filter := bson.M{"_id": run.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, run, opts); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	return nil
}

// ByID retrieves a run by its ID.
func (r *RunRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var run dmn.Run
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, i.ErrRunNotFound
		}
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return &run, nil
}

// List returns up to limit runs, most recently started first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]*dmn.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer cursor.Close(ctx)

	runs := make([]*dmn.Run, 0)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("decoding runs: %w", err)
	}
	return runs, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
