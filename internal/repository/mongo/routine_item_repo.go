package mongo

import (
	"context"
	"errors"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const routineItemCollectionName = "routine_items"

// mongoRoutineItemRepository implements repository.RoutineItemRepository using MongoDB.
type mongoRoutineItemRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineItemRepository creates a new instance of mongoRoutineItemRepository.
func NewMongoRoutineItemRepository(db *mongo.Database) repository.RoutineItemRepository {
	return &mongoRoutineItemRepository{
		collection: db.Collection(routineItemCollectionName),
	}
}

// Create inserts a new routine item.
func (r *mongoRoutineItemRepository) Create(ctx context.Context, item *domain.RoutineItem) (primitive.ObjectID, error) {
	if item.RoutineID == primitive.NilObjectID || item.Name == "" {
		return primitive.NilObjectID, errors.New("routine id and item name are required")
	}

	item.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a routine item by id.
func (r *mongoRoutineItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineItem, error) {
	var item domain.RoutineItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetByRoutineID retrieves a routine's items ordered by (position, id).
func (r *mongoRoutineItemRepository) GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineItem, error) {
	filter := bson.M{"routineId": routineID}
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.RoutineItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.RoutineItem{}
	}
	return items, nil
}

// MaxPosition returns the highest position in a routine, or -1 when the
// routine has no items.
func (r *mongoRoutineItemRepository) MaxPosition(ctx context.Context, routineID primitive.ObjectID) (int, error) {
	filter := bson.M{"routineId": routineID}
	opts := options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})

	var item domain.RoutineItem
	err := r.collection.FindOne(ctx, filter, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return -1, nil
		}
		return -1, err
	}
	return item.Position, nil
}

// Update replaces the mutable fields of an item. Position is managed
// separately through SetPosition.
func (r *mongoRoutineItemRepository) Update(ctx context.Context, item *domain.RoutineItem) error {
	item.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":           item.Name,
		"exerciseId":     item.ExerciseID,
		"videoObjectKey": item.VideoObjectKey,
		"sets":           item.Sets,
		"reps":           item.Reps,
		"weight":         item.Weight,
		"rest":           item.Rest,
		"note":           item.Note,
		"updatedAt":      item.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPosition moves an item to the given position within its routine.
func (r *mongoRoutineItemRepository) SetPosition(ctx context.Context, id primitive.ObjectID, position int) error {
	update := bson.M{"$set": bson.M{
		"position":  position,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a routine item.
func (r *mongoRoutineItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRoutineItemIndexes creates necessary indexes for the routine_items collection.
func EnsureRoutineItemIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "routineId", Value: 1}, {Key: "position", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
