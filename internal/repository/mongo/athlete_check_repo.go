package mongo

import (
	"context"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const athleteCheckCollectionName = "athlete_checks"

// mongoAthleteCheckRepository implements repository.AthleteCheckRepository using MongoDB.
type mongoAthleteCheckRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteCheckRepository creates a new instance of mongoAthleteCheckRepository.
func NewMongoAthleteCheckRepository(db *mongo.Database) repository.AthleteCheckRepository {
	return &mongoAthleteCheckRepository{
		collection: db.Collection(athleteCheckCollectionName),
	}
}

// Upsert writes the check for (userID, date, itemID), inserting it when
// missing. Atomic: backed by the unique triple index.
func (r *mongoAthleteCheckRepository) Upsert(ctx context.Context, check *domain.AthleteCheck) error {
	date := domain.DateOf(check.Date)

	filter := bson.M{
		"userId":        check.UserID,
		"date":          date,
		"routineItemId": check.RoutineItemID,
	}
	update := bson.M{
		"$set": bson.M{
			"done":      check.Done,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"userId":        check.UserID,
			"date":          date,
			"routineItemId": check.RoutineItemID,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByUserDateAndItems retrieves the checks for one (user, date) restricted
// to the given item ids.
func (r *mongoAthleteCheckRepository) GetByUserDateAndItems(ctx context.Context, userID primitive.ObjectID, date time.Time, itemIDs []primitive.ObjectID) ([]domain.AthleteCheck, error) {
	if len(itemIDs) == 0 {
		return []domain.AthleteCheck{}, nil
	}
	filter := bson.M{
		"userId":        userID,
		"date":          domain.DateOf(date),
		"routineItemId": bson.M{"$in": itemIDs},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checks []domain.AthleteCheck
	if err = cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	if checks == nil {
		checks = []domain.AthleteCheck{}
	}
	return checks, nil
}

// DeleteByUser removes every check belonging to a user (account deletion cascade).
func (r *mongoAthleteCheckRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureAthleteCheckIndexes creates necessary indexes for the athlete_checks collection.
func EnsureAthleteCheckIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "routineItemId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
