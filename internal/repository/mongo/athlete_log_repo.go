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

const athleteLogCollectionName = "athlete_logs"

// mongoAthleteLogRepository implements repository.AthleteLogRepository using MongoDB.
type mongoAthleteLogRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteLogRepository creates a new instance of mongoAthleteLogRepository.
func NewMongoAthleteLogRepository(db *mongo.Database) repository.AthleteLogRepository {
	return &mongoAthleteLogRepository{
		collection: db.Collection(athleteLogCollectionName),
	}
}

// Upsert writes the log for (userID, date), inserting it when missing.
// Atomic: backed by the unique (userId, date) index.
func (r *mongoAthleteLogRepository) Upsert(ctx context.Context, log *domain.AthleteLog) error {
	date := domain.DateOf(log.Date)
	now := time.Now().UTC()

	filter := bson.M{"userId": log.UserID, "date": date}
	update := bson.M{
		"$set": bson.M{
			"didTrain":     log.DidTrain,
			"warmupDone":   log.WarmupDone,
			"mainDone":     log.MainDone,
			"finisherDone": log.FinisherDone,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":    primitive.NewObjectID(),
			"userId": log.UserID,
			"date":   date,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByUserAndDate retrieves the log for a single (user, date) pair.
func (r *mongoAthleteLogRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.AthleteLog, error) {
	var log domain.AthleteLog
	filter := bson.M{"userId": userID, "date": domain.DateOf(date)}
	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByUserAndDates retrieves all logs for the given dates.
func (r *mongoAthleteLogRepository) GetByUserAndDates(ctx context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.AthleteLog, error) {
	if len(dates) == 0 {
		return []domain.AthleteLog{}, nil
	}
	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = domain.DateOf(d)
	}
	filter := bson.M{"userId": userID, "date": bson.M{"$in": normalized}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.AthleteLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.AthleteLog{}
	}
	return logs, nil
}

// DeleteByUser removes every log belonging to a user (account deletion cascade).
func (r *mongoAthleteLogRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureAthleteLogIndexes creates necessary indexes for the athlete_logs collection.
func EnsureAthleteLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
