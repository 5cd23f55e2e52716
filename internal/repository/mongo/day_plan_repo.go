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

const dayPlanCollectionName = "day_plans"

// mongoDayPlanRepository implements repository.DayPlanRepository using MongoDB.
type mongoDayPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDayPlanRepository creates a new instance of mongoDayPlanRepository.
func NewMongoDayPlanRepository(db *mongo.Database) repository.DayPlanRepository {
	return &mongoDayPlanRepository{
		collection: db.Collection(dayPlanCollectionName),
	}
}

// GetOrCreate returns the plan for (userID, date), creating it from defaults
// when missing. Implemented as a single FindOneAndUpdate upsert with
// $setOnInsert, so two concurrent callers for a new date converge on one
// stored row instead of racing a check-then-insert.
func (r *mongoDayPlanRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID, date time.Time, defaults *domain.DayPlan) (*domain.DayPlan, error) {
	date = domain.DateOf(date)
	now := time.Now().UTC()

	planType := domain.PlanRest
	canTrain := true
	if defaults != nil {
		if defaults.PlanType != "" {
			planType = defaults.PlanType
		}
		canTrain = defaults.CanTrain
	}

	filter := bson.M{"userId": userID, "date": date}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"userId":    userID,
			"date":      date,
			"planType":  planType,
			"canTrain":  canTrain,
			"createdAt": now,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var plan domain.DayPlan
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByUserAndDate retrieves the plan for a single (user, date) pair.
func (r *mongoDayPlanRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DayPlan, error) {
	var plan domain.DayPlan
	filter := bson.M{"userId": userID, "date": domain.DateOf(date)}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByUserAndDates retrieves all stored plans for the given dates.
func (r *mongoDayPlanRepository) GetByUserAndDates(ctx context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.DayPlan, error) {
	if len(dates) == 0 {
		return []domain.DayPlan{}, nil
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

	var plans []domain.DayPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.DayPlan{}
	}
	return plans, nil
}

// Update replaces the mutable fields of an existing plan.
func (r *mongoDayPlanRepository) Update(ctx context.Context, plan *domain.DayPlan) error {
	plan.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"planType":       plan.PlanType,
		"warmup":         plan.Warmup,
		"main":           plan.Main,
		"finisher":       plan.Finisher,
		"routineId":      plan.RoutineID,
		"proposedScore":  plan.ProposedScore,
		"completedScore": plan.CompletedScore,
		"canTrain":       plan.CanTrain,
		"athleteComment": plan.AthleteComment,
		"updatedAt":      plan.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUser removes every plan belonging to a user (account deletion cascade).
func (r *mongoDayPlanRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureDayPlanIndexes creates necessary indexes for the day_plans collection.
// The unique (userId, date) index backs the one-plan-per-day invariant.
func EnsureDayPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
