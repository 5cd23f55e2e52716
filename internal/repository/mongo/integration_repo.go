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

const (
	integrationCollectionName = "integration_accounts"
	activityCollectionName    = "external_activities"
)

// mongoIntegrationRepository implements repository.IntegrationRepository using MongoDB.
type mongoIntegrationRepository struct {
	accounts   *mongo.Collection
	activities *mongo.Collection
}

// NewMongoIntegrationRepository creates a new instance of mongoIntegrationRepository.
func NewMongoIntegrationRepository(db *mongo.Database) repository.IntegrationRepository {
	return &mongoIntegrationRepository{
		accounts:   db.Collection(integrationCollectionName),
		activities: db.Collection(activityCollectionName),
	}
}

// UpsertAccount writes the integration account for (userID, provider),
// inserting it on first link.
func (r *mongoIntegrationRepository) UpsertAccount(ctx context.Context, account *domain.IntegrationAccount) error {
	now := time.Now().UTC()

	filter := bson.M{"userId": account.UserID, "provider": account.Provider}
	update := bson.M{
		"$set": bson.M{
			"externalUserId": account.ExternalUserID,
			"accessToken":    account.AccessToken,
			"refreshToken":   account.RefreshToken,
			"expiresAt":      account.ExpiresAt,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"userId":    account.UserID,
			"provider":  account.Provider,
			"createdAt": now,
		},
	}

	_, err := r.accounts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetAccount retrieves the integration account for (userID, provider).
func (r *mongoIntegrationRepository) GetAccount(ctx context.Context, userID primitive.ObjectID, provider string) (*domain.IntegrationAccount, error) {
	var account domain.IntegrationAccount
	filter := bson.M{"userId": userID, "provider": provider}
	err := r.accounts.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpsertActivity writes one synced activity, reporting whether it was new.
func (r *mongoIntegrationRepository) UpsertActivity(ctx context.Context, activity *domain.ExternalActivity) (bool, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"userId":             activity.UserID,
		"provider":           activity.Provider,
		"providerActivityId": activity.ProviderActivityID,
	}
	update := bson.M{
		"$set": bson.M{
			"name":           activity.Name,
			"sportType":      activity.SportType,
			"distanceMeters": activity.DistanceMeters,
			"movingSeconds":  activity.MovingSeconds,
			"elapsedSeconds": activity.ElapsedSeconds,
			"startDate":      activity.StartDate,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"_id":                primitive.NewObjectID(),
			"userId":             activity.UserID,
			"provider":           activity.Provider,
			"providerActivityId": activity.ProviderActivityID,
			"createdAt":          now,
		},
	}

	result, err := r.activities.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// ListActivities retrieves synced activities for a user, newest start first.
func (r *mongoIntegrationRepository) ListActivities(ctx context.Context, userID primitive.ObjectID, provider string, limit int64) ([]domain.ExternalActivity, error) {
	filter := bson.M{"userId": userID, "provider": provider}
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.activities.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []domain.ExternalActivity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []domain.ExternalActivity{}
	}
	return activities, nil
}

// EnsureIntegrationIndexes creates necessary indexes for the integration
// account and external activity collections.
func EnsureIntegrationIndexes(ctx context.Context, accounts, activities *mongo.Collection) error {
	_, err := accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "provider", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}
	_, err = activities.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "provider", Value: 1},
				{Key: "providerActivityId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
