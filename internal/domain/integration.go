package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProviderStrava is the only external activity provider currently wired.
const ProviderStrava = "strava"

// IntegrationAccount stores the OAuth tokens linking a user to an external
// fitness platform. One account per (UserID, Provider).
type IntegrationAccount struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Provider       string             `bson:"provider" json:"provider"`
	ExternalUserID string             `bson:"externalUserId,omitempty" json:"externalUserId,omitempty"`

	AccessToken  string `bson:"accessToken" json:"-"`
	RefreshToken string `bson:"refreshToken" json:"-"`
	ExpiresAt    int64  `bson:"expiresAt" json:"expiresAt"` // unix seconds

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TokenExpired reports whether the access token is expired or about to be,
// within the given safety margin.
func (a *IntegrationAccount) TokenExpired(now time.Time, safety time.Duration) bool {
	return now.Unix() >= a.ExpiresAt-int64(safety.Seconds())
}

// ExternalActivity is one synced activity from an external provider.
// Unique per (UserID, Provider, ProviderActivityID); sync upserts.
type ExternalActivity struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	Provider           string             `bson:"provider" json:"provider"`
	ProviderActivityID string             `bson:"providerActivityId" json:"providerActivityId"`

	Name           string     `bson:"name,omitempty" json:"name,omitempty"`
	SportType      string     `bson:"sportType,omitempty" json:"sportType,omitempty"`
	DistanceMeters float64    `bson:"distanceMeters,omitempty" json:"distanceMeters,omitempty"`
	MovingSeconds  int        `bson:"movingSeconds,omitempty" json:"movingSeconds,omitempty"`
	ElapsedSeconds int        `bson:"elapsedSeconds,omitempty" json:"elapsedSeconds,omitempty"`
	StartDate      *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
