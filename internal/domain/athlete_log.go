package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteLog is the athlete's self-reported outcome for one date.
// Exactly one log exists per (UserID, Date); upserted on save.
type AthleteLog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Date     time.Time          `bson:"date" json:"date"`
	DidTrain bool               `bson:"didTrain" json:"didTrain"`

	WarmupDone   string `bson:"warmupDone,omitempty" json:"warmupDone,omitempty"`
	MainDone     string `bson:"mainDone,omitempty" json:"mainDone,omitempty"`
	FinisherDone string `bson:"finisherDone,omitempty" json:"finisherDone,omitempty"`

	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AthleteCheck is the completion flag for one routine item on one date for
// one user. Exactly one check exists per (UserID, Date, RoutineItemID).
type AthleteCheck struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Date          time.Time          `bson:"date" json:"date"`
	RoutineItemID primitive.ObjectID `bson:"routineItemId" json:"routineItemId"`
	Done          bool               `bson:"done" json:"done"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
