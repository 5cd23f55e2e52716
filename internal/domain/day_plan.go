package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType classifies what kind of training a day prescribes.
type PlanType string

const (
	PlanRest     PlanType = "rest"
	PlanStrength PlanType = "strength"
	PlanCardio   PlanType = "cardio"
)

// DayPlan is one calendar day's prescribed training for one user.
// Exactly one plan exists per (UserID, Date); the pair is backed by a
// unique index.
type DayPlan struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Date     time.Time          `bson:"date" json:"date"` // civil date, 00:00 UTC
	PlanType PlanType           `bson:"planType" json:"planType"`

	Warmup   string `bson:"warmup,omitempty" json:"warmup,omitempty"`
	Main     string `bson:"main,omitempty" json:"main,omitempty"`
	Finisher string `bson:"finisher,omitempty" json:"finisher,omitempty"`

	// RoutineID links a strength day to its routine. Nullable: most days
	// have no routine attached.
	RoutineID *primitive.ObjectID `bson:"routineId,omitempty" json:"routineId,omitempty"`

	// Scores are free text ("142 reps", "12:30"), set by the coach and the
	// athlete respectively.
	ProposedScore  string `bson:"proposedScore,omitempty" json:"proposedScore,omitempty"`
	CompletedScore string `bson:"completedScore,omitempty" json:"completedScore,omitempty"`

	// CanTrain is the athlete's availability flag for the day. Defaults to
	// true; the athlete can block a day before the coach plans it.
	CanTrain       bool   `bson:"canTrain" json:"canTrain"`
	AthleteComment string `bson:"athleteComment,omitempty" json:"athleteComment,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *DayPlan) IsRest() bool {
	return p.PlanType == PlanRest
}

func (p *DayPlan) IsStrength() bool {
	return p.PlanType == PlanStrength
}
