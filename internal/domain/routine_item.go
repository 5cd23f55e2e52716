package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineItem is one exercise entry within a Routine, with its prescription
// details. Position defines iteration order within the routine; after a
// reorder positions are rewritten 0..n-1.
type RoutineItem struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RoutineID  primitive.ObjectID  `bson:"routineId" json:"routineId"`
	ExerciseID *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"` // Bank entry this item was created from
	Position   int                 `bson:"position" json:"position"`

	Name   string `bson:"name" json:"name"`
	Sets   string `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps   string `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight string `bson:"weight,omitempty" json:"weight,omitempty"`
	Rest   string `bson:"rest,omitempty" json:"rest,omitempty"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`

	// VideoObjectKey points at the demo video in object storage, mirrored
	// from the exercise bank entry the item is linked to.
	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
