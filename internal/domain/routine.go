package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimerPreset is the stored interval-timer configuration of a routine.
// Zero-valued fields mean "not supplied"; the resolver fills defaults.
type TimerPreset struct {
	Work            int `bson:"work,omitempty" json:"work,omitempty"`
	Rest            int `bson:"rest,omitempty" json:"rest,omitempty"`
	Rounds          int `bson:"rounds,omitempty" json:"rounds,omitempty"`
	Sets            int `bson:"sets,omitempty" json:"sets,omitempty"`
	RestBetweenSets int `bson:"restBetweenSets,omitempty" json:"restBetweenSets,omitempty"`
	FinisherRest    int `bson:"finisherRest,omitempty" json:"finisherRest,omitempty"`
	CountIn         int `bson:"countIn,omitempty" json:"countIn,omitempty"`
}

// Routine is a named, reusable sequence of exercises a coach assigns to
// day plans.
type Routine struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Type        string              `bson:"type,omitempty" json:"type,omitempty"` // e.g. "General", "Tabata"
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	TimerPreset *TimerPreset        `bson:"timerPreset,omitempty" json:"timerPreset,omitempty"`
	CreatedBy   *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsIntervalRoutine reports whether the routine drives the interval-timer
// player: either it carries a stored preset or its type names tabata.
func (r *Routine) IsIntervalRoutine() bool {
	if r.TimerPreset != nil {
		return true
	}
	return strings.Contains(strings.ToLower(r.Type), "tabata")
}

// routineRefPrefix is the legacy text encoding of a routine reference inside
// a plan's main block ("ROUTINE:<hex id>"). New writes store the typed
// RoutineID instead; the prefix form is only parsed on input.
const routineRefPrefix = "ROUTINE:"

// ParseRoutineRef extracts the routine id from a "ROUTINE:<id>" reference.
// Malformed input (wrong prefix, non-ObjectID id) yields ok=false, never an
// error: a bad reference simply resolves to no routine.
func ParseRoutineRef(s string) (primitive.ObjectID, bool) {
	if !strings.HasPrefix(s, routineRefPrefix) {
		return primitive.NilObjectID, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(s, routineRefPrefix))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// FormatRoutineRef renders the text form of a routine reference.
func FormatRoutineRef(id primitive.ObjectID) string {
	return routineRefPrefix + id.Hex()
}
