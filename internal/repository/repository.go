package repository

import (
	"context"
	"time"

	"vir/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListAthletes(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DayPlanRepository defines the interface for interacting with day plans.
// GetOrCreate must be atomic: concurrent calls for the same (user, date)
// converge on a single stored plan.
type DayPlanRepository interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, date time.Time, defaults *domain.DayPlan) (*domain.DayPlan, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DayPlan, error)
	GetByUserAndDates(ctx context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.DayPlan, error)
	Update(ctx context.Context, plan *domain.DayPlan) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// RoutineRepository defines the interface for interacting with routines.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	List(ctx context.Context) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RoutineItemRepository defines the interface for routine items. Items are
// always returned ordered by (position, id).
type RoutineItemRepository interface {
	Create(ctx context.Context, item *domain.RoutineItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineItem, error)
	GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineItem, error)
	MaxPosition(ctx context.Context, routineID primitive.ObjectID) (int, error)
	Update(ctx context.Context, item *domain.RoutineItem) error
	SetPosition(ctx context.Context, id primitive.ObjectID, position int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the exercise bank.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
}

// AthleteLogRepository defines the interface for athlete self-reports.
type AthleteLogRepository interface {
	Upsert(ctx context.Context, log *domain.AthleteLog) error
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.AthleteLog, error)
	GetByUserAndDates(ctx context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.AthleteLog, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// AthleteCheckRepository defines the interface for per-item completion flags.
type AthleteCheckRepository interface {
	Upsert(ctx context.Context, check *domain.AthleteCheck) error
	GetByUserDateAndItems(ctx context.Context, userID primitive.ObjectID, date time.Time, itemIDs []primitive.ObjectID) ([]domain.AthleteCheck, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// IntegrationRepository defines the interface for external platform links
// and their synced activities.
type IntegrationRepository interface {
	UpsertAccount(ctx context.Context, account *domain.IntegrationAccount) error
	GetAccount(ctx context.Context, userID primitive.ObjectID, provider string) (*domain.IntegrationAccount, error)
	UpsertActivity(ctx context.Context, activity *domain.ExternalActivity) (inserted bool, err error)
	ListActivities(ctx context.Context, userID primitive.ObjectID, provider string, limit int64) ([]domain.ExternalActivity, error)
}
