package service

import (
	"context"
	"errors"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteLogInput is the athlete's self report for one day.
type AthleteLogInput struct {
	DidTrain     bool
	WarmupDone   string
	MainDone     string
	FinisherDone string
}

// --- Service Interface ---
type AthleteService interface {
	// CheckItem records one routine item as done or undone for the date.
	// The item must exist; a stale id is rejected, not swallowed.
	CheckItem(ctx context.Context, userID primitive.ObjectID, date time.Time, itemID primitive.ObjectID, done bool) error
	// SaveLog upserts the athlete's self report for the date.
	SaveLog(ctx context.Context, userID primitive.ObjectID, date time.Time, input AthleteLogInput) (*domain.AthleteLog, error)
	// SaveAvailability marks the date trainable or blocked, with an
	// optional comment for the coach.
	SaveAvailability(ctx context.Context, userID primitive.ObjectID, date time.Time, canTrain bool, comment string) (*domain.DayPlan, error)
	// SaveCompletedScore records the athlete's achieved score for the day.
	SaveCompletedScore(ctx context.Context, userID primitive.ObjectID, date time.Time, score string) (*domain.DayPlan, error)
}

// --- Service Implementation ---

type athleteService struct {
	planRepo  repository.DayPlanRepository
	itemRepo  repository.RoutineItemRepository
	logRepo   repository.AthleteLogRepository
	checkRepo repository.AthleteCheckRepository
}

// NewAthleteService creates a new instance of athleteService.
func NewAthleteService(
	planRepo repository.DayPlanRepository,
	itemRepo repository.RoutineItemRepository,
	logRepo repository.AthleteLogRepository,
	checkRepo repository.AthleteCheckRepository,
) AthleteService {
	return &athleteService{
		planRepo:  planRepo,
		itemRepo:  itemRepo,
		logRepo:   logRepo,
		checkRepo: checkRepo,
	}
}

func (s *athleteService) CheckItem(ctx context.Context, userID primitive.ObjectID, date time.Time, itemID primitive.ObjectID, done bool) error {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineItemNotFound
		}
		return err
	}

	check := &domain.AthleteCheck{
		UserID:        userID,
		Date:          domain.DateOf(date),
		RoutineItemID: itemID,
		Done:          done,
	}
	return s.checkRepo.Upsert(ctx, check)
}

func (s *athleteService) SaveLog(ctx context.Context, userID primitive.ObjectID, date time.Time, input AthleteLogInput) (*domain.AthleteLog, error) {
	log := &domain.AthleteLog{
		UserID:       userID,
		Date:         domain.DateOf(date),
		DidTrain:     input.DidTrain,
		WarmupDone:   input.WarmupDone,
		MainDone:     input.MainDone,
		FinisherDone: input.FinisherDone,
	}
	if err := s.logRepo.Upsert(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// SaveAvailability flips the plan's trainable flag. Blocking a day does not
// erase what the coach already planned; the coach sees the conflict instead.
func (s *athleteService) SaveAvailability(ctx context.Context, userID primitive.ObjectID, date time.Time, canTrain bool, comment string) (*domain.DayPlan, error) {
	date = domain.DateOf(date)

	plan, err := s.planRepo.GetOrCreate(ctx, userID, date, &domain.DayPlan{
		PlanType: domain.PlanRest,
		CanTrain: true,
	})
	if err != nil {
		return nil, err
	}

	plan.CanTrain = canTrain
	plan.AthleteComment = comment
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *athleteService) SaveCompletedScore(ctx context.Context, userID primitive.ObjectID, date time.Time, score string) (*domain.DayPlan, error) {
	date = domain.DateOf(date)

	plan, err := s.planRepo.GetOrCreate(ctx, userID, date, &domain.DayPlan{
		PlanType: domain.PlanRest,
		CanTrain: true,
	})
	if err != nil {
		return nil, err
	}

	plan.CompletedScore = score
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
