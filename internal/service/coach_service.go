package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoutineNotFound     = errors.New("routine not found")
	ErrRoutineItemNotFound = errors.New("routine item not found")
	ErrPlanNotFound        = errors.New("day plan not found")
	ErrAthleteUnavailable  = errors.New("athlete marked the day as unavailable")
	ErrInvalidRoutineRef   = errors.New("invalid routine reference")
	ErrReorderMismatch     = errors.New("reorder list does not match routine items")
)

// DayPlanInput carries the coach's edit of one (athlete, date) cell. Main
// may hold either free text or a "ROUTINE:<id>" reference; the reference is
// resolved to a typed id at save time.
type DayPlanInput struct {
	PlanType      domain.PlanType
	Warmup        string
	Main          string
	Finisher      string
	ProposedScore string
	// Force saves a non-rest plan even on a day the athlete blocked.
	Force bool
}

// RoutineInput is the coach's routine create/update payload.
type RoutineInput struct {
	Name        string
	Type        string
	Description string
}

// RoutineItemInput is the coach's routine item create/update payload.
type RoutineItemInput struct {
	ExerciseID *primitive.ObjectID
	Name       string
	Sets       string
	Reps       string
	Weight     string
	Rest       string
	Note       string
}

// --- Service Interface ---
type CoachService interface {
	ListAthletes(ctx context.Context) ([]domain.User, error)
	CreateAthlete(ctx context.Context, name, email, password, group string) (*domain.User, error)
	// DeleteAthlete removes the athlete and all of their plans, logs and
	// checks.
	DeleteAthlete(ctx context.Context, athleteID primitive.ObjectID) error

	// PlannerWeek ensures and returns one plan per athlete per date.
	PlannerWeek(ctx context.Context, dates []time.Time) ([]PlannerRow, error)
	// SaveDay writes the coach's plan for one (athlete, date). Saving a
	// non-rest plan on a blocked day fails with ErrAthleteUnavailable
	// unless forced.
	SaveDay(ctx context.Context, athleteID primitive.ObjectID, date time.Time, input DayPlanInput) (*domain.DayPlan, error)

	CreateRoutine(ctx context.Context, coachID primitive.ObjectID, input RoutineInput) (*domain.Routine, error)
	ListRoutines(ctx context.Context) ([]domain.Routine, error)
	GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, []domain.RoutineItem, error)
	UpdateRoutine(ctx context.Context, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error)
	DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error
	SaveTimerPreset(ctx context.Context, routineID primitive.ObjectID, preset *domain.TimerPreset) (*domain.Routine, error)

	AddItem(ctx context.Context, routineID primitive.ObjectID, input RoutineItemInput) (*domain.RoutineItem, error)
	UpdateItem(ctx context.Context, itemID primitive.ObjectID, input RoutineItemInput) (*domain.RoutineItem, error)
	DeleteItem(ctx context.Context, itemID primitive.ObjectID) error
	// ReorderItems rewrites positions 0..n-1 following the given order.
	// The list must be a permutation of the routine's item ids.
	ReorderItems(ctx context.Context, routineID primitive.ObjectID, orderedItemIDs []primitive.ObjectID) error
}

// PlannerRow is one athlete's week in the coach planner grid.
type PlannerRow struct {
	Athlete domain.User       `json:"athlete"`
	Plans   []*domain.DayPlan `json:"plans"` // ordered as the requested dates
}

// --- Service Implementation ---

type coachService struct {
	userRepo     repository.UserRepository
	planRepo     repository.DayPlanRepository
	routRepo     repository.RoutineRepository
	itemRepo     repository.RoutineItemRepository
	exerciseRepo repository.ExerciseRepository
	logRepo      repository.AthleteLogRepository
	chkRepo      repository.AthleteCheckRepository
	schedule     ScheduleService
	auth         AuthService
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	planRepo repository.DayPlanRepository,
	routRepo repository.RoutineRepository,
	itemRepo repository.RoutineItemRepository,
	exerciseRepo repository.ExerciseRepository,
	logRepo repository.AthleteLogRepository,
	chkRepo repository.AthleteCheckRepository,
	schedule ScheduleService,
	auth AuthService,
) CoachService {
	return &coachService{
		userRepo:     userRepo,
		planRepo:     planRepo,
		routRepo:     routRepo,
		itemRepo:     itemRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
		chkRepo:      chkRepo,
		schedule:     schedule,
		auth:         auth,
	}
}

func (s *coachService) ListAthletes(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListAthletes(ctx)
}

func (s *coachService) CreateAthlete(ctx context.Context, name, email, password, group string) (*domain.User, error) {
	return s.auth.Register(ctx, name, email, password, domain.RoleAthlete, group)
}

// DeleteAthlete cascades over everything keyed by the athlete's id.
func (s *coachService) DeleteAthlete(ctx context.Context, athleteID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsAthlete() {
		return errors.New("only athlete accounts can be deleted")
	}

	if err := s.planRepo.DeleteByUser(ctx, athleteID); err != nil {
		return err
	}
	if err := s.logRepo.DeleteByUser(ctx, athleteID); err != nil {
		return err
	}
	if err := s.chkRepo.DeleteByUser(ctx, athleteID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, athleteID)
}

// PlannerWeek builds the grid the coach edits: every athlete, every date,
// plans lazily created so each cell is editable.
func (s *coachService) PlannerWeek(ctx context.Context, dates []time.Time) ([]PlannerRow, error) {
	athletes, err := s.userRepo.ListAthletes(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]PlannerRow, 0, len(athletes))
	for _, a := range athletes {
		plans, err := s.schedule.EnsurePlans(ctx, a.ID, dates)
		if err != nil {
			return nil, err
		}
		rows = append(rows, PlannerRow{
			Athlete: a,
			Plans:   orderedPlans(dates, plans),
		})
	}
	return rows, nil
}

// SaveDay writes the plan for one cell. A "ROUTINE:<id>" main is resolved to
// a typed reference; an unknown or malformed reference is rejected loudly
// rather than stored as dead text.
func (s *coachService) SaveDay(ctx context.Context, athleteID primitive.ObjectID, date time.Time, input DayPlanInput) (*domain.DayPlan, error) {
	date = domain.DateOf(date)

	planType := input.PlanType
	if planType == "" {
		planType = domain.PlanRest
	}

	plan, err := s.planRepo.GetOrCreate(ctx, athleteID, date, &domain.DayPlan{
		PlanType: domain.PlanRest,
		CanTrain: true,
	})
	if err != nil {
		return nil, err
	}

	if !plan.CanTrain && planType != domain.PlanRest && !input.Force {
		return nil, ErrAthleteUnavailable
	}

	plan.PlanType = planType
	plan.Warmup = strings.TrimSpace(input.Warmup)
	plan.Finisher = strings.TrimSpace(input.Finisher)
	plan.ProposedScore = strings.TrimSpace(input.ProposedScore)

	main := strings.TrimSpace(input.Main)
	if id, ok := domain.ParseRoutineRef(main); ok {
		if _, err := s.routRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidRoutineRef
			}
			return nil, err
		}
		plan.RoutineID = &id
		plan.Main = ""
	} else {
		if strings.HasPrefix(main, "ROUTINE:") {
			return nil, ErrInvalidRoutineRef
		}
		plan.RoutineID = nil
		plan.Main = main
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *coachService) CreateRoutine(ctx context.Context, coachID primitive.ObjectID, input RoutineInput) (*domain.Routine, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("routine name cannot be empty")
	}
	routine := &domain.Routine{
		Name:        strings.TrimSpace(input.Name),
		Type:        strings.TrimSpace(input.Type),
		Description: input.Description,
		CreatedBy:   &coachID,
	}
	id, err := s.routRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = id
	return routine, nil
}

func (s *coachService) ListRoutines(ctx context.Context) ([]domain.Routine, error) {
	return s.routRepo.List(ctx)
}

func (s *coachService) GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, []domain.RoutineItem, error) {
	routine, err := s.routRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrRoutineNotFound
		}
		return nil, nil, err
	}
	items, err := s.itemRepo.GetByRoutineID(ctx, routineID)
	if err != nil {
		return nil, nil, err
	}
	return routine, items, nil
}

func (s *coachService) UpdateRoutine(ctx context.Context, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error) {
	routine, err := s.routRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		routine.Name = name
	}
	routine.Type = strings.TrimSpace(input.Type)
	routine.Description = input.Description

	if err := s.routRepo.Update(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// DeleteRoutine removes the routine and its items. Day plans referencing it
// keep their id; day detail treats the dangling reference as absent.
func (s *coachService) DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error {
	items, err := s.itemRepo.GetByRoutineID(ctx, routineID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.itemRepo.Delete(ctx, it.ID); err != nil {
			return err
		}
	}
	err = s.routRepo.Delete(ctx, routineID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRoutineNotFound
	}
	return err
}

func (s *coachService) SaveTimerPreset(ctx context.Context, routineID primitive.ObjectID, preset *domain.TimerPreset) (*domain.Routine, error) {
	routine, err := s.routRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if preset != nil && preset.CountIn <= 0 {
		preset.CountIn = PresetCountIn
	}
	routine.TimerPreset = preset
	if err := s.routRepo.Update(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// AddItem appends the item at the end of the routine's order.
func (s *coachService) AddItem(ctx context.Context, routineID primitive.ObjectID, input RoutineItemInput) (*domain.RoutineItem, error) {
	if _, err := s.routRepo.GetByID(ctx, routineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("item name cannot be empty")
	}

	maxPos, err := s.itemRepo.MaxPosition(ctx, routineID)
	if err != nil {
		return nil, err
	}

	// An item created from a bank entry inherits its demo video.
	videoKey := ""
	if input.ExerciseID != nil {
		exercise, err := s.exerciseRepo.GetByID(ctx, *input.ExerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrExerciseNotFound
			}
			return nil, err
		}
		videoKey = exercise.VideoObjectKey
	}

	item := &domain.RoutineItem{
		RoutineID:      routineID,
		ExerciseID:     input.ExerciseID,
		Position:       maxPos + 1,
		Name:           strings.TrimSpace(input.Name),
		Sets:           input.Sets,
		Reps:           input.Reps,
		Weight:         input.Weight,
		Rest:           input.Rest,
		Note:           input.Note,
		VideoObjectKey: videoKey,
	}
	id, err := s.itemRepo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

func (s *coachService) UpdateItem(ctx context.Context, itemID primitive.ObjectID, input RoutineItemInput) (*domain.RoutineItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineItemNotFound
		}
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}

	// The demo video mirrors the bank entry, so re-pointing the item swaps
	// the video along with the exercise link.
	if input.ExerciseID != nil {
		if item.ExerciseID == nil || *item.ExerciseID != *input.ExerciseID {
			exercise, err := s.exerciseRepo.GetByID(ctx, *input.ExerciseID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrExerciseNotFound
				}
				return nil, err
			}
			item.VideoObjectKey = exercise.VideoObjectKey
		}
	} else {
		item.VideoObjectKey = ""
	}
	item.ExerciseID = input.ExerciseID
	item.Sets = input.Sets
	item.Reps = input.Reps
	item.Weight = input.Weight
	item.Rest = input.Rest
	item.Note = input.Note

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *coachService) DeleteItem(ctx context.Context, itemID primitive.ObjectID) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineItemNotFound
		}
		return err
	}
	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}
	// Close the gap so positions stay dense.
	items, err := s.itemRepo.GetByRoutineID(ctx, item.RoutineID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].Position != i {
			if err := s.itemRepo.SetPosition(ctx, items[i].ID, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReorderItems rewrites positions to match the submitted order exactly.
func (s *coachService) ReorderItems(ctx context.Context, routineID primitive.ObjectID, orderedItemIDs []primitive.ObjectID) error {
	items, err := s.itemRepo.GetByRoutineID(ctx, routineID)
	if err != nil {
		return err
	}
	if len(items) != len(orderedItemIDs) {
		return ErrReorderMismatch
	}

	byID := make(map[primitive.ObjectID]bool, len(items))
	for _, it := range items {
		byID[it.ID] = true
	}
	for _, id := range orderedItemIDs {
		if !byID[id] {
			return ErrReorderMismatch
		}
		delete(byID, id)
	}

	for pos, id := range orderedItemIDs {
		if err := s.itemRepo.SetPosition(ctx, id, pos); err != nil {
			return err
		}
	}
	return nil
}
