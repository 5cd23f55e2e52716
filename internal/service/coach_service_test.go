package service

import (
	"context"
	"testing"
	"time"

	"vir/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type coachFixture struct {
	svc       CoachService
	users     *fakeUserRepo
	plans     *fakePlanRepo
	routines  *fakeRoutineRepo
	items     *fakeItemRepo
	exercises *fakeExerciseRepo
	logs      *fakeLogRepo
	checks    *fakeCheckRepo
	coachID   primitive.ObjectID
}

func newCoachFixture(t *testing.T) *coachFixture {
	t.Helper()
	f := &coachFixture{
		users:     newFakeUserRepo(),
		plans:     newFakePlanRepo(),
		routines:  newFakeRoutineRepo(),
		items:     newFakeItemRepo(),
		exercises: newFakeExerciseRepo(),
		logs:      newFakeLogRepo(),
		checks:    newFakeCheckRepo(),
	}
	schedule := &scheduleService{
		planRepo:    f.plans,
		routineRepo: f.routines,
		itemRepo:    f.items,
		logRepo:     f.logs,
		checkRepo:   f.checks,
		streak:      StreakPolicy{LookbackDays: 30},
		today:       domain.Today,
	}
	auth := NewAuthService(f.users, "test-secret", time.Hour)
	f.svc = NewCoachService(f.users, f.plans, f.routines, f.items, f.exercises, f.logs, f.checks, schedule, auth)

	coachID, err := f.users.Create(context.Background(), &domain.User{
		Name: "Coach", Email: "coach@example.com", Role: domain.RoleCoach,
	})
	require.NoError(t, err)
	f.coachID = coachID
	return f
}

func (f *coachFixture) athlete(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	user, err := f.svc.CreateAthlete(context.Background(), name, email, "password123", "morning")
	require.NoError(t, err)
	return user.ID
}

func (f *coachFixture) routineWithItems(t *testing.T, n int) (primitive.ObjectID, []primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	routine, err := f.svc.CreateRoutine(ctx, f.coachID, RoutineInput{Name: "Strength A"})
	require.NoError(t, err)

	itemIDs := make([]primitive.ObjectID, n)
	for i := 0; i < n; i++ {
		item, err := f.svc.AddItem(ctx, routine.ID, RoutineItemInput{Name: "Item"})
		require.NoError(t, err)
		itemIDs[i] = item.ID
	}
	return routine.ID, itemIDs
}

func TestSaveDay_FreeTextMain(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	athleteID := f.athlete(t, "Ann", "ann@example.com")
	date := domain.DateOf(time.Now())

	plan, err := f.svc.SaveDay(ctx, athleteID, date, DayPlanInput{
		PlanType: domain.PlanStrength,
		Warmup:   "5 min row",
		Main:     "3x5 back squat",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStrength, plan.PlanType)
	assert.Equal(t, "3x5 back squat", plan.Main)
	assert.Nil(t, plan.RoutineID)
}

func TestSaveDay_ResolvesRoutineRef(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	athleteID := f.athlete(t, "Ann", "ann@example.com")
	routineID, _ := f.routineWithItems(t, 2)

	plan, err := f.svc.SaveDay(ctx, athleteID, domain.Today(), DayPlanInput{
		PlanType: domain.PlanStrength,
		Main:     domain.FormatRoutineRef(routineID),
	})
	require.NoError(t, err)
	require.NotNil(t, plan.RoutineID)
	assert.Equal(t, routineID, *plan.RoutineID)
	assert.Empty(t, plan.Main, "the reference must not survive as free text")
}

func TestSaveDay_RejectsUnknownRoutineRef(t *testing.T) {
	f := newCoachFixture(t)
	athleteID := f.athlete(t, "Ann", "ann@example.com")

	_, err := f.svc.SaveDay(context.Background(), athleteID, domain.Today(), DayPlanInput{
		PlanType: domain.PlanStrength,
		Main:     domain.FormatRoutineRef(primitive.NewObjectID()),
	})
	assert.ErrorIs(t, err, ErrInvalidRoutineRef)
}

func TestSaveDay_RejectsMalformedRoutineRef(t *testing.T) {
	f := newCoachFixture(t)
	athleteID := f.athlete(t, "Ann", "ann@example.com")

	_, err := f.svc.SaveDay(context.Background(), athleteID, domain.Today(), DayPlanInput{
		PlanType: domain.PlanStrength,
		Main:     "ROUTINE:not-an-id",
	})
	assert.ErrorIs(t, err, ErrInvalidRoutineRef)
}

func TestSaveDay_BlockedDayRejectsTraining(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	athleteID := f.athlete(t, "Ann", "ann@example.com")
	date := domain.Today()

	athleteSvc := NewAthleteService(f.plans, f.items, f.logs, f.checks)
	_, err := athleteSvc.SaveAvailability(ctx, athleteID, date, false, "travelling")
	require.NoError(t, err)

	_, err = f.svc.SaveDay(ctx, athleteID, date, DayPlanInput{PlanType: domain.PlanStrength})
	assert.ErrorIs(t, err, ErrAthleteUnavailable)

	// A rest plan is always allowed.
	_, err = f.svc.SaveDay(ctx, athleteID, date, DayPlanInput{PlanType: domain.PlanRest})
	assert.NoError(t, err)

	// And the coach can override deliberately.
	plan, err := f.svc.SaveDay(ctx, athleteID, date, DayPlanInput{PlanType: domain.PlanStrength, Force: true})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStrength, plan.PlanType)
	assert.False(t, plan.CanTrain, "forcing does not flip the athlete's flag")
}

func TestAddItem_AppendsAtEnd(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, itemIDs := f.routineWithItems(t, 3)

	items, err := f.items.GetByRoutineID(ctx, routineID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
		assert.Equal(t, itemIDs[i], it.ID)
	}
}

func TestAddItem_CopiesBankVideo(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, _ := f.routineWithItems(t, 1)

	exID, err := f.exercises.Create(ctx, &domain.Exercise{
		Name: "Back Squat", VideoObjectKey: "exercises/abc/demo.mp4",
	})
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, routineID, RoutineItemInput{Name: "Back Squat", ExerciseID: &exID})
	require.NoError(t, err)
	assert.Equal(t, "exercises/abc/demo.mp4", item.VideoObjectKey)

	unknown := primitive.NewObjectID()
	_, err = f.svc.AddItem(ctx, routineID, RoutineItemInput{Name: "Ghost", ExerciseID: &unknown})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestUpdateItem_RenamePersists(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	_, itemIDs := f.routineWithItems(t, 1)

	exID, err := f.exercises.Create(ctx, &domain.Exercise{
		Name: "Front Squat", VideoObjectKey: "exercises/fs/demo.mp4",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, itemIDs[0], RoutineItemInput{
		Name: "Front Squat", ExerciseID: &exID, Sets: "5", Reps: "3",
	})
	require.NoError(t, err)

	stored, err := f.items.GetByID(ctx, itemIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Front Squat", stored.Name)
	require.NotNil(t, stored.ExerciseID)
	assert.Equal(t, exID, *stored.ExerciseID)
	assert.Equal(t, "5", stored.Sets)
	assert.Equal(t, "3", stored.Reps)
}

func TestUpdateItem_RepointsBankVideo(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, _ := f.routineWithItems(t, 1)

	firstID, err := f.exercises.Create(ctx, &domain.Exercise{
		Name: "Deadlift", VideoObjectKey: "exercises/dl/demo.mp4",
	})
	require.NoError(t, err)
	secondID, err := f.exercises.Create(ctx, &domain.Exercise{
		Name: "Romanian Deadlift", VideoObjectKey: "exercises/rdl/demo.mp4",
	})
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, routineID, RoutineItemInput{Name: "Deadlift", ExerciseID: &firstID})
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, item.ID, RoutineItemInput{
		Name: "Romanian Deadlift", ExerciseID: &secondID,
	})
	require.NoError(t, err)
	stored, err := f.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "exercises/rdl/demo.mp4", stored.VideoObjectKey)

	// Detaching the bank link drops the mirrored video.
	_, err = f.svc.UpdateItem(ctx, item.ID, RoutineItemInput{Name: "Romanian Deadlift"})
	require.NoError(t, err)
	stored, err = f.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ExerciseID)
	assert.Empty(t, stored.VideoObjectKey)

	unknown := primitive.NewObjectID()
	_, err = f.svc.UpdateItem(ctx, item.ID, RoutineItemInput{Name: "Ghost", ExerciseID: &unknown})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestReorderItems(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, itemIDs := f.routineWithItems(t, 3)

	err := f.svc.ReorderItems(ctx, routineID, []primitive.ObjectID{itemIDs[2], itemIDs[0], itemIDs[1]})
	require.NoError(t, err)

	items, err := f.items.GetByRoutineID(ctx, routineID)
	require.NoError(t, err)
	assert.Equal(t, itemIDs[2], items[0].ID)
	assert.Equal(t, itemIDs[0], items[1].ID)
	assert.Equal(t, itemIDs[1], items[2].ID)
}

func TestReorderItems_RejectsMismatch(t *testing.T) {
	f := newCoachFixture(t)
	routineID, itemIDs := f.routineWithItems(t, 3)

	err := f.svc.ReorderItems(context.Background(), routineID, itemIDs[:2])
	assert.ErrorIs(t, err, ErrReorderMismatch)

	err = f.svc.ReorderItems(context.Background(), routineID,
		[]primitive.ObjectID{itemIDs[0], itemIDs[1], primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrReorderMismatch)
}

func TestDeleteItem_CompactsPositions(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, itemIDs := f.routineWithItems(t, 3)

	require.NoError(t, f.svc.DeleteItem(ctx, itemIDs[1]))

	items, err := f.items.GetByRoutineID(ctx, routineID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, 1, items[1].Position)
}

func TestDeleteRoutine_RemovesItems(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, _ := f.routineWithItems(t, 2)

	require.NoError(t, f.svc.DeleteRoutine(ctx, routineID))

	items, err := f.items.GetByRoutineID(ctx, routineID)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, _, err = f.svc.GetRoutine(ctx, routineID)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestDeleteAthlete_Cascades(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	athleteID := f.athlete(t, "Ann", "ann@example.com")
	date := domain.Today()

	_, err := f.plans.GetOrCreate(ctx, athleteID, date, &domain.DayPlan{PlanType: domain.PlanRest, CanTrain: true})
	require.NoError(t, err)
	require.NoError(t, f.logs.Upsert(ctx, &domain.AthleteLog{UserID: athleteID, Date: date, DidTrain: true}))
	require.NoError(t, f.checks.Upsert(ctx, &domain.AthleteCheck{
		UserID: athleteID, Date: date, RoutineItemID: primitive.NewObjectID(), Done: true,
	}))

	require.NoError(t, f.svc.DeleteAthlete(ctx, athleteID))

	_, err = f.users.GetByID(ctx, athleteID)
	assert.Error(t, err)
	assert.Empty(t, f.plans.plans)
	assert.Empty(t, f.logs.logs)
	assert.Empty(t, f.checks.checks)
}

func TestDeleteAthlete_RefusesCoach(t *testing.T) {
	f := newCoachFixture(t)
	err := f.svc.DeleteAthlete(context.Background(), f.coachID)
	assert.Error(t, err)
}

func TestPlannerWeek_OneRowPerAthlete(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	f.athlete(t, "Ann", "ann@example.com")
	f.athlete(t, "Bob", "bob@example.com")
	dates := domain.WeekDates(domain.Today())

	rows, err := f.svc.PlannerWeek(ctx, dates)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row.Plans, 7)
		for _, p := range row.Plans {
			require.NotNil(t, p)
			assert.Equal(t, row.Athlete.ID, p.UserID)
		}
	}
}

func TestSaveTimerPreset(t *testing.T) {
	f := newCoachFixture(t)
	ctx := context.Background()
	routineID, _ := f.routineWithItems(t, 2)

	routine, err := f.svc.SaveTimerPreset(ctx, routineID, &domain.TimerPreset{Work: 20, Rest: 10})
	require.NoError(t, err)
	require.NotNil(t, routine.TimerPreset)
	assert.True(t, routine.IsIntervalRoutine())
	// A preset saved without a count-in gets the preset default.
	assert.Equal(t, PresetCountIn, routine.TimerPreset.CountIn)
}
