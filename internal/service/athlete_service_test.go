package service

import (
	"context"
	"testing"

	"vir/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAthleteFixture() (AthleteService, *fakePlanRepo, *fakeItemRepo, *fakeLogRepo, *fakeCheckRepo) {
	plans := newFakePlanRepo()
	items := newFakeItemRepo()
	logs := newFakeLogRepo()
	checks := newFakeCheckRepo()
	return NewAthleteService(plans, items, logs, checks), plans, items, logs, checks
}

func TestCheckItem_UnknownItemRejected(t *testing.T) {
	svc, _, _, _, _ := newAthleteFixture()

	err := svc.CheckItem(context.Background(), primitive.NewObjectID(), domain.Today(), primitive.NewObjectID(), true)
	assert.ErrorIs(t, err, ErrRoutineItemNotFound)
}

func TestCheckItem_UpsertsAndToggles(t *testing.T) {
	svc, _, items, _, checks := newAthleteFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	date := domain.Today()

	itemID, err := items.Create(ctx, &domain.RoutineItem{RoutineID: primitive.NewObjectID(), Name: "Squat"})
	require.NoError(t, err)

	require.NoError(t, svc.CheckItem(ctx, userID, date, itemID, true))
	stored, err := checks.GetByUserDateAndItems(ctx, userID, date, []primitive.ObjectID{itemID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Done)

	// Unchecking overwrites, it does not duplicate.
	require.NoError(t, svc.CheckItem(ctx, userID, date, itemID, false))
	stored, err = checks.GetByUserDateAndItems(ctx, userID, date, []primitive.ObjectID{itemID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Done)
}

func TestSaveLog_Upserts(t *testing.T) {
	svc, _, _, logs, _ := newAthleteFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	date := domain.Today()

	_, err := svc.SaveLog(ctx, userID, date, AthleteLogInput{DidTrain: true, MainDone: "all sets"})
	require.NoError(t, err)

	_, err = svc.SaveLog(ctx, userID, date, AthleteLogInput{DidTrain: false, MainDone: "bailed early"})
	require.NoError(t, err)

	stored, err := logs.GetByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	assert.False(t, stored.DidTrain)
	assert.Equal(t, "bailed early", stored.MainDone)
}

func TestSaveAvailability_PreservesPlanContent(t *testing.T) {
	svc, plans, _, _, _ := newAthleteFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	date := domain.Today()

	plan, err := plans.GetOrCreate(ctx, userID, date, &domain.DayPlan{PlanType: domain.PlanRest, CanTrain: true})
	require.NoError(t, err)
	plan.PlanType = domain.PlanStrength
	plan.Main = "3x5 deadlift"
	require.NoError(t, plans.Update(ctx, plan))

	updated, err := svc.SaveAvailability(ctx, userID, date, false, "sick")
	require.NoError(t, err)
	assert.False(t, updated.CanTrain)
	assert.Equal(t, "sick", updated.AthleteComment)
	assert.Equal(t, domain.PlanStrength, updated.PlanType, "blocking must not erase the coach's plan")
	assert.Equal(t, "3x5 deadlift", updated.Main)
}

func TestSaveCompletedScore(t *testing.T) {
	svc, plans, _, _, _ := newAthleteFixture()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	date := domain.Today()

	plan, err := svc.SaveCompletedScore(ctx, userID, date, "142 reps")
	require.NoError(t, err)
	assert.Equal(t, "142 reps", plan.CompletedScore)

	stored, err := plans.GetByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	assert.Equal(t, "142 reps", stored.CompletedScore)
}
