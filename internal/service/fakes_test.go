package service

import (
	"context"
	"sort"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations'
// contracts: copies in, copies out, repository.ErrNotFound on misses.

func planKey(userID primitive.ObjectID, date time.Time) string {
	return userID.Hex() + "|" + domain.FormatDate(date)
}

// --- day plans ---

type fakePlanRepo struct {
	plans map[string]domain.DayPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]domain.DayPlan)}
}

func (r *fakePlanRepo) GetOrCreate(_ context.Context, userID primitive.ObjectID, date time.Time, defaults *domain.DayPlan) (*domain.DayPlan, error) {
	date = domain.DateOf(date)
	k := planKey(userID, date)
	if p, ok := r.plans[k]; ok {
		return &p, nil
	}
	p := *defaults
	p.ID = primitive.NewObjectID()
	p.UserID = userID
	p.Date = date
	r.plans[k] = p
	return &p, nil
}

func (r *fakePlanRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) (*domain.DayPlan, error) {
	if p, ok := r.plans[planKey(userID, domain.DateOf(date))]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) GetByUserAndDates(_ context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.DayPlan, error) {
	var out []domain.DayPlan
	for _, d := range dates {
		if p, ok := r.plans[planKey(userID, domain.DateOf(d))]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, plan *domain.DayPlan) error {
	k := planKey(plan.UserID, plan.Date)
	if _, ok := r.plans[k]; !ok {
		return repository.ErrNotFound
	}
	r.plans[k] = *plan
	return nil
}

func (r *fakePlanRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	for k, p := range r.plans {
		if p.UserID == userID {
			delete(r.plans, k)
		}
	}
	return nil
}

// --- routines ---

type fakeRoutineRepo struct {
	routines map[primitive.ObjectID]domain.Routine
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]domain.Routine)}
}

func (r *fakeRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	routine.ID = primitive.NewObjectID()
	r.routines[routine.ID] = *routine
	return routine.ID, nil
}

func (r *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	if rt, ok := r.routines[id]; ok {
		return &rt, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoutineRepo) List(_ context.Context) ([]domain.Routine, error) {
	out := make([]domain.Routine, 0, len(r.routines))
	for _, rt := range r.routines {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRoutineRepo) Update(_ context.Context, routine *domain.Routine) error {
	if _, ok := r.routines[routine.ID]; !ok {
		return repository.ErrNotFound
	}
	r.routines[routine.ID] = *routine
	return nil
}

func (r *fakeRoutineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.routines, id)
	return nil
}

// --- routine items ---

type fakeItemRepo struct {
	items map[primitive.ObjectID]domain.RoutineItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[primitive.ObjectID]domain.RoutineItem)}
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.RoutineItem) (primitive.ObjectID, error) {
	item.ID = primitive.NewObjectID()
	r.items[item.ID] = *item
	return item.ID, nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.RoutineItem, error) {
	if it, ok := r.items[id]; ok {
		return &it, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeItemRepo) GetByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineItem, error) {
	var out []domain.RoutineItem
	for _, it := range r.items {
		if it.RoutineID == routineID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeItemRepo) MaxPosition(_ context.Context, routineID primitive.ObjectID) (int, error) {
	max := -1
	for _, it := range r.items {
		if it.RoutineID == routineID && it.Position > max {
			max = it.Position
		}
	}
	return max, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *domain.RoutineItem) error {
	stored, ok := r.items[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Copy the same fields the mongo repository writes; position moves only
	// through SetPosition.
	stored.Name = item.Name
	stored.ExerciseID = item.ExerciseID
	stored.VideoObjectKey = item.VideoObjectKey
	stored.Sets = item.Sets
	stored.Reps = item.Reps
	stored.Weight = item.Weight
	stored.Rest = item.Rest
	stored.Note = item.Note
	stored.UpdatedAt = item.UpdatedAt
	r.items[item.ID] = stored
	return nil
}

func (r *fakeItemRepo) SetPosition(_ context.Context, id primitive.ObjectID, position int) error {
	it, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.Position = position
	r.items[id] = it
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// --- exercises ---

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	if e, ok := r.exercises[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) List(_ context.Context) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, e := range r.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

// --- athlete logs ---

type fakeLogRepo struct {
	logs map[string]domain.AthleteLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[string]domain.AthleteLog)}
}

func (r *fakeLogRepo) Upsert(_ context.Context, log *domain.AthleteLog) error {
	r.logs[planKey(log.UserID, log.Date)] = *log
	return nil
}

func (r *fakeLogRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date time.Time) (*domain.AthleteLog, error) {
	if l, ok := r.logs[planKey(userID, domain.DateOf(date))]; ok {
		return &l, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLogRepo) GetByUserAndDates(_ context.Context, userID primitive.ObjectID, dates []time.Time) ([]domain.AthleteLog, error) {
	var out []domain.AthleteLog
	for _, d := range dates {
		if l, ok := r.logs[planKey(userID, domain.DateOf(d))]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	for k, l := range r.logs {
		if l.UserID == userID {
			delete(r.logs, k)
		}
	}
	return nil
}

// --- athlete checks ---

type fakeCheckRepo struct {
	checks map[string]domain.AthleteCheck
}

func newFakeCheckRepo() *fakeCheckRepo {
	return &fakeCheckRepo{checks: make(map[string]domain.AthleteCheck)}
}

func checkKey(userID primitive.ObjectID, date time.Time, itemID primitive.ObjectID) string {
	return planKey(userID, date) + "|" + itemID.Hex()
}

func (r *fakeCheckRepo) Upsert(_ context.Context, check *domain.AthleteCheck) error {
	r.checks[checkKey(check.UserID, check.Date, check.RoutineItemID)] = *check
	return nil
}

func (r *fakeCheckRepo) GetByUserDateAndItems(_ context.Context, userID primitive.ObjectID, date time.Time, itemIDs []primitive.ObjectID) ([]domain.AthleteCheck, error) {
	var out []domain.AthleteCheck
	for _, itemID := range itemIDs {
		if c, ok := r.checks[checkKey(userID, domain.DateOf(date), itemID)]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCheckRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	for k, c := range r.checks {
		if c.UserID == userID {
			delete(r.checks, k)
		}
	}
	return nil
}

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ListAthletes(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.IsAthlete() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
