package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"
	"vir/coach-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound = errors.New("user not found")
)

// StreakPolicy tunes how the backward streak scan treats non-trained days.
type StreakPolicy struct {
	// LookbackDays bounds the scan; 0 means the default of 365.
	LookbackDays int
	// RestBreaks makes a planned rest day break the streak like a missed
	// training day would. Default false: rest-by-design is skipped, only a
	// planned-but-skipped training day breaks.
	RestBreaks bool
}

const defaultStreakLookbackDays = 365

// DayDetailItem is one routine item in the day-detail payload, with its demo
// video exposed as a presigned URL.
type DayDetailItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sets     string `json:"sets"`
	Reps     string `json:"reps"`
	Weight   string `json:"weight"`
	Rest     string `json:"rest"`
	Note     string `json:"note"`
	VideoURL string `json:"videoUrl"`
}

// DayDetailLog mirrors the athlete's self-report; zero-valued when no log
// exists for the day.
type DayDetailLog struct {
	DidTrain     bool   `json:"didTrain"`
	WarmupDone   string `json:"warmupDone"`
	MainDone     string `json:"mainDone"`
	FinisherDone string `json:"finisherDone"`
}

// DayDetail is the assembled view of one (user, date): plan, log, resolved
// routine with items and completion checks, and the timer link for interval
// routines. Absent pieces are null/empty, never errors.
type DayDetail struct {
	Date           string          `json:"date"`
	Plan           *domain.DayPlan `json:"plan"`
	Log            DayDetailLog    `json:"log"`
	Routine        *domain.Routine `json:"routine"`
	Items          []DayDetailItem `json:"items"`
	CheckedItemIDs []string        `json:"checkedItemIds"`
	TimerURL       string          `json:"timerUrl"`
}

// ProfileWeek is the week slice of the profile view.
type ProfileWeek struct {
	Dates     []string          `json:"dates"`
	Label     string            `json:"label"`
	Plans     []*domain.DayPlan `json:"plans"` // ordered as Dates
	DoneDates []string          `json:"doneDates"`
	Goal      int               `json:"goal"`
	Done      int               `json:"done"`
}

// ProfileMonth is the month slice of the profile view. Grid rows are full
// Monday..Sunday weeks; cells outside the month are empty strings.
type ProfileMonth struct {
	Label     string     `json:"label"`
	Dates     []string   `json:"dates"`
	DoneDates []string   `json:"doneDates"`
	Grid      [][]string `json:"grid"`
}

// ProfileView is the week+month view model behind the athlete profile page.
type ProfileView struct {
	UserID string       `json:"userId"`
	View   string       `json:"view"`
	Today  string       `json:"today"`
	Center string       `json:"center"`
	Week   ProfileWeek  `json:"week"`
	Month  ProfileMonth `json:"month"`
	Streak int          `json:"streak"`
}

// --- Service Interface ---
type ScheduleService interface {
	// EnsurePlans guarantees a DayPlan exists for every date, creating
	// default rest plans where missing. Idempotent.
	EnsurePlans(ctx context.Context, userID primitive.ObjectID, dates []time.Time) (map[time.Time]*domain.DayPlan, error)
	// DoneDays returns the dates within the range that count as trained:
	// a fully checked strength routine or a did-train self report.
	DoneDays(ctx context.Context, userID primitive.ObjectID, dates []time.Time) (map[time.Time]bool, error)
	// WeekGoalAndDone computes the weekly goal (non-rest plans) and the
	// number of done days in the range.
	WeekGoalAndDone(ctx context.Context, userID primitive.ObjectID, dates []time.Time, plans map[time.Time]*domain.DayPlan) (goal, done int, err error)
	// ComputeStreak counts consecutive qualifying days ending today.
	ComputeStreak(ctx context.Context, userID primitive.ObjectID) (int, error)
	// DayDetail assembles the full view of one (user, date).
	DayDetail(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DayDetail, error)
	// ProfileView assembles the week+month view centered on a date.
	ProfileView(ctx context.Context, userID primitive.ObjectID, view string, center time.Time) (*ProfileView, error)
}

// --- Service Implementation ---

type scheduleService struct {
	planRepo    repository.DayPlanRepository
	routineRepo repository.RoutineRepository
	itemRepo    repository.RoutineItemRepository
	logRepo     repository.AthleteLogRepository
	checkRepo   repository.AthleteCheckRepository
	fileStorage storage.FileStorage // optional; nil means no video URLs
	streak      StreakPolicy
	today       func() time.Time // injectable clock for tests
}

// NewScheduleService creates a new scheduleService. fileStorage may be nil;
// day-detail items then carry no video URLs.
func NewScheduleService(
	planRepo repository.DayPlanRepository,
	routineRepo repository.RoutineRepository,
	itemRepo repository.RoutineItemRepository,
	logRepo repository.AthleteLogRepository,
	checkRepo repository.AthleteCheckRepository,
	fileStorage storage.FileStorage,
	streak StreakPolicy,
) ScheduleService {
	if streak.LookbackDays <= 0 {
		streak.LookbackDays = defaultStreakLookbackDays
	}
	return &scheduleService{
		planRepo:    planRepo,
		routineRepo: routineRepo,
		itemRepo:    itemRepo,
		logRepo:     logRepo,
		checkRepo:   checkRepo,
		fileStorage: fileStorage,
		streak:      streak,
		today:       domain.Today,
	}
}

// EnsurePlans returns one plan per date, upserting default rest plans for
// dates that have none. Calling it twice yields the identical mapping.
func (s *scheduleService) EnsurePlans(ctx context.Context, userID primitive.ObjectID, dates []time.Time) (map[time.Time]*domain.DayPlan, error) {
	stored, err := s.planRepo.GetByUserAndDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	plans := make(map[time.Time]*domain.DayPlan, len(dates))
	for i := range stored {
		p := stored[i]
		plans[domain.DateOf(p.Date)] = &stored[i]
	}

	for _, d := range dates {
		d = domain.DateOf(d)
		if _, ok := plans[d]; ok {
			continue
		}
		plan, err := s.planRepo.GetOrCreate(ctx, userID, d, &domain.DayPlan{
			PlanType: domain.PlanRest,
			CanTrain: true,
		})
		if err != nil {
			return nil, err
		}
		plans[d] = plan
	}
	return plans, nil
}

// DoneDays unions the two "trained" signals over the range.
func (s *scheduleService) DoneDays(ctx context.Context, userID primitive.ObjectID, dates []time.Time) (map[time.Time]bool, error) {
	done, err := s.strengthDoneDays(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.GetByUserAndDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		if l.DidTrain {
			done[domain.DateOf(l.Date)] = true
		}
	}
	return done, nil
}

// strengthDoneDays returns the dates whose strength plan has every routine
// item checked off.
func (s *scheduleService) strengthDoneDays(ctx context.Context, userID primitive.ObjectID, dates []time.Time) (map[time.Time]bool, error) {
	done := make(map[time.Time]bool)

	plans, err := s.planRepo.GetByUserAndDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	for i := range plans {
		p := &plans[i]
		complete, err := s.strengthPlanComplete(ctx, p)
		if err != nil {
			return nil, err
		}
		if complete {
			done[domain.DateOf(p.Date)] = true
		}
	}
	return done, nil
}

// strengthPlanComplete reports whether every item of the plan's routine is
// checked off for the plan's date. Plans without a routine, routines without
// items and dangling references all resolve to false.
func (s *scheduleService) strengthPlanComplete(ctx context.Context, plan *domain.DayPlan) (bool, error) {
	if !plan.IsStrength() || plan.RoutineID == nil {
		return false, nil
	}

	items, err := s.itemRepo.GetByRoutineID(ctx, *plan.RoutineID)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, nil
	}

	itemIDs := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		itemIDs[i] = it.ID
	}

	checks, err := s.checkRepo.GetByUserDateAndItems(ctx, plan.UserID, plan.Date, itemIDs)
	if err != nil {
		return false, err
	}

	doneIDs := make(map[primitive.ObjectID]bool, len(checks))
	for _, c := range checks {
		if c.Done {
			doneIDs[c.RoutineItemID] = true
		}
	}
	return len(doneIDs) == len(items), nil
}

// WeekGoalAndDone: goal counts plans whose type is not rest; done counts the
// range's dates present in the done-day union (a logged session on a rest
// day still counts toward done).
func (s *scheduleService) WeekGoalAndDone(ctx context.Context, userID primitive.ObjectID, dates []time.Time, plans map[time.Time]*domain.DayPlan) (int, int, error) {
	goal := 0
	for _, d := range dates {
		if p, ok := plans[domain.DateOf(d)]; ok && !p.IsRest() {
			goal++
		}
	}

	done, err := s.DoneDays(ctx, userID, dates)
	if err != nil {
		return 0, 0, err
	}
	return goal, len(done), nil
}

// ComputeStreak scans backward from today. A trained day extends the streak.
// A rest-by-design day (planned rest, or no plan at all) is skipped unless
// the strict policy is on. A planned training day without training breaks
// the scan.
func (s *scheduleService) ComputeStreak(ctx context.Context, userID primitive.ObjectID) (int, error) {
	today := s.today()

	window := make([]time.Time, s.streak.LookbackDays)
	for i := range window {
		window[i] = today.AddDate(0, 0, -i)
	}

	logs, err := s.logRepo.GetByUserAndDates(ctx, userID, window)
	if err != nil {
		return 0, err
	}
	logByDate := make(map[time.Time]*domain.AthleteLog, len(logs))
	for i := range logs {
		logByDate[domain.DateOf(logs[i].Date)] = &logs[i]
	}

	plans, err := s.planRepo.GetByUserAndDates(ctx, userID, window)
	if err != nil {
		return 0, err
	}
	planByDate := make(map[time.Time]*domain.DayPlan, len(plans))
	for i := range plans {
		planByDate[domain.DateOf(plans[i].Date)] = &plans[i]
	}

	streak := 0
	for _, d := range window {
		if log := logByDate[d]; log != nil && log.DidTrain {
			streak++
			continue
		}

		plan := planByDate[d]
		if plan != nil {
			complete, err := s.strengthPlanComplete(ctx, plan)
			if err != nil {
				return 0, err
			}
			if complete {
				streak++
				continue
			}
		}

		// Not a trained day. A day that was never meant for training does
		// not break the run unless the strict policy is on.
		if !s.streak.RestBreaks && (plan == nil || plan.IsRest()) {
			continue
		}
		break
	}
	return streak, nil
}

// DayDetail fetches (lazily creating) the plan, the log and, when the plan
// references a routine, its items and the day's completion checks.
func (s *scheduleService) DayDetail(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DayDetail, error) {
	date = domain.DateOf(date)

	plan, err := s.planRepo.GetOrCreate(ctx, userID, date, &domain.DayPlan{
		PlanType: domain.PlanRest,
		CanTrain: true,
	})
	if err != nil {
		return nil, err
	}

	detail := &DayDetail{
		Date:           domain.FormatDate(date),
		Plan:           plan,
		Items:          []DayDetailItem{},
		CheckedItemIDs: []string{},
	}

	log, err := s.logRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if log != nil {
		detail.Log = DayDetailLog{
			DidTrain:     log.DidTrain,
			WarmupDone:   log.WarmupDone,
			MainDone:     log.MainDone,
			FinisherDone: log.FinisherDone,
		}
	}

	if plan.RoutineID == nil {
		return detail, nil
	}

	routine, err := s.routineRepo.GetByID(ctx, *plan.RoutineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling reference: the routine was deleted. Not an error.
			return detail, nil
		}
		return nil, err
	}
	detail.Routine = routine

	if routine.IsIntervalRoutine() {
		detail.TimerURL = fmt.Sprintf("/api/v1/routines/%s/timer", routine.ID.Hex())
	}

	items, err := s.itemRepo.GetByRoutineID(ctx, routine.ID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		itemIDs[i] = it.ID
		detail.Items = append(detail.Items, DayDetailItem{
			ID:       it.ID.Hex(),
			Name:     it.Name,
			Sets:     it.Sets,
			Reps:     it.Reps,
			Weight:   it.Weight,
			Rest:     it.Rest,
			Note:     it.Note,
			VideoURL: s.videoURL(ctx, it.VideoObjectKey),
		})
	}

	checks, err := s.checkRepo.GetByUserDateAndItems(ctx, userID, date, itemIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range checks {
		if c.Done {
			detail.CheckedItemIDs = append(detail.CheckedItemIDs, c.RoutineItemID.Hex())
		}
	}

	return detail, nil
}

// ProfileView assembles the week and month around center, ensuring plans
// exist for every visible date.
func (s *scheduleService) ProfileView(ctx context.Context, userID primitive.ObjectID, view string, center time.Time) (*ProfileView, error) {
	center = domain.DateOf(center)
	today := s.today()

	view = strings.ToLower(strings.TrimSpace(view))
	if view == "" {
		view = "today"
	}

	weekDates := domain.WeekDates(center)
	weekPlans, err := s.EnsurePlans(ctx, userID, weekDates)
	if err != nil {
		return nil, err
	}
	weekDone, err := s.DoneDays(ctx, userID, weekDates)
	if err != nil {
		return nil, err
	}
	goal, done, err := s.WeekGoalAndDone(ctx, userID, weekDates, weekPlans)
	if err != nil {
		return nil, err
	}

	monthDates := domain.MonthDates(center.Year(), center.Month())
	if _, err := s.EnsurePlans(ctx, userID, monthDates); err != nil {
		return nil, err
	}
	monthDone, err := s.DoneDays(ctx, userID, monthDates)
	if err != nil {
		return nil, err
	}

	streak, err := s.ComputeStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	pv := &ProfileView{
		UserID: userID.Hex(),
		View:   view,
		Today:  domain.FormatDate(today),
		Center: domain.FormatDate(center),
		Week: ProfileWeek{
			Dates: formatDates(weekDates),
			Label: fmt.Sprintf("%s - %s",
				weekDates[0].Format("02/01"), weekDates[len(weekDates)-1].Format("02/01")),
			Plans:     orderedPlans(weekDates, weekPlans),
			DoneDates: formatDateSet(weekDone),
			Goal:      goal,
			Done:      done,
		},
		Month: ProfileMonth{
			Label:     strings.ToUpper(monthDates[0].Format("January 2006")),
			Dates:     formatDates(monthDates),
			DoneDates: formatDateSet(monthDone),
			Grid:      monthGrid(center),
		},
		Streak: streak,
	}
	return pv, nil
}

// monthGrid lays the month out in full Monday..Sunday rows; cells belonging
// to adjacent months are empty.
func monthGrid(center time.Time) [][]string {
	first := time.Date(center.Year(), center.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := domain.StartOfWeek(first)
	end := domain.StartOfWeek(last).AddDate(0, 0, 6)

	var grid [][]string
	for cur := start; !cur.After(end); {
		row := make([]string, 7)
		for i := 0; i < 7; i++ {
			if cur.Month() == center.Month() {
				row[i] = domain.FormatDate(cur)
			}
			cur = cur.AddDate(0, 0, 1)
		}
		grid = append(grid, row)
	}
	return grid
}

func (s *scheduleService) videoURL(ctx context.Context, objectKey string) string {
	if objectKey == "" || s.fileStorage == nil {
		return ""
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// A broken video link should not fail the whole payload.
		return ""
	}
	return url
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = domain.FormatDate(d)
	}
	return out
}

func formatDateSet(set map[time.Time]bool) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, domain.FormatDate(d))
	}
	sort.Strings(out)
	return out
}

func orderedPlans(dates []time.Time, plans map[time.Time]*domain.DayPlan) []*domain.DayPlan {
	out := make([]*domain.DayPlan, len(dates))
	for i, d := range dates {
		out[i] = plans[domain.DateOf(d)]
	}
	return out
}
