package api

import (
	"errors"
	"fmt"
	"net/http"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// CoachHandler serves the coach's planner and athlete management.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- Request Structs ---

type SaveDayRequest struct {
	PlanType      string `json:"planType"`
	Warmup        string `json:"warmup"`
	Main          string `json:"main"`
	Finisher      string `json:"finisher"`
	ProposedScore string `json:"proposedScore"`
	Force         bool   `json:"force"`
}

type CreateAthleteRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Group    string `json:"group"`
}

// --- Handler Methods ---

// Planner returns the week grid for every athlete.
// GET /coach/planner?date=2026-01-05
func (h *CoachHandler) Planner(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		raw = c.Query("center")
	}
	center := domain.ParseDate(raw, domain.Today())
	dates := domain.WeekDates(center)

	rows, err := h.coachService.PlannerWeek(c.Request.Context(), dates)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build planner")
		return
	}

	dateStrs := make([]string, len(dates))
	for i, d := range dates {
		dateStrs[i] = domain.FormatDate(d)
	}
	c.JSON(http.StatusOK, gin.H{"dates": dateStrs, "rows": rows})
}

// SaveDay writes the plan for one (athlete, date) cell.
// PUT /coach/athletes/:userId/days/:date
func (h *CoachHandler) SaveDay(c *gin.Context) {
	athleteID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	date, err := domain.ParseDateStrict(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	var req SaveDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.coachService.SaveDay(c.Request.Context(), athleteID, date, service.DayPlanInput{
		PlanType:      domain.PlanType(req.PlanType),
		Warmup:        req.Warmup,
		Main:          req.Main,
		Finisher:      req.Finisher,
		ProposedScore: req.ProposedScore,
		Force:         req.Force,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAthleteUnavailable):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRoutineRef):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save day plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListAthletes returns all athlete accounts.
// GET /coach/athletes
func (h *CoachHandler) ListAthletes(c *gin.Context) {
	athletes, err := h.coachService.ListAthletes(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list athletes")
		return
	}

	resp := make([]UserResponse, len(athletes))
	for i := range athletes {
		resp[i] = MapUserToResponse(&athletes[i])
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAthlete creates an athlete account on the athlete's behalf.
// POST /coach/athletes
func (h *CoachHandler) CreateAthlete(c *gin.Context) {
	var req CreateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.coachService.CreateAthlete(c.Request.Context(), req.Name, req.Email, req.Password, req.Group)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create athlete")
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// DeleteAthlete removes an athlete and all their data.
// DELETE /coach/athletes/:userId
func (h *CoachHandler) DeleteAthlete(c *gin.Context) {
	athleteID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	if err := h.coachService.DeleteAthlete(c.Request.Context(), athleteID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete athlete")
		return
	}
	c.Status(http.StatusNoContent)
}
