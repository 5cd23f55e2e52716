package api

import (
	"net/http"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves the profile view, day detail and session script.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	scriptService   service.ScriptService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, scriptService service.ScriptService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		scriptService:   scriptService,
	}
}

// ProfileView returns the week+month schedule around the requested date.
// GET /users/:userId/profile?view=today&date=2026-01-05
func (h *ScheduleHandler) ProfileView(c *gin.Context) {
	userID, ok := resolveTargetUser(c)
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		raw = c.Query("center")
	}
	center := domain.ParseDate(raw, domain.Today())
	view := c.DefaultQuery("view", "today")

	pv, err := h.scheduleService.ProfileView(c.Request.Context(), userID, view, center)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build profile view")
		return
	}
	c.JSON(http.StatusOK, pv)
}

// DayDetail returns the full view of one day, lazily creating the plan.
// GET /users/:userId/days/:date
func (h *ScheduleHandler) DayDetail(c *gin.Context) {
	userID, ok := resolveTargetUser(c)
	if !ok {
		return
	}

	date, err := domain.ParseDateStrict(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	detail, err := h.scheduleService.DayDetail(c.Request.Context(), userID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load day detail")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SessionScript returns a spoken-style briefing for the day's session.
// GET /users/:userId/days/:date/script
func (h *ScheduleHandler) SessionScript(c *gin.Context) {
	userID, ok := resolveTargetUser(c)
	if !ok {
		return
	}

	date, err := domain.ParseDateStrict(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	script, err := h.scriptService.SessionScript(c.Request.Context(), userID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate session script")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": domain.FormatDate(date), "script": script})
}
