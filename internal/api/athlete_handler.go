package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteHandler serves the athlete's own write operations: item checks,
// training logs, availability and completed scores.
type AthleteHandler struct {
	athleteService service.AthleteService
}

// NewAthleteHandler creates a new AthleteHandler.
func NewAthleteHandler(athleteService service.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

// --- Request Structs ---

type CheckItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Done   *bool  `json:"done" binding:"required"`
}

type SaveLogRequest struct {
	DidTrain     bool   `json:"didTrain"`
	WarmupDone   string `json:"warmupDone"`
	MainDone     string `json:"mainDone"`
	FinisherDone string `json:"finisherDone"`
}

type AvailabilityRequest struct {
	CanTrain *bool  `json:"canTrain" binding:"required"`
	Comment  string `json:"comment"`
}

type CompletedScoreRequest struct {
	Score string `json:"score"`
}

// --- Handler Methods ---

// CheckItem toggles a routine item check for the day.
// POST /days/:date/checks
func (h *AthleteHandler) CheckItem(c *gin.Context) {
	userID, date, ok := h.selfAndDate(c)
	if !ok {
		return
	}

	var req CheckItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid itemId format")
		return
	}

	if err := h.athleteService.CheckItem(c.Request.Context(), userID, date, itemID, *req.Done); err != nil {
		if errors.Is(err, service.ErrRoutineItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to save check")
		return
	}
	c.JSON(http.StatusOK, gin.H{"itemId": itemID.Hex(), "done": *req.Done})
}

// SaveLog upserts the athlete's self report for the day.
// PUT /days/:date/log
func (h *AthleteHandler) SaveLog(c *gin.Context) {
	userID, date, ok := h.selfAndDate(c)
	if !ok {
		return
	}

	var req SaveLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	log, err := h.athleteService.SaveLog(c.Request.Context(), userID, date, service.AthleteLogInput{
		DidTrain:     req.DidTrain,
		WarmupDone:   req.WarmupDone,
		MainDone:     req.MainDone,
		FinisherDone: req.FinisherDone,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save log")
		return
	}
	c.JSON(http.StatusOK, log)
}

// SaveAvailability marks the day trainable or blocked.
// PUT /days/:date/availability
func (h *AthleteHandler) SaveAvailability(c *gin.Context) {
	userID, date, ok := h.selfAndDate(c)
	if !ok {
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.athleteService.SaveAvailability(c.Request.Context(), userID, date, *req.CanTrain, req.Comment)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save availability")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// SaveCompletedScore records the achieved score for the day.
// PUT /days/:date/score
func (h *AthleteHandler) SaveCompletedScore(c *gin.Context) {
	userID, date, ok := h.selfAndDate(c)
	if !ok {
		return
	}

	var req CompletedScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.athleteService.SaveCompletedScore(c.Request.Context(), userID, date, req.Score)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save score")
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *AthleteHandler) selfAndDate(c *gin.Context) (primitive.ObjectID, time.Time, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return primitive.NilObjectID, time.Time{}, false
	}
	date, err := domain.ParseDateStrict(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return primitive.NilObjectID, time.Time{}, false
	}
	return userID, date, true
}
