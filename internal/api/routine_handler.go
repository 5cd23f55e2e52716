package api

import (
	"errors"
	"fmt"
	"net/http"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineHandler serves routine and routine item management plus the
// resolved interval timer configuration.
type RoutineHandler struct {
	coachService service.CoachService
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(coachService service.CoachService) *RoutineHandler {
	return &RoutineHandler{coachService: coachService}
}

// --- Request/Response Structs ---

type RoutineRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type RoutineItemRequest struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name" binding:"required"`
	Sets       string `json:"sets"`
	Reps       string `json:"reps"`
	Weight     string `json:"weight"`
	Rest       string `json:"rest"`
	Note       string `json:"note"`
}

type ReorderRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required"`
}

type TimerPresetRequest struct {
	Work            int `json:"work"`
	Rest            int `json:"rest"`
	Rounds          int `json:"rounds"`
	Sets            int `json:"sets"`
	RestBetweenSets int `json:"restBetweenSets"`
	FinisherRest    int `json:"finisherRest"`
	CountIn         int `json:"countIn"`
}

type RoutineDetailResponse struct {
	Routine *domain.Routine      `json:"routine"`
	Items   []domain.RoutineItem `json:"items"`
}

// --- Handler Methods ---

// CreateRoutine creates an empty routine owned by the calling coach.
// POST /routines
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.coachService.CreateRoutine(c.Request.Context(), coachID, service.RoutineInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create routine")
		return
	}
	c.JSON(http.StatusCreated, routine)
}

// ListRoutines returns all routines.
// GET /routines
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	routines, err := h.coachService.ListRoutines(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list routines")
		return
	}
	c.JSON(http.StatusOK, routines)
}

// GetRoutine returns one routine with its ordered items.
// GET /routines/:routineId
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	routine, items, err := h.coachService.GetRoutine(c.Request.Context(), routineID)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load routine")
		return
	}
	c.JSON(http.StatusOK, RoutineDetailResponse{Routine: routine, Items: items})
}

// UpdateRoutine updates a routine's metadata.
// PUT /routines/:routineId
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.coachService.UpdateRoutine(c.Request.Context(), routineID, service.RoutineInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update routine")
		return
	}
	c.JSON(http.StatusOK, routine)
}

// DeleteRoutine removes a routine and its items.
// DELETE /routines/:routineId
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	if err := h.coachService.DeleteRoutine(c.Request.Context(), routineID); err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete routine")
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveTimerPreset stores the coach's interval timer preset on the routine.
// PUT /routines/:routineId/timer-preset
func (h *RoutineHandler) SaveTimerPreset(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	var req TimerPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	preset := &domain.TimerPreset{
		Work:            req.Work,
		Rest:            req.Rest,
		Rounds:          req.Rounds,
		Sets:            req.Sets,
		RestBetweenSets: req.RestBetweenSets,
		FinisherRest:    req.FinisherRest,
		CountIn:         req.CountIn,
	}

	routine, err := h.coachService.SaveTimerPreset(c.Request.Context(), routineID, preset)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to save timer preset")
		return
	}
	c.JSON(http.StatusOK, routine)
}

// TimerConfig resolves the effective interval timer settings for a routine:
// defaults, then the stored preset, then query string overrides, clamped.
// GET /routines/:routineId/timer?work=30&rounds=8
func (h *RoutineHandler) TimerConfig(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	routine, items, err := h.coachService.GetRoutine(c.Request.Context(), routineID)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load routine")
		return
	}

	overrides := service.TimerOverrides{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			overrides[key] = values[0]
		}
	}

	cfg := service.ResolveTimerConfig(routine.TimerPreset, overrides, len(items), service.PlayerCountIn)
	c.JSON(http.StatusOK, gin.H{
		"routineId":   routine.ID.Hex(),
		"routineName": routine.Name,
		"config":      cfg,
	})
}

// AddItem appends an item to the routine.
// POST /routines/:routineId/items
func (h *RoutineHandler) AddItem(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	var req RoutineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input, ok := h.itemInput(c, req)
	if !ok {
		return
	}

	item, err := h.coachService.AddItem(c.Request.Context(), routineID, input)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) || errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to add item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem edits a routine item.
// PUT /routine-items/:itemId
func (h *RoutineHandler) UpdateItem(c *gin.Context) {
	itemID, ok := pathObjectID(c, "itemId")
	if !ok {
		return
	}

	var req RoutineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input, ok := h.itemInput(c, req)
	if !ok {
		return
	}

	item, err := h.coachService.UpdateItem(c.Request.Context(), itemID, input)
	if err != nil {
		if errors.Is(err, service.ErrRoutineItemNotFound) || errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a routine item and compacts positions.
// DELETE /routine-items/:itemId
func (h *RoutineHandler) DeleteItem(c *gin.Context) {
	itemID, ok := pathObjectID(c, "itemId")
	if !ok {
		return
	}

	if err := h.coachService.DeleteItem(c.Request.Context(), itemID); err != nil {
		if errors.Is(err, service.ErrRoutineItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderItems rewrites the routine's item order.
// PUT /routines/:routineId/items/order
func (h *RoutineHandler) ReorderItems(c *gin.Context) {
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	itemIDs := make([]primitive.ObjectID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid item ID format in order list")
			return
		}
		itemIDs = append(itemIDs, id)
	}

	if err := h.coachService.ReorderItems(c.Request.Context(), routineID, itemIDs); err != nil {
		if errors.Is(err, service.ErrReorderMismatch) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to reorder items")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoutineHandler) itemInput(c *gin.Context, req RoutineItemRequest) (service.RoutineItemInput, bool) {
	input := service.RoutineItemInput{
		Name:   req.Name,
		Sets:   req.Sets,
		Reps:   req.Reps,
		Weight: req.Weight,
		Rest:   req.Rest,
		Note:   req.Note,
	}
	if req.ExerciseID != "" {
		id, err := primitive.ObjectIDFromHex(req.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
			return service.RoutineItemInput{}, false
		}
		input.ExerciseID = &id
	}
	return input, true
}
