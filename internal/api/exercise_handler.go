package api

import (
	"errors"
	"fmt"
	"net/http"

	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise bank and its video upload flow.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request Structs ---

type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type VideoUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

// --- Handler Methods ---

// CreateExercise adds an entry to the exercise bank.
// POST /exercises
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), req.Name, req.Category, req.Description)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises returns the whole exercise bank.
// GET /exercises
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise returns one exercise.
// GET /exercises/:exerciseId
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load exercise")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// RequestVideoUpload returns a presigned upload URL for a demo video.
// POST /exercises/:exerciseId/video
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ticket, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), exerciseID, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStorageDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// VideoDownloadURL returns a presigned download URL for the demo video.
// GET /exercises/:exerciseId/video
func (h *ExerciseHandler) VideoDownloadURL(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	url, err := h.exerciseService.VideoDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStorageDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URL")
		}
		return
	}
	if url == "" {
		abortWithError(c, http.StatusNotFound, "exercise has no video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": url})
}
