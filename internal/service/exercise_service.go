package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/repository"
	"vir/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrStorageDisabled  = errors.New("file storage is not configured")
)

// VideoUploadTicket is a presigned PUT URL plus the object key it targets.
// The key is already stored on the exercise, so no confirmation call is
// needed after the upload.
type VideoUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	// ContentType must be sent as the Content-Type header of the PUT.
	ContentType string `json:"contentType"`
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, name, category, description string) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	// RequestVideoUpload mints an object key for the exercise's demo video,
	// stores it and returns a presigned upload URL.
	RequestVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, fileName string) (*VideoUploadTicket, error)
	// VideoDownloadURL returns a presigned GET URL for the exercise's
	// video, or "" when there is none.
	VideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService. fileStorage
// may be nil; video operations then fail with ErrStorageDisabled.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

func (s *exerciseService) CreateExercise(ctx context.Context, name, category, description string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("exercise name cannot be empty")
	}

	exercise := &domain.Exercise{
		Name:        name,
		Category:    strings.TrimSpace(category),
		Description: description,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

func (s *exerciseService) RequestVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, fileName string) (*VideoUploadTicket, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = strings.ToLower(fileName[i:])
	}
	objectKey := fmt.Sprintf("exercises/%s/%s%s", exerciseID.Hex(), uuid.NewString(), ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	// Replacing a video orphans the previous object; best effort cleanup.
	if exercise.VideoObjectKey != "" && exercise.VideoObjectKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, exercise.VideoObjectKey)
	}

	exercise.VideoObjectKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	return &VideoUploadTicket{UploadURL: uploadURL, ObjectKey: objectKey, ContentType: contentType}, nil
}

func (s *exerciseService) VideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if exercise.VideoObjectKey == "" {
		return "", nil
	}
	if s.fileStorage == nil {
		return "", ErrStorageDisabled
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}
