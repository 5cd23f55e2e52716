package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/integration/strava"
	"vir/coach-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStravaDisabled     = errors.New("strava integration is not configured")
	ErrStravaNotConnected = errors.New("no strava account connected")
	ErrInvalidStravaState = errors.New("invalid or expired state parameter")
)

// stateTTL bounds how long a consent round trip may take before the
// state token expires.
const stateTTL = 10 * time.Minute

// --- Service Interface ---
type StravaService interface {
	Enabled() bool
	// ConnectURL returns the consent URL for the user. The state parameter
	// is a signed short-lived token carrying the user's id, so the callback
	// can only link the account of the user who started the flow.
	ConnectURL(userID primitive.ObjectID) (string, error)
	// HandleCallback verifies the state, exchanges the code and stores the
	// account. The account is persisted even when the follow-up sync fails.
	HandleCallback(ctx context.Context, state, code string) (*domain.IntegrationAccount, error)
	// Sync pulls recent activities and returns how many were new.
	Sync(ctx context.Context, userID primitive.ObjectID) (int, error)
	Status(ctx context.Context, userID primitive.ObjectID) (*domain.IntegrationAccount, error)
	ListActivities(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.ExternalActivity, error)
}

// --- Service Implementation ---

type stravaService struct {
	client      *strava.Client
	repo        repository.IntegrationRepository
	stateSecret []byte
	logger      *logrus.Logger
}

// NewStravaService creates a new instance of stravaService. stateSecret
// signs the OAuth state tokens.
func NewStravaService(client *strava.Client, repo repository.IntegrationRepository, stateSecret string, logger *logrus.Logger) StravaService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &stravaService{
		client:      client,
		repo:        repo,
		stateSecret: []byte(stateSecret),
		logger:      logger,
	}
}

func (s *stravaService) Enabled() bool {
	return s.client != nil && s.client.Enabled()
}

func (s *stravaService) ConnectURL(userID primitive.ObjectID) (string, error) {
	if !s.Enabled() {
		return "", ErrStravaDisabled
	}
	state, err := s.signState(userID)
	if err != nil {
		return "", err
	}
	return s.client.AuthCodeURL(state), nil
}

func (s *stravaService) HandleCallback(ctx context.Context, state, code string) (*domain.IntegrationAccount, error) {
	if !s.Enabled() {
		return nil, ErrStravaDisabled
	}

	userID, err := s.parseState(state)
	if err != nil {
		return nil, err
	}

	info, err := s.client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	account := &domain.IntegrationAccount{
		UserID:         userID,
		Provider:       domain.ProviderStrava,
		ExternalUserID: info.AthleteID,
		AccessToken:    info.AccessToken,
		RefreshToken:   info.RefreshToken,
		ExpiresAt:      info.ExpiresAt,
	}
	if err := s.repo.UpsertAccount(ctx, account); err != nil {
		return nil, err
	}

	// The connection is established; a failed first sync is retried later.
	if _, err := s.Sync(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("userId", userID.Hex()).
			Warn("Initial strava sync failed, account kept")
	}
	return account, nil
}

func (s *stravaService) Sync(ctx context.Context, userID primitive.ObjectID) (int, error) {
	if !s.Enabled() {
		return 0, ErrStravaDisabled
	}

	account, err := s.account(ctx, userID)
	if err != nil {
		return 0, err
	}

	if account.TokenExpired(time.Now(), strava.RefreshSafetyMargin) {
		info, err := s.client.Refresh(ctx, account.RefreshToken)
		if err != nil {
			return 0, err
		}
		account.AccessToken = info.AccessToken
		account.RefreshToken = info.RefreshToken
		account.ExpiresAt = info.ExpiresAt
		if err := s.repo.UpsertAccount(ctx, account); err != nil {
			return 0, err
		}
	}

	activities, err := s.client.ListActivities(ctx, account.AccessToken, 1, 30)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, a := range activities {
		start := a.StartDate
		ext := &domain.ExternalActivity{
			UserID:             userID,
			Provider:           domain.ProviderStrava,
			ProviderActivityID: strconv.FormatInt(a.ID, 10),
			Name:               a.Name,
			SportType:          a.SportType,
			DistanceMeters:     a.Distance,
			MovingSeconds:      a.MovingTime,
			ElapsedSeconds:     a.ElapsedTime,
			StartDate:          &start,
		}
		isNew, err := s.repo.UpsertActivity(ctx, ext)
		if err != nil {
			return inserted, err
		}
		if isNew {
			inserted++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"userId":   userID.Hex(),
		"fetched":  len(activities),
		"inserted": inserted,
	}).Info("Strava sync finished")
	return inserted, nil
}

func (s *stravaService) Status(ctx context.Context, userID primitive.ObjectID) (*domain.IntegrationAccount, error) {
	return s.account(ctx, userID)
}

func (s *stravaService) ListActivities(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.ExternalActivity, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.repo.ListActivities(ctx, userID, domain.ProviderStrava, int64(limit))
}

// signState mints the short-lived token that rides through the OAuth
// redirect as the state parameter.
func (s *stravaService) signState(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "coach-app",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.stateSecret)
}

func (s *stravaService) parseState(state string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidStravaState
		}
		return s.stateSecret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrInvalidStravaState
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidStravaState
	}
	return userID, nil
}

func (s *stravaService) account(ctx context.Context, userID primitive.ObjectID) (*domain.IntegrationAccount, error) {
	account, err := s.repo.GetAccount(ctx, userID, domain.ProviderStrava)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStravaNotConnected
		}
		return nil, err
	}
	return account, nil
}
