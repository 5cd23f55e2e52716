package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/integration/strava"
	"vir/coach-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type integrationKey struct {
	userID   primitive.ObjectID
	provider string
}

type fakeIntegrationRepo struct {
	accounts map[integrationKey]domain.IntegrationAccount
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{accounts: make(map[integrationKey]domain.IntegrationAccount)}
}

func (r *fakeIntegrationRepo) UpsertAccount(_ context.Context, account *domain.IntegrationAccount) error {
	r.accounts[integrationKey{account.UserID, account.Provider}] = *account
	return nil
}

func (r *fakeIntegrationRepo) GetAccount(_ context.Context, userID primitive.ObjectID, provider string) (*domain.IntegrationAccount, error) {
	if acc, ok := r.accounts[integrationKey{userID, provider}]; ok {
		return &acc, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeIntegrationRepo) UpsertActivity(_ context.Context, _ *domain.ExternalActivity) (bool, error) {
	return false, nil
}

func (r *fakeIntegrationRepo) ListActivities(_ context.Context, _ primitive.ObjectID, _ string, _ int64) ([]domain.ExternalActivity, error) {
	return nil, nil
}

func newStravaFixture(secret string) (*stravaService, *fakeIntegrationRepo) {
	repo := newFakeIntegrationRepo()
	client := strava.NewClient("client-id", "client-secret", "http://localhost/callback")
	svc := NewStravaService(client, repo, secret, nil).(*stravaService)
	return svc, repo
}

func TestConnectURL_StateRoundTrips(t *testing.T) {
	svc, _ := newStravaFixture("state-secret")
	userID := primitive.NewObjectID()

	connectURL, err := svc.ConnectURL(userID)
	require.NoError(t, err)

	parsed, err := url.Parse(connectURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.NotEqual(t, userID.Hex(), state)

	got, err := svc.parseState(state)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestHandleCallback_RejectsUnsignedState(t *testing.T) {
	svc, repo := newStravaFixture("state-secret")

	// A bare user id is not a valid state token.
	_, err := svc.HandleCallback(context.Background(), primitive.NewObjectID().Hex(), "code")
	assert.ErrorIs(t, err, ErrInvalidStravaState)
	assert.Empty(t, repo.accounts)
}

func TestHandleCallback_RejectsForeignState(t *testing.T) {
	svc, repo := newStravaFixture("state-secret")
	other, _ := newStravaFixture("other-secret")

	state, err := other.signState(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), state, "code")
	assert.ErrorIs(t, err, ErrInvalidStravaState)
	assert.Empty(t, repo.accounts)
}

func TestParseState_RejectsExpired(t *testing.T) {
	svc, _ := newStravaFixture("state-secret")

	claims := &jwt.RegisteredClaims{
		Subject:   primitive.NewObjectID().Hex(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-stateTTL)),
		Issuer:    "coach-app",
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("state-secret"))
	require.NoError(t, err)

	_, err = svc.parseState(state)
	assert.ErrorIs(t, err, ErrInvalidStravaState)
}

func TestConnectURL_RequiresConfiguredClient(t *testing.T) {
	repo := newFakeIntegrationRepo()
	svc := NewStravaService(strava.NewClient("", "", ""), repo, "state-secret", nil)

	_, err := svc.ConnectURL(primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrStravaDisabled)
}
