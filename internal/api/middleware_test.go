package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// stubScheduleService returns fixed payloads; only DayDetail matters here.
type stubScheduleService struct{}

func (stubScheduleService) EnsurePlans(context.Context, primitive.ObjectID, []time.Time) (map[time.Time]*domain.DayPlan, error) {
	return map[time.Time]*domain.DayPlan{}, nil
}
func (stubScheduleService) DoneDays(context.Context, primitive.ObjectID, []time.Time) (map[time.Time]bool, error) {
	return map[time.Time]bool{}, nil
}
func (stubScheduleService) WeekGoalAndDone(context.Context, primitive.ObjectID, []time.Time, map[time.Time]*domain.DayPlan) (int, int, error) {
	return 0, 0, nil
}
func (stubScheduleService) ComputeStreak(context.Context, primitive.ObjectID) (int, error) {
	return 0, nil
}
func (stubScheduleService) DayDetail(_ context.Context, userID primitive.ObjectID, date time.Time) (*service.DayDetail, error) {
	return &service.DayDetail{
		Date: domain.FormatDate(date),
		Plan: &domain.DayPlan{UserID: userID, Date: date, PlanType: domain.PlanRest},
	}, nil
}
func (stubScheduleService) ProfileView(_ context.Context, userID primitive.ObjectID, view string, _ time.Time) (*service.ProfileView, error) {
	return &service.ProfileView{UserID: userID.Hex(), View: view}, nil
}

type stubScriptService struct{}

func (stubScriptService) SessionScript(context.Context, primitive.ObjectID, time.Time) (string, error) {
	return "test script", nil
}

func newScheduleRouter() *gin.Engine {
	router := gin.New()
	handler := NewScheduleHandler(stubScheduleService{}, stubScriptService{})

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(testSecret))
	protected.GET("/users/:userId/days/:date", handler.DayDetail)
	protected.GET("/users/:userId/profile", handler.ProfileView)
	return router
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := newScheduleRouter()
	userID := primitive.NewObjectID()

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+userID.Hex()+"/days/2026-01-07", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	router := newScheduleRouter()
	userID := primitive.NewObjectID()

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+userID.Hex()+"/days/2026-01-07", "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := newScheduleRouter()
	userID := primitive.NewObjectID()

	claims := &jwtClaims{UserID: userID.Hex(), Role: domain.RoleAthlete,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+userID.Hex()+"/days/2026-01-07", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDayDetail_OwnData(t *testing.T) {
	router := newScheduleRouter()
	userID := primitive.NewObjectID()
	token := signToken(t, userID, domain.RoleAthlete)

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+userID.Hex()+"/days/2026-01-07", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-01-07")
}

func TestDayDetail_AthleteCannotReadOthers(t *testing.T) {
	router := newScheduleRouter()
	token := signToken(t, primitive.NewObjectID(), domain.RoleAthlete)
	otherID := primitive.NewObjectID()

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+otherID.Hex()+"/days/2026-01-07", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDayDetail_CoachCanReadAnyAthlete(t *testing.T) {
	router := newScheduleRouter()
	token := signToken(t, primitive.NewObjectID(), domain.RoleCoach)
	athleteID := primitive.NewObjectID()

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+athleteID.Hex()+"/days/2026-01-07", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDayDetail_InvalidDate(t *testing.T) {
	router := newScheduleRouter()
	userID := primitive.NewObjectID()
	token := signToken(t, userID, domain.RoleAthlete)

	w := doRequest(router, http.MethodGet, "/api/v1/users/"+userID.Hex()+"/days/07-01-2026", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoleMiddleware_BlocksAthlete(t *testing.T) {
	router := gin.New()
	group := router.Group("/coach")
	group.Use(AuthMiddleware(testSecret), RoleMiddleware(domain.RoleCoach))
	group.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	athleteToken := signToken(t, primitive.NewObjectID(), domain.RoleAthlete)
	coachToken := signToken(t, primitive.NewObjectID(), domain.RoleCoach)

	assert.Equal(t, http.StatusForbidden, doRequest(router, http.MethodGet, "/coach/ping", athleteToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/coach/ping", coachToken).Code)
}
