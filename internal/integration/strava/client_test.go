package strava

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	assert.True(t, NewClient("id", "secret", "http://localhost/cb").Enabled())
	assert.False(t, NewClient("", "", "").Enabled())
	assert.False(t, NewClient("id", "", "").Enabled())
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient("12345", "secret", "http://localhost/cb")
	url := c.AuthCodeURL("user-state")

	assert.True(t, strings.HasPrefix(url, authURL))
	assert.Contains(t, url, "client_id=12345")
	assert.Contains(t, url, "state=user-state")
	assert.Contains(t, url, "activity%3Aread_all")
}

func TestListActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/activities", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "name": "Morning Run", "sport_type": "Run",
			 "distance": 5012.3, "moving_time": 1500, "elapsed_time": 1600,
			 "start_date": "2026-01-05T07:30:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.apiBaseURL = srv.URL

	activities, err := c.ListActivities(context.Background(), "token-123", 2, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, int64(101), activities[0].ID)
	assert.Equal(t, "Morning Run", activities[0].Name)
	assert.Equal(t, "Run", activities[0].SportType)
	assert.InDelta(t, 5012.3, activities[0].Distance, 0.01)
	assert.Equal(t, 1500, activities[0].MovingTime)
}

func TestListActivities_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.apiBaseURL = srv.URL

	_, err := c.ListActivities(context.Background(), "stale-token", 1, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
