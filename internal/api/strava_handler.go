package api

import (
	"errors"
	"net/http"
	"strconv"

	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// StravaHandler serves the Strava account linking and activity sync.
type StravaHandler struct {
	stravaService service.StravaService
}

// NewStravaHandler creates a new StravaHandler.
func NewStravaHandler(stravaService service.StravaService) *StravaHandler {
	return &StravaHandler{stravaService: stravaService}
}

// Connect redirects the user to Strava's consent screen.
// GET /integrations/strava/connect
func (h *StravaHandler) Connect(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	url, err := h.stravaService.ConnectURL(userID)
	if err != nil {
		if errors.Is(err, service.ErrStravaDisabled) {
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to build connect URL")
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback handles Strava's OAuth redirect. The redirect cannot carry a
// bearer token, so identity comes from the signed state minted by Connect.
// GET /integrations/strava/callback?state=<signed>&code=<code>
func (h *StravaHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		abortWithError(c, http.StatusBadRequest, "Strava authorization was denied")
		return
	}

	code := c.Query("code")
	if code == "" {
		abortWithError(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	account, err := h.stravaService.HandleCallback(c.Request.Context(), c.Query("state"), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStravaState):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStravaDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusBadGateway, "Strava code exchange failed")
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// Sync pulls recent activities for the calling user.
// POST /integrations/strava/sync
func (h *StravaHandler) Sync(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	inserted, err := h.stravaService.Sync(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStravaDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrStravaNotConnected):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusBadGateway, "Strava sync failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// Status reports whether the user has a linked Strava account.
// GET /integrations/strava/status
func (h *StravaHandler) Status(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	account, err := h.stravaService.Status(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrStravaNotConnected) {
			c.JSON(http.StatusOK, gin.H{"connected": false})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load integration status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "account": account})
}

// ListActivities returns the user's synced activities, newest first.
// GET /integrations/strava/activities?limit=30
func (h *StravaHandler) ListActivities(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	activities, err := h.stravaService.ListActivities(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list activities")
		return
	}
	c.JSON(http.StatusOK, activities)
}
