package api

import (
	"net/http"

	"vir/coach-app/internal/domain"
	"vir/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	scheduleService service.ScheduleService,
	scriptService service.ScriptService,
	athleteService service.AthleteService,
	coachService service.CoachService,
	exerciseService service.ExerciseService,
	stravaService service.StravaService,
) {
	authHandler := NewAuthHandler(authService)
	scheduleHandler := NewScheduleHandler(scheduleService, scriptService)
	athleteHandler := NewAthleteHandler(athleteService)
	coachHandler := NewCoachHandler(coachService)
	routineHandler := NewRoutineHandler(coachService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	stravaHandler := NewStravaHandler(stravaService)

	authMiddleware := AuthMiddleware(jwtSecret)
	coachOnly := RoleMiddleware(domain.RoleCoach)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Strava redirects here after consent; identity comes from the signed
	// state parameter, not from a bearer token.
	apiV1.GET("/integrations/strava/callback", stravaHandler.Callback)

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Schedule (self, or any athlete when coach) ---
		protected.GET("/users/:userId/profile", scheduleHandler.ProfileView)
		protected.GET("/users/:userId/days/:date", scheduleHandler.DayDetail)
		protected.GET("/users/:userId/days/:date/script", scheduleHandler.SessionScript)

		// --- Athlete self-service, always on the caller's own data ---
		protected.POST("/days/:date/checks", athleteHandler.CheckItem)
		protected.PUT("/days/:date/log", athleteHandler.SaveLog)
		protected.PUT("/days/:date/availability", athleteHandler.SaveAvailability)
		protected.PUT("/days/:date/score", athleteHandler.SaveCompletedScore)

		// --- Routines: reading is open, editing is coach only ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.GET("", routineHandler.ListRoutines)
			routineGroup.GET("/:routineId", routineHandler.GetRoutine)
			routineGroup.GET("/:routineId/timer", routineHandler.TimerConfig)

			routineGroup.POST("", coachOnly, routineHandler.CreateRoutine)
			routineGroup.PUT("/:routineId", coachOnly, routineHandler.UpdateRoutine)
			routineGroup.DELETE("/:routineId", coachOnly, routineHandler.DeleteRoutine)
			routineGroup.PUT("/:routineId/timer-preset", coachOnly, routineHandler.SaveTimerPreset)
			routineGroup.POST("/:routineId/items", coachOnly, routineHandler.AddItem)
			routineGroup.PUT("/:routineId/items/order", coachOnly, routineHandler.ReorderItems)
		}
		protected.PUT("/routine-items/:itemId", coachOnly, routineHandler.UpdateItem)
		protected.DELETE("/routine-items/:itemId", coachOnly, routineHandler.DeleteItem)

		// --- Exercise bank: reading is open, editing is coach only ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.GET("/:exerciseId/video", exerciseHandler.VideoDownloadURL)

			exerciseGroup.POST("", coachOnly, exerciseHandler.CreateExercise)
			exerciseGroup.POST("/:exerciseId/video", coachOnly, exerciseHandler.RequestVideoUpload)
		}

		// --- Coach planner and athlete management ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(coachOnly)
		{
			coachGroup.GET("/planner", coachHandler.Planner)
			coachGroup.PUT("/athletes/:userId/days/:date", coachHandler.SaveDay)
			coachGroup.GET("/athletes", coachHandler.ListAthletes)
			coachGroup.POST("/athletes", coachHandler.CreateAthlete)
			coachGroup.DELETE("/athletes/:userId", coachHandler.DeleteAthlete)
		}

		// --- Strava integration, always on the caller's own account ---
		stravaGroup := protected.Group("/integrations/strava")
		{
			stravaGroup.GET("/connect", stravaHandler.Connect)
			stravaGroup.POST("/sync", stravaHandler.Sync)
			stravaGroup.GET("/status", stravaHandler.Status)
			stravaGroup.GET("/activities", stravaHandler.ListActivities)
		}
	}
}
