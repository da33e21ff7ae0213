package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suneung/mocktrack-backend/internal/config"
	"github.com/suneung/mocktrack-backend/internal/handler"
	"github.com/suneung/mocktrack-backend/internal/middleware"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Gate         *handler.GateHandler
	Exam         *handler.ExamHandler
	Ranking      *handler.RankingHandler
	Schedule     *handler.ScheduleHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	gateService *service.GateService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded attachments statically with aggressive caching (1 year);
	// blob names are UUIDs, so contents never change under a path.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireGate := middleware.RequireGateToken(gateService)

	// ─── 1. Gate (Public) ──────────────────────────────────────────────
	gate := router.Group("/api/v1/gate")
	{
		gate.POST("/verify", handlers.Gate.Verify)
	}

	// ─── 2. Read API (Public) ──────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/students", handlers.Ranking.ListStudents)
		api.GET("/students/:id/series", handlers.Ranking.StudentSeries)
		api.GET("/exams", handlers.Exam.ListExams)
		api.GET("/exams/next-round", handlers.Exam.NextRound)
		api.GET("/scores", handlers.Ranking.ListScores)
		api.GET("/rankings", handlers.Ranking.Rankings)
		api.GET("/schedules", handlers.Schedule.ListSchedules)
		api.GET("/schedules/:id/files", handlers.Schedule.ListScheduleFiles)

		// Participation toggling is deliberately ungated; only creation
		// and deletion ask for the shared password.
		api.PUT("/schedules/:id/participants/:student", handlers.Schedule.ToggleParticipant)

		// Web push passthrough (only POST is mounted).
		api.POST("/notifications/send", handlers.Notification.Send)
	}

	// ─── 3. Mutating API (Gate Token) ──────────────────────────────────
	gated := router.Group("/api/v1")
	gated.Use(requireGate)
	{
		gated.POST("/exams", handlers.Exam.RegisterExam)
		gated.POST("/schedules", handlers.Schedule.CreateSchedule)
		gated.DELETE("/schedules/:id", handlers.Schedule.DeleteSchedule)
	}

	// ─── 4. WebSocket Change Feed ──────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/changes", handlers.WS.ChangeFeed)
	}

	return router
}
