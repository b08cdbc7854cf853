package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/config"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/handlers"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/middleware"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
	progressws "github.com/saumya2304singh/Physio-Connect-sub001/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) error {
	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	programExerciseRepo := repository.NewProgramExerciseRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	accessCodeRepo := repository.NewAccessCodeRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	progressHub := progressws.NewHub()
	go progressHub.Run()

	programService := services.NewProgramService(programRepo, programExerciseRepo, exerciseRepo, redemptionRepo, progressRepo)
	progressService := services.NewProgressService(progressRepo, programRepo, programExerciseRepo, redemptionRepo, progressHub)
	analyticsService := services.NewAnalyticsService(programRepo, programExerciseRepo, exerciseRepo, progressRepo, redemptionRepo)
	enrollmentService := services.NewEnrollmentService(db, accessCodeRepo, redemptionRepo, programRepo, userRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	programHandler := handlers.NewProgramHandler(programService, enrollmentService)
	progressHandler := handlers.NewProgressHandler(progressService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	progressFeedHandler := handlers.NewProgressFeedHandler(progressHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	exercises := authProtected.Group("/exercises")
	exercises.Post("", programHandler.CreateExercise)
	exercises.Get("", programHandler.ListExercises)

	programs := authProtected.Group("/programs")
	programs.Post("", programHandler.CreateProgram)
	programs.Get("", programHandler.ListPrograms)
	programs.Get("/:id", programHandler.GetProgram)
	programs.Delete("/:id", programHandler.DeleteProgram)
	programs.Patch("/:id/active", programHandler.SetProgramActive)
	programs.Post("/:id/exercises", programHandler.AddExercises)
	programs.Get("/:id/schedule", programHandler.GetSchedule)
	programs.Get("/:id/progress", progressHandler.FetchProgress)
	programs.Get("/:id/report", analyticsHandler.GetPatientReport)
	programs.Post("/:id/access-codes", enrollmentHandler.CreateAccessCode)
	programs.Get("/:id/access-codes", enrollmentHandler.ListAccessCodes)
	programs.Post("/:id/patients", enrollmentHandler.AssignPatients)

	authProtected.Post("/progress", progressHandler.RecordProgress)
	authProtected.Post("/enrollments/redeem", enrollmentHandler.RedeemCode)
	authProtected.Get("/patients", enrollmentHandler.ListPatients)
	authProtected.Get("/dashboard/home", analyticsHandler.GetHomeDashboard)

	api.Use("/v1/ws/progress", progressFeedHandler.WebSocketAuth)
	api.Get("/v1/ws/progress", websocket.New(progressFeedHandler.HandleWebSocket))

	return registerDocsRoutes(app, cfg)
}
