package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/database"
	"github.com/taskflowhq/taskflow-api/internal/directory"
	"github.com/taskflowhq/taskflow-api/internal/handlers"
	"github.com/taskflowhq/taskflow-api/internal/logger"
	"github.com/taskflowhq/taskflow-api/internal/metrics"
	"github.com/taskflowhq/taskflow-api/internal/middleware"
	"github.com/taskflowhq/taskflow-api/internal/notifier"
	"github.com/taskflowhq/taskflow-api/internal/repository"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
	"github.com/taskflowhq/taskflow-api/internal/services"
	"github.com/taskflowhq/taskflow-api/internal/sweeper"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logging before anything that logs
	if err := logger.Init(&logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "taskflow-api",
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zlog := logger.Get()
	defer zlog.Sync()

	gin.SetMode(cfg.GinMode)

	// Connect to database and migrate
	if err := database.Connect(cfg); err != nil {
		zlog.Fatal("Failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		zlog.Fatal("Failed to run migrations")
	}
	db := database.GetDB()

	// Repositories
	principalRepo := repository.NewPrincipalRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	timerRepo := repository.NewTimerRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Core components
	engine := authz.NewEngine(zlog)
	dir := directory.New(principalRepo, zlog)
	pub := notifier.NewPublisher(2*time.Second, 16)
	pub.SetDropHook(metrics.NotifierDrop)
	defer pub.Close()

	// Services
	authService := services.NewAuthService(principalRepo, tenantRepo)
	tenantService := services.NewTenantService(tenantRepo, principalRepo, engine, pub, zlog)
	inviteService := services.NewInviteService(inviteRepo, principalRepo, engine, pub, zlog)
	projectService := services.NewProjectService(projectRepo, engine, pub, zlog)
	taskService := services.NewTaskService(taskRepo, projectRepo, commentRepo, attachmentRepo, engine, pub, zlog)
	timerService := services.NewTimerService(timerRepo, taskRepo, projectRepo, engine, zlog)
	sched := scheduler.NewScheduler(projectRepo, taskRepo, depRepo, engine, pub, zlog)

	// Background maintenance
	sweep := sweeper.New(inviteService, zlog)
	if err := sweep.Start(cfg.InviteSweepSpec); err != nil {
		zlog.Fatal("Failed to start sweeper")
	}
	defer sweep.Stop()

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware())
	r.Use(metrics.Middleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("taskflow_session", store))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	scheduleHandler := handlers.NewScheduleHandler(sched)
	timerHandler := handlers.NewTimerHandler(timerService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	requireAuth := middleware.RequireAuth(dir)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// Public invite validation; everything else requires a session.
		api.GET("/invites/validate/:token", inviteHandler.ValidateInvite)

		tenants := api.Group("/tenants", requireAuth)
		{
			tenants.GET("/:id", tenantHandler.GetTenant)
			tenants.PATCH("/:id", tenantHandler.UpdateTenant)
			tenants.POST("/:id/archive", tenantHandler.ArchiveTenant)
			tenants.DELETE("/:id", tenantHandler.DeleteTenant)
			tenants.GET("/:id/members", tenantHandler.ListMembers)
		}

		invites := api.Group("/invites", requireAuth)
		{
			invites.POST("", inviteHandler.CreateInvite)
			invites.GET("", inviteHandler.ListInvites)
			invites.POST("/redeem", inviteHandler.RedeemInvite)
			invites.DELETE("/:id", inviteHandler.RevokeInvite)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			projects.POST("/:id/tasks", taskHandler.CreateTask)
			projects.GET("/:id/tasks", taskHandler.ListTasks)

			projects.GET("/:id/dependencies", scheduleHandler.ListDependencies)
			projects.GET("/:id/critical-path", scheduleHandler.CriticalPath)
			projects.POST("/:id/auto-schedule", scheduleHandler.AutoSchedule)
			projects.POST("/:id/rebuild-chain", scheduleHandler.RebuildChain)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move", scheduleHandler.MoveTask)

			tasks.POST("/:id/comments", taskHandler.AddComment)
			tasks.GET("/:id/comments", taskHandler.ListComments)
			tasks.POST("/:id/attachments", taskHandler.AddAttachment)
			tasks.GET("/:id/attachments", taskHandler.ListAttachments)
		}

		api.DELETE("/comments/:commentId", requireAuth, taskHandler.DeleteComment)
		api.DELETE("/attachments/:attachmentId", requireAuth, taskHandler.DeleteAttachment)

		deps := api.Group("/dependencies", requireAuth)
		{
			deps.POST("", scheduleHandler.AddDependency)
			deps.DELETE("/:fromId/:toId", scheduleHandler.RemoveDependency)
		}

		timers := api.Group("/timers", requireAuth)
		{
			timers.POST("/start", timerHandler.StartTimer)
			timers.POST("/stop", timerHandler.StopTimer)
			timers.GET("/current", timerHandler.CurrentTimer)
		}
	}

	zlog.Info("Starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		zlog.Fatal("Server exited")
	}
}
