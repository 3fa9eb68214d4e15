package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/database"
	"github.com/taskflowhq/taskflow-api/internal/directory"
	"github.com/taskflowhq/taskflow-api/internal/middleware"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
	"github.com/taskflowhq/taskflow-api/internal/services"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine

	authService    *services.AuthService
	inviteService  *services.InviteService
	projectService *services.ProjectService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.Principal{},
		&models.Invite{},
		&models.Project{},
		&models.Task{},
		&models.TaskDependency{},
		&models.Attachment{},
		&models.Comment{},
		&models.Timer{},
	)
	require.NoError(t, err)
	require.NoError(t, database.AddIndexes(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	principalRepo := repository.NewPrincipalRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	timerRepo := repository.NewTimerRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	engine := authz.NewEngine(nil)
	dir := directory.New(principalRepo, nil)

	authService := services.NewAuthService(principalRepo, tenantRepo)
	tenantService := services.NewTenantService(tenantRepo, principalRepo, engine, nil, nil)
	inviteService := services.NewInviteService(inviteRepo, principalRepo, engine, nil, nil)
	projectService := services.NewProjectService(projectRepo, engine, nil, nil)
	taskService := services.NewTaskService(taskRepo, projectRepo, commentRepo, attachmentRepo, engine, nil, nil)
	timerService := services.NewTimerService(timerRepo, taskRepo, projectRepo, engine, nil)
	sched := scheduler.NewScheduler(projectRepo, taskRepo, depRepo, engine, nil, nil)

	authHandler := NewAuthHandler(authService)
	tenantHandler := NewTenantHandler(tenantService)
	inviteHandler := NewInviteHandler(inviteService)
	projectHandler := NewProjectHandler(projectService)
	taskHandler := NewTaskHandler(taskService)
	scheduleHandler := NewScheduleHandler(sched)
	timerHandler := NewTimerHandler(timerService)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("taskflow_session", store))
	requireAuth := middleware.RequireAuth(dir)

	api := r.Group("/api")
	{
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", requireAuth, authHandler.Me)

		api.GET("/invites/validate/:token", inviteHandler.ValidateInvite)

		api.GET("/tenants/:id", requireAuth, tenantHandler.GetTenant)

		api.POST("/invites", requireAuth, inviteHandler.CreateInvite)
		api.POST("/invites/redeem", requireAuth, inviteHandler.RedeemInvite)

		api.POST("/projects", requireAuth, projectHandler.CreateProject)
		api.GET("/projects", requireAuth, projectHandler.ListProjects)
		api.GET("/projects/:id", requireAuth, projectHandler.GetProject)
		api.DELETE("/projects/:id", requireAuth, projectHandler.DeleteProject)
		api.POST("/projects/:id/tasks", requireAuth, taskHandler.CreateTask)
		api.GET("/projects/:id/critical-path", requireAuth, scheduleHandler.CriticalPath)

		api.POST("/dependencies", requireAuth, scheduleHandler.AddDependency)

		api.POST("/timers/start", requireAuth, timerHandler.StartTimer)
		api.POST("/timers/stop", requireAuth, timerHandler.StopTimer)
	}

	return &testEnv{
		db:             db,
		router:         r,
		authService:    authService,
		inviteService:  inviteService,
		projectService: projectService,
	}
}

// do performs a JSON request, attaching the session cookie when given.
func (env *testEnv) do(t *testing.T, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin creates a tenant admin and returns its session cookies.
func (env *testEnv) signupAndLogin(t *testing.T, email, company string) []*http.Cookie {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": "supersecret", "company_name": company,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
