package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/internal/middleware"
	"lingua_tutor_backend/internal/repository"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/pkg/database"
)

const testJWTSecret = "controller-test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer 内存 SQLite + 真实仓储和服务，AI 与语音服务均未配置
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := database.Dialector(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	db, err := database.Open(d, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testJWTSecret, ExpireTime: time.Hour}}

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	curricula := repository.NewCurriculumRepository(db)
	sessions := repository.NewSessionRepository(db)
	knowledge := repository.NewKnowledgeRepository(db)
	intro := service.NewIntroCache(nil)
	provider := service.NewAIService(config.AIConfig{})

	auth := NewAuthController(service.NewAuthService(users, cfg))
	profile := NewProfileController(service.NewProfileService(profiles, intro))
	curriculum := NewCurriculumController(service.NewCurriculumService(users, profiles, curricula, provider, intro))
	dashboard := NewDashboardController(service.NewDashboardService(users, curricula, sessions, knowledge, config.DashboardConfig{}))
	session := NewSessionController(service.NewLessonSessionService(curricula, sessions, knowledge))
	voice := NewVoiceController(service.NewVoiceService(config.VoiceConfig{}, nil))
	health := NewHealthController(db, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", health.HealthCheck)
	api.POST("/auth/signup", auth.Signup)
	api.POST("/auth/login", auth.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(func() string { return testJWTSecret }))
	authed.GET("/auth/me", auth.Me)
	authed.POST("/profile", profile.SaveProfile)
	authed.GET("/profile", profile.GetProfile)
	authed.POST("/curriculum/generate", curriculum.Generate)
	authed.GET("/curriculum", curriculum.Get)
	authed.GET("/curriculum/intro", curriculum.Introduction)
	authed.GET("/dashboard", dashboard.GetDashboard)
	authed.GET("/dashboard/knowledge", dashboard.GetKnowledge)
	authed.GET("/dashboard/knowledge/export", dashboard.ExportKnowledge)
	authed.POST("/lessons/:id/sessions", session.StartSession)
	authed.POST("/sessions/:id/complete", session.CompleteSession)
	authed.POST("/knowledge", session.RecordKnowledge)
	authed.POST("/voice/tts", voice.TextToSpeech)
	authed.POST("/voice/tts/stream", voice.StreamTextToSpeech)
	authed.GET("/voice/voices", voice.Voices)
	authed.GET("/voice/status", voice.Status)

	return &testServer{t: t, router: r, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// signup 注册并返回令牌
func (s *testServer) signup(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": email, "password": "Secret123"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &result)
	require.NotEmpty(s.t, result.Token)
	return result.Token
}

func validProfile() gin.H {
	return gin.H{
		"currentLevel":     "A1",
		"learningGoal":     "tourism",
		"timelineWeeks":    4,
		"studyFrequency":   "2x_week",
		"sessionDuration":  30,
		"includesHomework": false,
		"tutorPersonality": "encouraging",
	}
}

// onboard 注册并提交档案
func (s *testServer) onboard(email string) string {
	s.t.Helper()
	token := s.signup(email)
	w := s.do(http.MethodPost, "/api/profile", token, validProfile())
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return token
}
