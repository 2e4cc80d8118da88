package app

import (
	"lingua_tutor_backend/docs"
	"lingua_tutor_backend/internal/middleware"
	"lingua_tutor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/signup", c.auth.Signup)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.jwtSecret))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		authGroup.POST("/profile", c.profile.SaveProfile)
		authGroup.GET("/profile", c.profile.GetProfile)

		authGroup.POST("/curriculum/generate", c.curriculum.Generate)
		authGroup.GET("/curriculum", c.curriculum.Get)
		authGroup.GET("/curriculum/intro", c.curriculum.Introduction)

		authGroup.GET("/dashboard", c.dashboard.GetDashboard)
		authGroup.GET("/dashboard/knowledge", c.dashboard.GetKnowledge)
		authGroup.GET("/dashboard/knowledge/export", c.dashboard.ExportKnowledge)

		// 学习会话与知识点
		authGroup.POST("/lessons/:id/sessions", c.session.StartSession)
		authGroup.POST("/sessions/:id/complete", c.session.CompleteSession)
		authGroup.POST("/knowledge", c.session.RecordKnowledge)

		// 语音
		voice := authGroup.Group("/voice")
		{
			voice.POST("/tts", c.voice.TextToSpeech)
			voice.POST("/tts/stream", c.voice.StreamTextToSpeech)
			voice.GET("/voices", c.voice.Voices)
			voice.GET("/status", c.voice.Status)
		}
	}
}
