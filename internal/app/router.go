package app

import (
	"cbt_backend/docs"
	"cbt_backend/internal/config"
	"cbt_backend/internal/middleware"
	"cbt_backend/internal/model"
	"cbt_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// Attempt lifecycle, available to every authenticated user.
		attempts := authGroup.Group("/attempts")
		{
			attempts.POST("", c.attempt.StartAttempt)
			attempts.GET("", c.attempt.ListAttempts)
			attempts.GET("/:id", c.attempt.GetAttempt)
			attempts.POST("/:id/answers", c.attempt.SubmitAnswer)
			attempts.PUT("/:id/review", c.attempt.ToggleReview)
			attempts.POST("/:id/finish", c.attempt.FinishAttempt)
			attempts.POST("/:id/abandon", c.attempt.AbandonAttempt)
			attempts.GET("/:id/insight", c.attempt.GetInsight)
		}

		// Read access to the catalogue for candidates.
		authGroup.GET("/papers", c.paper.ListPapers)
		authGroup.GET("/papers/:id", c.paper.GetPaper)
		authGroup.GET("/templates", c.template.ListTemplates)
		authGroup.GET("/templates/:id", c.template.GetTemplate)

		// Content authoring and user administration.
		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/papers", c.paper.CreatePaper)
			admin.PUT("/papers/:id", c.paper.UpdatePaper)
			admin.DELETE("/papers/:id", c.paper.DeletePaper)
			admin.POST("/papers/:id/sections", c.paper.CreateSection)
			admin.PUT("/sections/:id", c.paper.UpdateSection)
			admin.DELETE("/sections/:id", c.paper.DeleteSection)
			admin.POST("/sections/:id/subsections", c.paper.CreateSubsection)
			admin.PUT("/subsections/:id", c.paper.UpdateSubsection)
			admin.DELETE("/subsections/:id", c.paper.DeleteSubsection)

			admin.POST("/questions", c.question.CreateQuestion)
			admin.GET("/questions", c.question.ListQuestions)
			admin.GET("/questions/:id", c.question.GetQuestion)
			admin.PUT("/questions/:id", c.question.UpdateQuestion)
			admin.DELETE("/questions/:id", c.question.DeleteQuestion)

			admin.POST("/templates", c.template.CreateTemplate)
			admin.PUT("/templates/:id", c.template.UpdateTemplate)
			admin.DELETE("/templates/:id", c.template.DeleteTemplate)

			admin.GET("/admin/users", c.auth.ListUsers)
			admin.PUT("/admin/whitelist", c.auth.SetWhitelist)
		}
	}
}
