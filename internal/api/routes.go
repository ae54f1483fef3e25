package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/auth"
	"resumeforge/internal/config"
	"resumeforge/internal/editor"
	"resumeforge/internal/importer"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
)

// Dependencies 汇总路由注册所需的服务实例，由 cmd/api 组装。
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Queue    taskEnqueuer
	Storage  storage.ObjectStore
	Auth     *auth.AuthService
	Editor   *editor.Service
	Renderer *render.Renderer
	Importer *importer.Importer
	Logger   *slog.Logger
}

// RegisterRoutes 注册 /v1 下的全部业务路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	authHandler := NewAuthHandler(deps.DB, deps.Auth, deps.Redis,
		LoginLimits{
			MaxAttempts:  cfg.Auth.LoginMaxAttempts,
			Window:       cfg.Auth.LoginWindow,
			LockDuration: cfg.Auth.LockDuration,
		},
		CookieOptions{Domain: cfg.API.CookieDomain, Secure: cfg.API.CookieSecure},
	)
	resumeHandler := NewResumeHandler(deps.Editor, deps.Renderer, deps.Storage, cfg.API.PublicOrigin)
	registerResourceRoutes(router, deps, authHandler, resumeHandler)

	v1 := router.Group("/v1")
	wsHandler := NewWsHandler(deps.Redis, deps.Auth, deps.Logger, cfg.API.AllowedOrigins)
	v1.GET("/ws", wsHandler.HandleConnection)
}

// registerResourceRoutes 注册除 websocket 外的路由，测试可直接使用。
func registerResourceRoutes(router *gin.Engine, deps Dependencies, authHandler *AuthHandler, resumeHandler *ResumeHandler) {
	sectionHandler := NewSectionHandler(deps.Editor)
	styleHandler := NewStyleHandler(deps.Editor)
	exportHandler := NewExportHandler(deps.Editor, deps.Renderer, deps.Queue, deps.Storage)
	importHandler := NewImportHandler(deps.Importer, deps.Editor)
	publicHandler := NewPublicHandler(deps.Editor, resumeHandler)

	authMiddleware := middleware.AuthMiddleware(deps.Auth)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			// 资料与改密不经过改密闸门，待改密账号需要它们完成流程。
			authGroup.GET("/profile", authMiddleware, authHandler.Profile)
			authGroup.POST("/password", authMiddleware, authHandler.ChangePassword)
		}

		public := v1.Group("/public")
		{
			public.GET("/resumes/:slug", publicHandler.GetShared)
			public.GET("/resumes/:slug/html", publicHandler.GetSharedHTML)
		}

		protected := v1.Group("")
		protected.Use(authMiddleware, passwordGate)
		{
			protected.GET("/templates", ListTemplates)
			protected.GET("/skills/categories", ListSkillCategories)
			protected.POST("/import/parse", importHandler.Parse)

			resumes := protected.Group("/resumes")
			{
				resumes.GET("", resumeHandler.ListResumes)
				resumes.POST("", resumeHandler.CreateResume)
				resumes.GET("/:id", resumeHandler.GetResume)
				resumes.PUT("/:id", resumeHandler.ReplaceResume)
				resumes.PATCH("/:id", resumeHandler.PatchResume)
				resumes.DELETE("/:id", resumeHandler.DeleteResume)
				resumes.GET("/:id/preview", resumeHandler.PreviewResume)
				resumes.GET("/:id/history", resumeHandler.History)
				resumes.POST("/:id/undo", resumeHandler.Undo)
				resumes.POST("/:id/redo", resumeHandler.Redo)
				resumes.POST("/:id/share", resumeHandler.Share)
				resumes.DELETE("/:id/share", resumeHandler.Unshare)

				resumes.GET("/:id/sections", sectionHandler.ListSections)
				resumes.POST("/:id/sections", sectionHandler.AddSection)
				resumes.POST("/:id/sections/reorder", sectionHandler.Reorder)

				resumes.GET("/:id/style", styleHandler.GetStyle)
				resumes.PUT("/:id/style", styleHandler.ReplaceStyle)
				resumes.PATCH("/:id/style", styleHandler.PatchStyle)

				resumes.GET("/:id/export/word", exportHandler.ExportWord)
				resumes.POST("/:id/export/pdf", exportHandler.ExportPDF)
				resumes.GET("/:id/export/pdf/link", exportHandler.PDFLink)

				resumes.POST("/:id/import", importHandler.Apply)
			}

			sections := protected.Group("/sections")
			{
				sections.GET("/:id", sectionHandler.GetSection)
				sections.PUT("/:id", sectionHandler.ReplaceSection)
				sections.PATCH("/:id", sectionHandler.PatchSection)
				sections.DELETE("/:id", sectionHandler.DeleteSection)
			}
		}
	}
}
