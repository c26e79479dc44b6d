package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"main/config"
	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"DATABASE_URL",
		"REDIS_URL",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"REFRESH_TOKEN_EXPIRATION_TIME",
	}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()

	dbCfg := config.LoadDatabaseConfig()
	utils.InitPostgres(dbCfg.DSN, dbCfg.MaxOpenConns, dbCfg.MaxIdleConns, dbCfg.ConnMaxIdleTime, dbCfg.ConnMaxLifetime)
}

func setupRouter(guards *services.GuardManager) *gin.Engine {
	router := gin.Default()

	// Repositories
	userRepo := repository.GetUserRepo(utils.DB)
	sessionRepo := repository.GetSessionRepo(utils.DB)
	activityRepo := repository.GetActivityRepo(utils.DB)
	projectsRepo := repository.GetProjectsRepo(utils.DB)
	servicesRepo := repository.GetServicesRepo(utils.DB)
	blogRepo := repository.GetBlogRepo(utils.DB)
	reviewsRepo := repository.GetReviewsRepo(utils.DB)
	enquiriesRepo := repository.GetEnquiriesRepo(utils.DB)
	contentRepo := repository.GetContentRepo(utils.DB)

	// Services
	assets := services.NewAssetClient()
	mailer := services.NewMailer()
	userService := usecase.NewUserService(userRepo)
	blogService := usecase.NewBlogService(blogRepo)
	contentService := usecase.NewContentService(contentRepo, assets)
	statsHandler := handler.NewStatsHandler(projectsRepo, enquiriesRepo, activityRepo, sessionRepo)
	previewHub := handler.NewPreviewHub()

	seedAdminUser(userRepo)

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.RequestSizeLimiter(12 << 20))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", handler.HealthHandler)

	// Public site endpoints
	public := router.Group("/api")
	{
		catalog := public.Group("")
		catalog.Use(middleware.CacheControlMiddleware(5 * time.Minute))
		{
			catalog.GET("/content/:page", func(c *gin.Context) {
				handler.GetPageContentHandler(c, contentService)
			})
			catalog.GET("/projects", func(c *gin.Context) {
				handler.ListPublishedProjectsHandler(c, projectsRepo)
			})
			catalog.GET("/projects/:slug", func(c *gin.Context) {
				handler.GetProjectBySlugHandler(c, projectsRepo)
			})
			catalog.GET("/services", func(c *gin.Context) {
				handler.ListActiveServicesHandler(c, servicesRepo)
			})
			catalog.GET("/blog", func(c *gin.Context) {
				handler.ListPublishedPostsHandler(c, blogService)
			})
			catalog.GET("/blog/:slug", func(c *gin.Context) {
				handler.GetPublishedPostHandler(c, blogService)
			})
			catalog.GET("/reviews", func(c *gin.Context) {
				handler.ListApprovedReviewsHandler(c, reviewsRepo)
			})
		}

		public.POST("/enquiries", func(c *gin.Context) {
			handler.SubmitEnquiryHandler(c, enquiriesRepo, mailer)
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, userRepo, sessionRepo, activityRepo, guards)
			})
			auth.POST("/refresh", handler.RefreshTokenHandler)
		}
	}

	// Back-office endpoints
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.SessionMiddleware(sessionRepo, userRepo, guards))
	{
		admin.POST("/logout", func(c *gin.Context) {
			handler.LogoutHandler(c, guards, contentService)
		})
		admin.POST("/register", func(c *gin.Context) {
			handler.RegistrationHandler(c, userService)
		})

		account := admin.Group("/account")
		{
			account.GET("/profile", func(c *gin.Context) {
				handler.ProfileHandler(c, userService)
			})
			account.POST("/change-password", func(c *gin.Context) {
				handler.ChangePasswordHandler(c, userService)
			})
			account.GET("/2fa/secret", func(c *gin.Context) {
				handler.Generate2FASecretHandler(c, userRepo)
			})
			account.POST("/2fa/enable", func(c *gin.Context) {
				handler.Enable2FAHandler(c, userRepo)
			})
			account.POST("/2fa/disable", func(c *gin.Context) {
				handler.Disable2FAHandler(c, userRepo)
			})
		}

		session := admin.Group("/session")
		{
			session.GET("/status", func(c *gin.Context) {
				handler.SessionStatusHandler(c, guards)
			})
			session.POST("/extend", func(c *gin.Context) {
				handler.SessionExtendHandler(c, guards)
			})
			session.POST("/heartbeat", handler.SessionHeartbeatHandler)
			session.GET("/active", func(c *gin.Context) {
				handler.ActiveSessionsHandler(c, sessionRepo)
			})
			session.POST("/logout-all", func(c *gin.Context) {
				handler.LogoutAllHandler(c, sessionRepo, guards)
			})
		}

		projects := admin.Group("/projects")
		{
			projects.GET("", func(c *gin.Context) {
				handler.ListProjectsHandler(c, projectsRepo)
			})
			projects.POST("", func(c *gin.Context) {
				handler.CreateProjectHandler(c, projectsRepo, activityRepo)
			})
			projects.PUT("/:id", func(c *gin.Context) {
				handler.UpdateProjectHandler(c, projectsRepo, activityRepo)
			})
			projects.POST("/:id/feature", func(c *gin.Context) {
				handler.ToggleProjectFeaturedHandler(c, projectsRepo, activityRepo)
			})
			projects.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteProjectHandler(c, projectsRepo, activityRepo)
			})
		}

		siteServices := admin.Group("/services")
		{
			siteServices.GET("", func(c *gin.Context) {
				handler.ListServicesHandler(c, servicesRepo)
			})
			siteServices.POST("", func(c *gin.Context) {
				handler.CreateServiceHandler(c, servicesRepo, activityRepo)
			})
			siteServices.PUT("/:id", func(c *gin.Context) {
				handler.UpdateServiceHandler(c, servicesRepo, activityRepo)
			})
			siteServices.POST("/:id/toggle", func(c *gin.Context) {
				handler.ToggleServiceActiveHandler(c, servicesRepo, activityRepo)
			})
			siteServices.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteServiceHandler(c, servicesRepo, activityRepo)
			})
		}

		blog := admin.Group("/blog")
		{
			blog.GET("", func(c *gin.Context) {
				handler.ListPostsHandler(c, blogService)
			})
			blog.GET("/:id", func(c *gin.Context) {
				handler.GetPostHandler(c, blogService)
			})
			blog.POST("", func(c *gin.Context) {
				handler.CreatePostHandler(c, blogService, activityRepo)
			})
			blog.PUT("/:id", func(c *gin.Context) {
				handler.UpdatePostHandler(c, blogService, activityRepo)
			})
			blog.DELETE("/:id", func(c *gin.Context) {
				handler.DeletePostHandler(c, blogService, activityRepo)
			})
		}

		reviews := admin.Group("/reviews")
		{
			reviews.GET("", func(c *gin.Context) {
				handler.ListReviewsHandler(c, reviewsRepo)
			})
			reviews.POST("", func(c *gin.Context) {
				handler.CreateReviewHandler(c, reviewsRepo, activityRepo)
			})
			reviews.POST("/:id/approve", func(c *gin.Context) {
				handler.ToggleReviewApprovedHandler(c, reviewsRepo, activityRepo)
			})
			reviews.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteReviewHandler(c, reviewsRepo, activityRepo)
			})
		}

		enquiries := admin.Group("/enquiries")
		{
			enquiries.GET("", func(c *gin.Context) {
				handler.ListEnquiriesHandler(c, enquiriesRepo)
			})
			enquiries.POST("/:id/handled", func(c *gin.Context) {
				handler.ToggleEnquiryHandledHandler(c, enquiriesRepo, activityRepo)
			})
			enquiries.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteEnquiryHandler(c, enquiriesRepo, activityRepo)
			})
		}

		content := admin.Group("/content")
		{
			content.GET("/:page/drafts", func(c *gin.Context) {
				handler.GetDraftsHandler(c, contentService)
			})
			content.POST("/:page/draft", func(c *gin.Context) {
				handler.SetDraftHandler(c, contentService, previewHub)
			})
			content.POST("/:page/publish", func(c *gin.Context) {
				handler.PublishContentHandler(c, contentService, activityRepo)
			})
			content.POST("/:page/discard", func(c *gin.Context) {
				handler.DiscardContentHandler(c, contentService)
			})
		}

		preview := admin.Group("/preview")
		{
			preview.GET("/ws", func(c *gin.Context) {
				handler.PreviewSocketHandler(c, previewHub)
			})
			preview.POST("/broadcast", func(c *gin.Context) {
				handler.BroadcastHandler(c, previewHub)
			})
		}

		admin.POST("/uploads", func(c *gin.Context) {
			handler.UploadHandler(c, assets, contentService)
		})
		admin.GET("/activity", func(c *gin.Context) {
			handler.ActivityFeedHandler(c, activityRepo)
		})
		admin.GET("/stats", statsHandler.GetDashboardStats)
		admin.GET("/stats/system", statsHandler.GetSystemStats)
	}

	return router
}

// seedAdminUser creates the first admin account from the environment when
// the users table is empty, so a fresh deployment is reachable.
func seedAdminUser(userRepo *repository.UserRepo) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	count, err := userRepo.CountUsers()
	if err != nil || count > 0 {
		return
	}

	hashed, err := services.HashPassword(password)
	if err != nil {
		log.Printf("Warning: Failed to hash seed admin password: %v", err)
		return
	}

	email := utils.GetEnvAsString("ADMIN_EMAIL", username+"@localhost")
	if _, err := userRepo.EnsureAdmin(username, email, hashed, utils.GenerateUserID); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %s", username)
}

func main() {
	redisURL := os.Getenv("REDIS_URL")

	sessionCache, err := services.NewSessionCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect session cache: %v", err)
	}
	services.GlobalSessionCache = sessionCache

	blacklist, err := services.NewTokenBlacklist(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect token blacklist: %v", err)
	}
	services.TokenBlacklist = blacklist

	if err := repository.EnsureSchema(utils.DB); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	guardCfg := services.LoadGuardConfig()

	// Clock records outlive the re-entry ceiling so a stale timestamp is
	// still there to fail the ceiling check, rather than silently absent.
	clockStore := services.NewRedisClockStore(sessionCache.Client(), 4*guardCfg.ReentryCeiling)
	clock := services.NewActivityClock(clockStore)

	sessionRepo := repository.GetSessionRepo(utils.DB)
	activityRepo := repository.GetActivityRepo(utils.DB)
	guards := services.NewGuardManager(guardCfg, clock, sessionRepo, sessionRepo, activityRepo)
	defer guards.Shutdown()

	router := setupRouter(guards)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
