package app

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "authcore/docs"
	"authcore/internal/config"
	"authcore/internal/handlers"
	"authcore/internal/middleware"
	"authcore/internal/repositories"
	"authcore/internal/routes"
	"authcore/internal/services"
	"authcore/pkg/redis"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// === Optional session cache ===
	redisClient := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionCache := services.NewSessionCache(redisClient)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	oauthRepo := repositories.NewOAuthLinkRepository(db)

	// === Services ===
	hasher := services.NewPasswordHasher()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Server.BaseURL,
	)
	tokenService := services.NewTokenService(tokenRepo,
		cfg.Auth.VerificationTokenTTL, cfg.Auth.PasswordResetTokenTTL)
	sessionService := services.NewSessionService(sessionRepo, userRepo, sessionCache, services.SessionConfig{
		TTL:           cfg.Auth.SessionTTL,
		MaxLifetime:   cfg.Auth.SessionMaxLifetime,
		RefreshWindow: cfg.Auth.SessionRefreshWindow,
	})
	authService := services.NewAuthService(userRepo, oauthRepo, tokenService, sessionService, hasher, emailService, services.AuthPolicy{
		MinPasswordLength:    cfg.Auth.MinPasswordLength,
		RequireVerifiedEmail: cfg.Auth.RequireVerifiedEmail,
	})

	// === Handlers ===
	cookies := handlers.NewCookieHelper(cfg.IsProduction())
	authHandler := handlers.NewAuthHandler(authService, cookies)
	healthHandler := handlers.NewHealthHandler()

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.CSRF(cfg.Server.AllowedOrigins))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireSession := middleware.RequireSession(sessionService, cookies)
	routes.SetupRoutes(router, authHandler, healthHandler, requireSession)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Auth service listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
