package main

import (
	"log"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/config"
	"github.com/wooglin/roster-api/internal/constants"
	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/handlers"
	"github.com/wooglin/roster-api/internal/logger"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/middleware"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/services"
	"github.com/wooglin/roster-api/internal/validation"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logg, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "roster-api")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logg.Fatal("Failed to load time zone", zap.String("time_zone", cfg.TimeZone), zap.Error(err))
	}

	// Connect to database
	if err := database.Connect(cfg, logg); err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(logg); err != nil {
		logg.Fatal("Failed to run migrations", zap.Error(err))
	}
	db := database.GetDB()

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	m := metrics.New()

	authService := services.NewAuthService(userRepo, memberRepo)
	memberService := services.NewMemberService(memberRepo, userRepo,
		validation.EmailValidator{Legacy: cfg.EmailLegacyValidation})
	shiftService := services.NewShiftService(
		repository.NewShiftRepository(db),
		repository.NewAssignmentRepository(db),
		memberRepo, loc, m,
	)
	eventService := services.NewEventService(repository.NewEventRepository(db))

	if cfg.AdminUsername != "" {
		created, err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logg.Fatal("Failed to bootstrap admin user", zap.Error(err))
		}
		if created {
			logg.Info("Created admin user", zap.String("username", cfg.AdminUsername))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logg))
	r.Use(m.Middleware())

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr(),
		"",
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logg.Fatal("Failed to create Redis store", zap.Error(err))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Routes{
		AuthService: authService,
		APIKeys:     cfg.APIKeys,
		Metrics:     m,
		Auth:        handlers.NewAuthHandler(authService),
		Members:     handlers.NewMemberHandler(memberService),
		Shifts:      handlers.NewShiftHandler(shiftService, logg),
		Events:      handlers.NewEventHandler(eventService, loc),
		Health:      handlers.NewHealthHandler(db),
	})

	logg.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logg.Fatal("Failed to start server", zap.Error(err))
	}
}
