package app

import (
	"database/sql"
	"fmt"
	"log"

	"complaintdesk/internal/config"
	"complaintdesk/internal/handlers"
	"complaintdesk/internal/middleware"
	"complaintdesk/internal/pdf"
	"complaintdesk/internal/repositories"
	"complaintdesk/internal/routes"
	"complaintdesk/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "complaintdesk/docs"
)

func Run() {
	cfg := config.LoadConfig()

	middleware.SetJWTKey([]byte(cfg.Auth.JWTSecret))

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	challengeRepo := repositories.NewRecoveryChallengeRepository(db)
	complaintRepo := repositories.NewComplaintRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.BcryptCost, []byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL())
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	// Telegram-алерты опциональны: без токена просто работаем без них
	var alertService services.AlertService
	if cfg.Telegram.BotToken != "" {
		alertService, err = services.NewTelegramAlertService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Printf("telegram alerts disabled: %v", err)
			alertService = nil
		}
	}

	userService := services.NewUserService(
		userRepo,
		emailService,
		authService,
		alertService,
		cfg.Auth.MaxLoginAttempts,
		cfg.Auth.MaxRecoveryAttempts,
	)
	recoveryService := services.NewRecoveryService(
		userRepo,
		challengeRepo,
		emailService,
		authService,
		alertService,
		cfg.Auth.OTPLength,
		cfg.Auth.TokenBytes,
		cfg.Auth.OTPAttempts,
		cfg.Auth.OTPTTL(),
		cfg.Auth.MaxLoginAttempts,
		cfg.Auth.MaxRecoveryAttempts,
	)
	complaintService := services.NewComplaintService(complaintRepo, alertService)

	reportGen := pdf.NewReportGenerator("ComplaintDesk")

	// === Handlers ===
	userHandler := handlers.NewUserHandler(userService, recoveryService)
	complaintHandler := handlers.NewComplaintHandler(complaintService, reportGen)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, userHandler, complaintHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
