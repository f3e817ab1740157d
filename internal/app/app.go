package app

import (
	"fmt"
	"time"

	"axone_backend/internal/config"
	"axone_backend/internal/email"
	"axone_backend/internal/gateway"
	"axone_backend/internal/handlers"
	"axone_backend/internal/identity"
	"axone_backend/internal/logger"
	"axone_backend/internal/middleware"
	"axone_backend/internal/models"
	"axone_backend/internal/repositories"
	"axone_backend/internal/routes"
	"axone_backend/internal/services"
	"axone_backend/internal/signup"
	"axone_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(
		&models.Profile{},
		&models.Student{},
		&models.Payment{},
	); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// openDatabase открывает соединение с нужным драйвером.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, gormDB)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter()

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers, []byte(cfg.JWT.Secret))

	return ginRouter
}

// ServiceContainer - все сервисы приложения.
type ServiceContainer struct {
	ProvisioningService services.ProvisioningService
	ProfileService      services.ProfileService
	SignupManager       *signup.Manager
	EmailService        email.Provider
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB) *ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost == "" || cfg.Server.Env == "test" {
		logger.Warn("SMTP is not configured. Using MOCK email provider.")
		emailService = email.NewMockProvider()
	} else {
		emailService = email.NewGomailProvider(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
		)
	}

	// --- Внешние клиенты ---
	gatewayClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey)
	identityClient := identity.NewHTTPClient(cfg.Identity.BaseURL, cfg.Identity.ServiceKey)

	// --- Инициализация репозиториев ---
	profileRepo := repositories.NewProfileRepository(gormDB)
	studentRepo := repositories.NewStudentRepository(gormDB)
	paymentRepo := repositories.NewPaymentRepository(gormDB)

	// --- Инициализация сервисов ---
	provisioningService := services.NewProvisioningService(
		gatewayClient,
		identityClient,
		profileRepo,
		studentRepo,
		paymentRepo,
		cfg.Signup.DefaultCurrency,
		cfg.Signup.FallbackPassword,
	)
	profileService := services.NewProfileService(profileRepo, paymentRepo)

	// --- Signup-флоу ---
	signupStore, err := signup.NewFileStore(cfg.Signup.StateDir)
	if err != nil {
		logger.Fatal("Failed to initialize signup state store", "error", err, "dir", cfg.Signup.StateDir)
	}
	signupManager := signup.NewManager(signup.Deps{
		Store:          signupStore,
		Identities:     identityClient,
		Gateway:        gatewayClient,
		Confirmer:      provisioningService,
		Mailer:         emailService,
		SuccessURL:     cfg.Gateway.SuccessURL,
		CancelURL:      cfg.Gateway.CancelURL,
		ConfirmTimeout: 15 * time.Second,
		RetryBackoff:   2 * time.Second,
	})

	return &ServiceContainer{
		ProvisioningService: provisioningService,
		ProfileService:      profileService,
		SignupManager:       signupManager,
		EmailService:        emailService,
	}
}

func initializeHandlers(cfg *config.Config, container *ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	jwtTTL := time.Duration(cfg.JWT.TTL) * time.Minute

	return &handlers.AppHandlers{
		Provisioning: handlers.NewProvisioningHandler(baseHandler, container.ProvisioningService),
		Signup:       handlers.NewSignupHandler(baseHandler, container.SignupManager, []byte(cfg.JWT.Secret), jwtTTL),
		Profile:      handlers.NewProfileHandler(baseHandler, container.ProfileService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
