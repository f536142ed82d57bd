package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/config"
	"github.com/projectsoft/obras-api/internal/database"
	"github.com/projectsoft/obras-api/internal/handlers"
	"github.com/projectsoft/obras-api/internal/middleware"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"

	_ "github.com/projectsoft/obras-api/docs/api" // Swagger docs
)

// @title Obras API
// @version 1.0.0
// @description Construction-site daily reporting service

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,HEAD,PUT,PATCH,POST,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Origin,Accept,X-Requested-With",
		AllowCredentials: true,
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("obras_api")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth primitives shared by the guard and the login flow
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	guard := &middleware.Auth{DB: db, Tokens: tokens}
	mailer := services.NewMailer(cfg)

	// Handlers
	authHandler := &handlers.AuthHandler{DB: db, Tokens: tokens, Cfg: cfg, Mailer: mailer}
	dashboardHandler := &handlers.DashboardHandler{DB: db}
	civHandler := &handlers.CIVHandler{DB: db}
	activityHandler := &handlers.ActivityHandler{DB: db, Cfg: cfg}
	reportHandler := &handlers.ReportHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	roleHandler := &handlers.RoleHandler{DB: db}
	permissionHandler := &handlers.PermissionHandler{DB: db}
	projectHandler := &handlers.ProjectHandler{DB: db}
	messageHandler := &handlers.MessageHandler{DB: db}
	notificationHandler := &handlers.NotificationHandler{DB: db}
	photoHandler := &handlers.PhotoHandler{DB: db}

	// Health probe
	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Public auth routes
	authRoutes := app.Group("/auth")
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/forgot-password", authHandler.ForgotPassword)
	authRoutes.Get("/reset/:token", authHandler.ValidateResetToken)
	authRoutes.Post("/reset/:token", authHandler.ResetPassword)

	authn := guard.Authenticate()

	app.Get("/dashboard", authn, dashboardHandler.GetDashboard)

	civs := app.Group("/civs", authn)
	civs.Get("/", civHandler.ListCIVs)
	civs.Post("/", civHandler.CreateCIV)
	civs.Delete("/:id", civHandler.DeleteCIV)

	activities := app.Group("/activities", authn)
	activities.Get("/", guard.Authorize("view_activities"), activityHandler.ListActivities)
	activities.Get("/:id", guard.Authorize("view_activities"), activityHandler.GetActivity)
	activities.Post("/", guard.Authorize("create_activities"), activityHandler.CreateActivity)
	activities.Put("/:id", guard.Authorize("update_activities"), activityHandler.UpdateActivity)
	activities.Delete("/:id", guard.Authorize("delete_activities"), activityHandler.DeleteActivity)

	reports := app.Group("/daily-reports", authn)
	reports.Get("/", guard.Authorize("view_reports"), reportHandler.ListReports)
	reports.Get("/:id", guard.Authorize("view_reports"), reportHandler.GetReport)
	reports.Post("/", guard.Authorize("create_reports"), reportHandler.CreateReport)
	reports.Put("/:id", guard.Authorize("edit_reports"), reportHandler.UpdateReport)
	reports.Delete("/:id", guard.Authorize("delete_reports"), reportHandler.DeleteReport)
	reports.Put("/:id/approve", guard.Authorize("approve_reports"), reportHandler.ApproveReport)
	reports.Put("/:id/reject", guard.Authorize("reject_reports"), reportHandler.RejectReport)
	reports.Get("/:id/pdf", guard.Authorize("view_reports"), reportHandler.ReportPDF)

	users := app.Group("/users", authn)
	users.Get("/", userHandler.ListUsers)
	users.Get("/email/:email", userHandler.GetUserByEmail)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id/roles", userHandler.UpdateUserRoles)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	roles := app.Group("/roles", authn)
	roles.Get("/", guard.Authorize("view_roles"), roleHandler.ListRoles)
	roles.Post("/", guard.Authorize("manage_roles"), roleHandler.CreateRole)
	roles.Put("/:id", guard.Authorize("manage_roles"), roleHandler.UpdateRole)
	roles.Delete("/:id", guard.Authorize("manage_roles"), roleHandler.DeleteRole)

	permissions := app.Group("/permissions", authn)
	permissions.Get("/", guard.Authorize("view_permissions"), permissionHandler.ListPermissions)
	permissions.Post("/", guard.Authorize("manage_permissions"), permissionHandler.CreatePermission)
	permissions.Put("/:id", guard.Authorize("manage_permissions"), permissionHandler.UpdatePermission)
	permissions.Delete("/:id", guard.Authorize("manage_permissions"), permissionHandler.DeletePermission)

	projects := app.Group("/projects", authn)
	projects.Get("/", projectHandler.ListProjects)
	projects.Get("/:id", projectHandler.GetProject)
	projects.Post("/", projectHandler.CreateProject)
	projects.Put("/:id", projectHandler.UpdateProject)
	projects.Delete("/:id", projectHandler.DeleteProject)

	api := app.Group("/api", authn)
	api.Post("/messages", messageHandler.CreateMessage)
	api.Get("/messages", messageHandler.ListMessages)
	api.Post("/notifications", messageHandler.CreateNotification)
	api.Get("/notifications", messageHandler.ListAllNotifications)

	notifications := app.Group("/notifications", authn)
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Put("/mark-as-read", notificationHandler.MarkNotificationsAsRead)

	photos := app.Group("/photos", authn)
	photos.Get("/", photoHandler.GetPhotosByCIV)
	photos.Post("/", photoHandler.UploadPhoto)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := types.TypeInternal

	switch e := err.(type) {
	case *types.CustomError:
		code = e.Code
		message = e.Message
		errorType = e.Type
	case *fiber.Error:
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
