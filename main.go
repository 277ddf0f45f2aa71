package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weba-hub/weba-hub-api/config"
	"github.com/weba-hub/weba-hub-api/controllers"
	"github.com/weba-hub/weba-hub-api/middleware"
	"github.com/weba-hub/weba-hub-api/models"
	"github.com/weba-hub/weba-hub-api/services"
	"github.com/weba-hub/weba-hub-api/utils"
)

func main() {
	// Basic logging
	log.Println("Starting Weba Hub API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.UploadDir = cfg.UploadDir

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	err = db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.Certification{},
		&models.Education{},
		&models.PortfolioProject{},
		&models.Ticket{},
		&models.StatusLog{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize S3-backed photo storage when a bucket is configured;
	// otherwise photos stay on local disk and are served from /uploads
	if cfg.HasS3() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Ticket photos stored in S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		log.Printf("No S3 bucket configured, ticket photos stored in %s", cfg.UploadDir)
	}

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the router with CORS and the full API v1 route table
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	requireAuth := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Technician discovery is public; browsing needs no account
		technicians := v1.Group("/technicians")
		{
			technicians.GET("/service", controllers.FindTechniciansByService)
			technicians.GET("/counts", controllers.GetTechnicianCountsByDistance)
			technicians.GET("/subservice", controllers.GetTechniciansBySubService)
		}

		// Locally stored ticket photos
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		// User profiles
		users := v1.Group("/users", requireAuth)
		{
			users.POST("", controllers.CreateUser)
			users.GET("/me", controllers.GetMyProfile)
			users.PUT("/me", controllers.UpdateMyProfile)

			// Profile enrichment sections
			users.PUT("/me/picture", controllers.UpdateProfilePicture)
			users.PUT("/me/intro-video", controllers.UpdateIntroVideo)
			users.POST("/me/skills", controllers.AddSkill)
			users.PUT("/me/skills/:skillId", controllers.UpdateSkill)
			users.DELETE("/me/skills/:skillId", controllers.RemoveSkill)
			users.POST("/me/certifications", controllers.AddCertification)
			users.DELETE("/me/certifications/:certificationId", controllers.RemoveCertification)
			users.POST("/me/education", controllers.AddEducation)
			users.DELETE("/me/education/:educationId", controllers.RemoveEducation)
			users.POST("/me/portfolio", controllers.AddPortfolioProject)
			users.DELETE("/me/portfolio/:projectId", controllers.RemovePortfolioProject)
		}

		// Ticket workflow
		tickets := v1.Group("/tickets", requireAuth)
		{
			tickets.POST("", controllers.CreateTicket)
			tickets.GET("", controllers.GetAllTickets)
			tickets.GET("/closed", controllers.GetClosedTickets)
			tickets.GET("/technician/:username", controllers.GetTechnicianTickets)
			tickets.GET("/:ticketId", controllers.GetTicketByID)
			tickets.PUT("/:ticketId/status", controllers.UpdateTicketStatus)
			tickets.PUT("/:ticketId/close", controllers.CloseTicket)
			tickets.PUT("/:ticketId/submitTicketDetails", controllers.SubmitTicketDetails)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Weba Hub API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
