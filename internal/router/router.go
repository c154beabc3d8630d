// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/config"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/handlers"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/middleware"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/services"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	registry := services.NewDocumentRegistry()
	directory := services.NewApproverDirectoryService(db)
	ledger := services.NewApprovalLedgerService(db)
	notificationService := services.NewNotificationService(db, cfg)

	authService := services.NewAuthService(db, cfg)
	approvalService := services.NewApprovalService(db, directory, ledger, registry, notificationService, cfg.Approval.MaxConflictRetries)
	formService := services.NewFormService(db, directory)
	documentService := services.NewDocumentService(db, registry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	approvalHandler := handlers.NewApprovalHandler(approvalService)
	formHandler := handlers.NewFormHandler(formService)
	documentHandler := handlers.NewDocumentHandler(documentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Form routes
		forms := v1.Group("/forms")
		{
			forms.GET("", middleware.OptionalAuth(), formHandler.GetForms)
			forms.GET("/:form/approvers", middleware.AuthRequired(), formHandler.GetFormApprovers)

			// Document routes per form (owning subsystems)
			documents := forms.Group("/:form/documents")
			documents.Use(middleware.AuthRequired())
			{
				documents.POST("", documentHandler.CreateDocument)
				documents.GET("", documentHandler.GetDocuments)
				documents.GET("/:id", documentHandler.GetDocument)

				// Approval workflow
				documents.POST("/:id/approve", approvalHandler.Approve)
				documents.GET("/:id/approval-status", approvalHandler.GetApprovalStatus)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/persons", authHandler.CreatePerson)
			admin.POST("/forms/:form/approvers", formHandler.AssignApprover)
			admin.DELETE("/forms/:form/approvers/:personID", formHandler.RemoveApprover)
		}
	}

	return r
}
