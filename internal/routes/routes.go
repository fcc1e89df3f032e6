package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/handlers"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/paypal"
	"hospital-app-server/internal/services"
)

// SetupRoutes configures the application routes. The payment gateway is
// injected so tests can swap in a fake client.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, gateway paypal.Client) {
	// Initialize services
	appointmentService := services.NewAppointmentService(db)
	receiptService := services.NewReceiptService(db)
	paymentService := services.NewPaymentService(db, gateway, receiptService)
	medicalRecordService := services.NewMedicalRecordService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(medicalRecordService)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(middleware.RateLimitMiddleware())
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
			authRoutesPrivate.GET("/patient-card", authHandler.GetPatientCard)
		}

		// User management routes (typically admin-only)
		userRoutes := private.Group("/users")
		{
			// Accessible by doctors and admins
			userRoutes.GET("/doctor-patients", userHandler.GetDoctorPatients)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Doctor directory and admin management
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)

			doctorAdmin := doctorRoutes.Group("")
			doctorAdmin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				doctorAdmin.POST("", doctorHandler.CreateDoctor)
				doctorAdmin.PUT("/:id", doctorHandler.UpdateDoctor)
				doctorAdmin.DELETE("/:id", doctorHandler.DeleteDoctor)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleDoctor, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.POST("/:id/cancel", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CancelAppointment)
			appointmentRoutes.GET("/:id/payments", paymentHandler.GetPaymentsForAppointment)
			appointmentRoutes.GET("/:id/receipts", receiptHandler.GetReceiptsForAppointment)
		}

		// Payment routes
		paymentRoutes := private.Group("/payments")
		{
			paymentRoutes.POST("", paymentHandler.CreatePayment)
			paymentRoutes.POST("/execute", paymentHandler.ExecutePayment)
			paymentRoutes.POST("/:id/cancel", paymentHandler.CancelPayment)
			paymentRoutes.GET("", paymentHandler.GetPaymentsForUser)
			paymentRoutes.GET("/:id", paymentHandler.GetPayment)
			paymentRoutes.GET("/:id/receipt", receiptHandler.GetReceiptForPayment)
		}

		// Receipt routes
		receiptRoutes := private.Group("/receipts")
		{
			receiptRoutes.GET("", receiptHandler.GetReceiptsForUser)
			receiptRoutes.GET("/number/:number", receiptHandler.GetReceiptByNumber)
			receiptRoutes.GET("/:id", receiptHandler.GetReceipt)
		}

		// Medical Record routes
		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.GET("/patient/:patientId", medicalRecordHandler.GetMedicalRecordsForPatient)
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)

			// Clinical sub-records; writes are doctor-only, reads share the
			// parent record's access rules
			medicalRecordRoutes.GET("/:id/diagnoses", medicalRecordHandler.ListDiagnoses)
			medicalRecordRoutes.GET("/:id/treatments", medicalRecordHandler.ListTreatments)
			medicalRecordRoutes.GET("/:id/prescriptions", medicalRecordHandler.ListPrescriptions)
			medicalRecordRoutes.GET("/:id/lab-results", medicalRecordHandler.ListLabResults)

			clinicalWrites := medicalRecordRoutes.Group("")
			clinicalWrites.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
			{
				clinicalWrites.POST("/:id/diagnoses", medicalRecordHandler.AddDiagnosis)
				clinicalWrites.DELETE("/:id/diagnoses/:diagnosisId", medicalRecordHandler.DeleteDiagnosis)

				clinicalWrites.POST("/:id/treatments", medicalRecordHandler.AddTreatment)
				clinicalWrites.PUT("/:id/treatments/:treatmentId", medicalRecordHandler.UpdateTreatment)
				clinicalWrites.DELETE("/:id/treatments/:treatmentId", medicalRecordHandler.DeleteTreatment)

				clinicalWrites.POST("/:id/prescriptions", medicalRecordHandler.AddPrescription)
				clinicalWrites.PUT("/:id/prescriptions/:prescriptionId", medicalRecordHandler.UpdatePrescription)
				clinicalWrites.DELETE("/:id/prescriptions/:prescriptionId", medicalRecordHandler.DeletePrescription)

				clinicalWrites.POST("/:id/lab-results", medicalRecordHandler.AddLabResult)
				clinicalWrites.DELETE("/:id/lab-results/:labResultId", medicalRecordHandler.DeleteLabResult)

				clinicalWrites.POST("/:id/attachments", medicalRecordHandler.UploadMedicalRecordAttachment)
			}

			// Attachment IDs are globally unique, access checked in the handler
			medicalRecordRoutes.GET("/attachments/:attachmentId", medicalRecordHandler.GetMedicalRecordAttachment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
