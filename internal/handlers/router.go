package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	quizHandler       *QuizHandler
	attemptHandler    *AttemptHandler
	analyticsHandler  *AnalyticsHandler
	enrollmentHandler *EnrollmentHandler
	paymentHandler    *PaymentHandler

	repo   repositories.Repository
	logger utils.Logger
}

type Services struct {
	Course     services.CourseService
	Quiz       services.QuizService
	Attempt    services.AttemptService
	Analytics  services.AnalyticsService
	Enrollment services.EnrollmentService
	Payment    services.PaymentService
}

func NewHandlerManager(svcs Services, repo repositories.Repository, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		courseHandler:     NewCourseHandler(svcs.Course, logger),
		quizHandler:       NewQuizHandler(svcs.Quiz, logger),
		attemptHandler:    NewAttemptHandler(svcs.Attempt, logger),
		analyticsHandler:  NewAnalyticsHandler(svcs.Analytics, logger),
		enrollmentHandler: NewEnrollmentHandler(svcs.Enrollment, logger),
		paymentHandler:    NewPaymentHandler(svcs.Payment, logger),
		repo:              repo,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})

	// Certificate verification is public: anyone holding a serial number may
	// check it.
	router.GET("/api/v1/certificates/:serial", hm.enrollmentHandler.VerifyCertificate)

	authenticated := auth.Middleware(hm.repo, hm.logger)
	manageRoles := auth.RequireRole(models.RoleCourseAdmin, models.RoleSuperAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(authenticated)
	{
		// Course routes
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/quizzes", hm.quizHandler.GetQuizzesByCourse)

			// Authoring
			courses.POST("", manageRoles, hm.courseHandler.CreateCourse)
			courses.PUT("/:id", manageRoles, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", manageRoles, hm.courseHandler.DeleteCourse)
			courses.POST("/:id/publish", manageRoles, hm.courseHandler.PublishCourse)
			courses.POST("/:id/archive", manageRoles, hm.courseHandler.ArchiveCourse)

			// Sections
			courses.POST("/:id/sections", manageRoles, hm.courseHandler.AddSection)
			courses.PUT("/:id/sections/reorder", manageRoles, hm.courseHandler.ReorderSections)

			// Enrollment
			courses.POST("/:id/enroll", hm.enrollmentHandler.Enroll)
			courses.GET("/:id/enrollment", hm.enrollmentHandler.GetMyEnrollment)
			courses.PUT("/:id/progress", hm.enrollmentHandler.UpdateProgress)
			courses.POST("/:id/certificate", hm.enrollmentHandler.IssueCertificate)
			courses.POST("/:id/admin-enroll", manageRoles, hm.enrollmentHandler.AdminEnroll)
			courses.POST("/:id/admin-enroll/bulk", manageRoles, hm.enrollmentHandler.BulkAdminEnroll)

			// Payments
			courses.POST("/:id/payments/verify", hm.paymentHandler.VerifyPayment)
		}

		// Section routes addressed by section id
		sections := v1.Group("/sections")
		{
			sections.PUT("/:section_id", manageRoles, hm.courseHandler.UpdateSection)
			sections.DELETE("/:section_id", manageRoles, hm.courseHandler.DeleteSection)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", manageRoles, hm.quizHandler.CreateQuiz)
			quizzes.GET("/:id", manageRoles, hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", manageRoles, hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", manageRoles, hm.quizHandler.DeleteQuiz)

			// Questions
			quizzes.POST("/:id/questions", manageRoles, hm.quizHandler.AddQuestion)
		}

		questions := v1.Group("/questions")
		{
			questions.PUT("/:question_id", manageRoles, hm.quizHandler.UpdateQuestion)
			questions.DELETE("/:question_id", manageRoles, hm.quizHandler.DeleteQuestion)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start/:quiz_id", hm.attemptHandler.StartAttempt)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/mine/:quiz_id", hm.attemptHandler.GetMyAttempts)
			attempts.GET("/quiz/:quiz_id", manageRoles, hm.attemptHandler.GetQuizAttempts)
		}

		// Analytics routes
		analytics := v1.Group("/analytics", manageRoles)
		{
			analytics.GET("/quizzes/:quiz_id", hm.analyticsHandler.GetQuizReport)
			analytics.GET("/quizzes/:quiz_id/export", hm.analyticsHandler.ExportQuizReport)
		}

		// Enrollment listing
		enrollments := v1.Group("/enrollments")
		{
			enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
		}

		// Payment history
		payments := v1.Group("/payments")
		{
			payments.GET("/mine", hm.paymentHandler.GetMyPayments)
		}
	}
}
