package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll signs the current user up for a free course.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), auth.UserIDFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// AdminEnroll enrolls a named user, bypassing payment.
func (h *EnrollmentHandler) AdminEnroll(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "user_id is required"})
		return
	}

	enrollment, err := h.enrollmentService.AdminEnroll(c.Request.Context(), req.UserID, courseID, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// BulkAdminEnroll enrolls a batch of users and reports per-user failures.
func (h *EnrollmentHandler) BulkAdminEnroll(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "user_ids is required"})
		return
	}

	result, err := h.enrollmentService.BulkAdminEnroll(c.Request.Context(), req.UserIDs, courseID, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	var filters repositories.EnrollmentFilters
	filters.Limit, filters.Offset = parsePagination(c)
	if raw := c.Query("course_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id != 0 {
			courseID := uint(id)
			filters.CourseID = &courseID
		}
	}

	enrollments, total, err := h.enrollmentService.List(c.Request.Context(), filters, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: enrollments, Total: total})
}

func (h *EnrollmentHandler) GetMyEnrollment(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	enrollment, err := h.enrollmentService.GetByUserAndCourse(c.Request.Context(), auth.UserIDFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// UpdateProgress records section completion progress for the current user.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req struct {
		Progress float64 `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), auth.UserIDFromContext(c), courseID, req.Progress)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ===== CERTIFICATES =====

func (h *EnrollmentHandler) IssueCertificate(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	certificate, err := h.enrollmentService.IssueCertificate(c.Request.Context(), auth.UserIDFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, certificate)
}

// VerifyCertificate is a public lookup by serial number.
func (h *EnrollmentHandler) VerifyCertificate(c *gin.Context) {
	serial := strings.TrimSpace(c.Param("serial"))
	if serial == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "serial is required"})
		return
	}

	certificate, err := h.enrollmentService.GetCertificateBySerial(c.Request.Context(), serial)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}
