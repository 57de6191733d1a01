package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a new draft course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, auth.UserIDFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses lists courses with filters
// @Summary List courses
// @Tags courses
// @Produce json
// @Param status query string false "draft|published|archived"
// @Param search query string false "Title search"
// @Success 200 {object} ListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := parseCourseFilters(c)

	if raw := c.Query("status"); raw != "" {
		status := models.CourseStatus(raw)
		filters.Status = &status
	}
	// Students only browse published courses; admins may filter freely.
	role := auth.RoleFromContext(c)
	if !role.CanManageCourses() {
		published := models.CoursePublished
		filters.Status = &published
	} else if c.Query("mine") == "true" {
		userID := auth.UserIDFromContext(c)
		filters.CreatedBy = &userID
	}

	courses, total, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: courses, Total: total})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByIDWithDetails(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Drafts are visible to their author and admins only.
	if course.Status != models.CoursePublished {
		role := auth.RoleFromContext(c)
		if !role.CanManageCourses() && course.CreatedBy != auth.UserIDFromContext(c) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
			return
		}
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, auth.UserIDFromContext(c), auth.RoleFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

func (h *CourseHandler) PublishCourse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Publish(c.Request.Context(), id, auth.UserIDFromContext(c), auth.RoleFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course published"})
}

func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Archive(c.Request.Context(), id, auth.UserIDFromContext(c), auth.RoleFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course archived"})
}

// ===== SECTION MANAGEMENT =====

func (h *CourseHandler) AddSection(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	section, err := h.courseService.AddSection(c.Request.Context(), id, &req, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

func (h *CourseHandler) UpdateSection(c *gin.Context) {
	sectionID := parseIDParam(c, "section_id")
	if sectionID == 0 {
		return
	}

	var req services.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	section, err := h.courseService.UpdateSection(c.Request.Context(), sectionID, &req, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

func (h *CourseHandler) DeleteSection(c *gin.Context) {
	sectionID := parseIDParam(c, "section_id")
	if sectionID == 0 {
		return
	}

	if err := h.courseService.DeleteSection(c.Request.Context(), sectionID, auth.UserIDFromContext(c), auth.RoleFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Section deleted"})
}

// ReorderSections applies the drag-and-drop ordering sent by the client.
func (h *CourseHandler) ReorderSections(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Sections []repositories.SectionOrder `json:"sections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.courseService.ReorderSections(c.Request.Context(), id, req.Sections, auth.UserIDFromContext(c), auth.RoleFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Sections reordered"})
}
