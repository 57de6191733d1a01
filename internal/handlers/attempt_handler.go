package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt opens a new attempt on a quiz for the current user.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID := parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), quizID, auth.UserIDFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAttempt submits the answer map and returns the scored attempt.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		// Keys are question ids as decimal strings.
		Answers map[uint]int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), id, req.Answers, auth.UserIDFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), id, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetMyAttempts lists the current user's attempts on one quiz.
func (h *AttemptHandler) GetMyAttempts(c *gin.Context) {
	quizID := parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	attempts, err := h.attemptService.GetByUserAndQuiz(c.Request.Context(), auth.UserIDFromContext(c), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

// GetQuizAttempts lists all attempts on a quiz for its course owner.
func (h *AttemptHandler) GetQuizAttempts(c *gin.Context) {
	quizID := parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	var filters repositories.AttemptFilters
	filters.Limit, filters.Offset = parsePagination(c)
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	attempts, total, err := h.attemptService.GetByQuiz(c.Request.Context(), quizID, filters, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: attempts, Total: total})
}
