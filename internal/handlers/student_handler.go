package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

// RegisterStudentRequest is the payload for creating a new profile
type RegisterStudentRequest struct {
	FullName    string   `json:"fullName" binding:"required,min=2,max=100"`
	Email       string   `json:"email" binding:"required,email"`
	LinkedIn    string   `json:"linkedIn" binding:"required,url"`
	GitHub      string   `json:"github" binding:"omitempty,url"`
	Portfolio   string   `json:"portfolio" binding:"omitempty,url"`
	Telegram    string   `json:"telegram" binding:"required,max=100"`
	Track       string   `json:"track" binding:"required"`
	Skills      []string `json:"skills" binding:"required,min=1,dive,required,max=50"`
	Bio         string   `json:"bio" binding:"required,min=10,max=2000"`
	Preferences string   `json:"preferences" binding:"omitempty,max=1000"`
}

// StudentHandler handles the public student endpoints
type StudentHandler struct {
	service services.StudentServiceInterface
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(service services.StudentServiceInterface) *StudentHandler {
	return &StudentHandler{service: service}
}

// ListStudents handles GET /api/v1/students
// Returns approved profiles in their public form, featured first
func (h *StudentHandler) ListStudents(c *gin.Context) {
	filters := models.StudentFilters{
		Track: c.Query("track"),
		Query: c.Query("q"),
	}

	students, err := h.service.ListPublic(c.Request.Context(), filters)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch students", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GetStudent handles GET /api/v1/students/:id
// Returns the full record regardless of status: the self-service edit page
// fetches pending profiles through this route
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Student not found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch student", err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// RegisterStudent handles POST /api/v1/students
func (h *StudentHandler) RegisterStudent(c *gin.Context) {
	var req RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrors := ParseValidationErrors(err)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErrors, err)
		return
	}

	student, err := h.service.Register(c.Request.Context(), &services.RegistrationInput{
		FullName:    req.FullName,
		Email:       req.Email,
		LinkedIn:    req.LinkedIn,
		GitHub:      req.GitHub,
		Portfolio:   req.Portfolio,
		Telegram:    req.Telegram,
		Track:       req.Track,
		Skills:      req.Skills,
		Bio:         req.Bio,
		Preferences: req.Preferences,
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			respondError(c, http.StatusConflict, "A profile with this email already exists", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     student.ID,
		"status": student.Status,
	})
}
