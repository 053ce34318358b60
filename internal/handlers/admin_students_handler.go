package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
)

// AdminStudentsHandler handles the moderation endpoints
type AdminStudentsHandler struct {
	service services.StudentServiceInterface
}

// NewAdminStudentsHandler creates a new admin students handler
func NewAdminStudentsHandler(service services.StudentServiceInterface) *AdminStudentsHandler {
	return &AdminStudentsHandler{service: service}
}

func filtersFromQuery(c *gin.Context) models.StudentFilters {
	return models.StudentFilters{
		Status: models.StudentStatus(c.Query("status")),
		Track:  c.Query("track"),
		Query:  c.Query("q"),
	}
}

// ListStudents handles GET /api/v1/admin/students
// Returns full profiles, email included, across all moderation states
func (h *AdminStudentsHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListAdmin(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// ExportStudents handles GET /api/v1/admin/students/export
// Streams the filtered listing as CSV
func (h *AdminStudentsHandler) ExportStudents(c *gin.Context) {
	students, err := h.service.ListAdmin(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("students-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	header := []string{
		"Full Name", "Email", "Track", "Skills", "Bio",
		"LinkedIn", "GitHub", "Portfolio", "Telegram",
		"Status", "Featured", "Special", "Created At",
	}
	if err := w.Write(header); err != nil {
		attachError(c, err)
		return
	}

	for _, s := range students {
		record := []string{
			s.FullName, s.Email, s.Track, strings.Join(s.Skills, "; "), s.Bio,
			s.LinkedIn, s.GitHub, s.Portfolio, s.Telegram,
			string(s.Status), strconv.FormatBool(s.Featured), strconv.FormatBool(s.Special),
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			attachError(c, err)
			return
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		attachError(c, err)
		return
	}

	logger.Info("Students exported", zap.Int("count", len(students)))
}

// UpdateStudent handles PATCH /api/v1/admin/students/:id
func (h *AdminStudentsHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")

	var update models.StudentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return
	}

	student, err := h.service.AdminUpdate(c.Request.Context(), id, &update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": student})
}

// DeleteStudent handles DELETE /api/v1/admin/students/:id
func (h *AdminStudentsHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
