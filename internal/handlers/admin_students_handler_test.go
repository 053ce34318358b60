package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniconnect/uniconnect-api/internal/handlers"
	"github.com/uniconnect/uniconnect-api/internal/models"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

func adminStudentsTestRouter(service *MockStudentService) *gin.Engine {
	handler := handlers.NewAdminStudentsHandler(service)
	router := gin.New()
	router.GET("/admin/students", handler.ListStudents)
	router.GET("/admin/students/export", handler.ExportStudents)
	router.PATCH("/students/:id", handler.UpdateStudent)
	router.DELETE("/students/:id", handler.DeleteStudent)
	return router
}

func TestAdminStudentsHandler_ListStudents_WithFilters(t *testing.T) {
	mockService := new(MockStudentService)
	router := adminStudentsTestRouter(mockService)

	mockService.On("ListAdmin", mock.Anything, models.StudentFilters{
		Status: models.StatusPending,
		Query:  "python",
	}).Return([]*models.Student{
		{ID: "stu-1", Email: "sara@example.com", Status: models.StatusPending},
	}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/students?status=pending&q=python", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// The moderation listing includes email addresses
	assert.Contains(t, w.Body.String(), "sara@example.com")
	mockService.AssertExpectations(t)
}

func TestAdminStudentsHandler_ExportStudents(t *testing.T) {
	mockService := new(MockStudentService)
	router := adminStudentsTestRouter(mockService)

	mockService.On("ListAdmin", mock.Anything, models.StudentFilters{}).
		Return([]*models.Student{
			{
				ID:        "stu-1",
				FullName:  "Sara Ahmed",
				Email:     "sara@example.com",
				Track:     "AI & Data",
				Skills:    []string{"Python", "PyTorch"},
				Status:    models.StatusApproved,
				CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
			},
		}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/students/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Full Name,Email,Track")
	assert.Contains(t, w.Body.String(), "Sara Ahmed,sara@example.com,AI & Data,Python; PyTorch")
	mockService.AssertExpectations(t)
}

func TestAdminStudentsHandler_UpdateStudent_StatusChange(t *testing.T) {
	mockService := new(MockStudentService)
	router := adminStudentsTestRouter(mockService)

	mockService.On("AdminUpdate", mock.Anything, "stu-1", mock.MatchedBy(func(u *models.StudentUpdate) bool {
		return u.Status != nil && *u.Status == models.StatusApproved
	})).Return(&models.Student{ID: "stu-1", Status: models.StatusApproved}, nil).Once()

	w := postJSONWithMethod(router, "PATCH", "/students/stu-1", gin.H{"status": "approved"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
	mockService.AssertExpectations(t)
}

func TestAdminStudentsHandler_DeleteStudent_NotFound(t *testing.T) {
	mockService := new(MockStudentService)
	router := adminStudentsTestRouter(mockService)

	mockService.On("Delete", mock.Anything, "missing").
		Return(apperrors.NotFoundError("student")).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/students/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
