package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniconnect/uniconnect-api/internal/handlers"
	"github.com/uniconnect/uniconnect-api/internal/models"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

// MockStorageClient is a mock implementation of storage.ClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) UploadImage(ctx context.Context, imageData, key, contentType string) (string, error) {
	args := m.Called(ctx, imageData, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateFileName(studentID, originalFileName string) string {
	args := m.Called(studentID, originalFileName)
	return args.String(0)
}

func (m *MockStorageClient) ValidateImageType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *MockStorageClient) ValidateImageSize(imageData string) error {
	args := m.Called(imageData)
	return args.Error(0)
}

func profileTestRouter(students *MockStudentService, otp *MockOTPService, store *MockStorageClient) *gin.Engine {
	handler := handlers.NewStudentProfileHandler(students, otp, store)
	router := gin.New()
	router.PATCH("/students/:id/edit", handler.EditProfile)
	router.POST("/students/:id/picture", handler.UploadAvatar)
	return router
}

func patchJSON(router *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	w := postJSONWithMethod(router, "PATCH", path, body, headers)
	return w
}

func TestStudentProfileHandler_EditProfile_WithCode(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	mockOTP.On("ConsumeForEdit", mock.Anything, "stu-1", "sara@example.com", "042137").
		Return(nil).Once()
	mockStudents.On("SelfUpdate", mock.Anything, "stu-1", mock.AnythingOfType("*models.StudentUpdate")).
		Return(&models.Student{ID: "stu-1", Bio: "Updated", Status: models.StatusApproved}, nil).Once()

	w := patchJSON(router, "/students/stu-1/edit", gin.H{
		"email":   "sara@example.com",
		"code":    "042137",
		"profile": gin.H{"bio": "Updated"},
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockOTP.AssertExpectations(t)
	mockStudents.AssertExpectations(t)
}

func TestStudentProfileHandler_EditProfile_WithToken(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	mockOTP.On("AuthorizeEditToken", "stu-1", "token-abc").Return(nil).Once()
	mockStudents.On("SelfUpdate", mock.Anything, "stu-1", mock.AnythingOfType("*models.StudentUpdate")).
		Return(&models.Student{ID: "stu-1", Bio: "Updated"}, nil).Once()

	w := patchJSON(router, "/students/stu-1/edit", gin.H{
		"profile": gin.H{"bio": "Updated"},
	}, map[string]string{handlers.EditTokenHeaderName: "token-abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	mockOTP.AssertExpectations(t)
	// Token authorization bypasses the code path entirely
	mockOTP.AssertNotCalled(t, "ConsumeForEdit")
}

func TestStudentProfileHandler_EditProfile_NoCredentials(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	w := patchJSON(router, "/students/stu-1/edit", gin.H{
		"profile": gin.H{"bio": "Updated"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockStudents.AssertNotCalled(t, "SelfUpdate")
}

func TestStudentProfileHandler_EditProfile_WrongOwner(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	mockOTP.On("ConsumeForEdit", mock.Anything, "stu-1", "other@example.com", "042137").
		Return(apperrors.AccessDeniedError("email does not match profile")).Once()

	w := patchJSON(router, "/students/stu-1/edit", gin.H{
		"email":   "other@example.com",
		"code":    "042137",
		"profile": gin.H{"bio": "Updated"},
	}, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockStudents.AssertNotCalled(t, "SelfUpdate")
}

func TestStudentProfileHandler_UploadAvatar(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	mockOTP.On("AuthorizeEditToken", "stu-1", "token-abc").Return(nil).Once()
	mockStore.On("ValidateImageType", "image/png").Return(nil).Once()
	mockStore.On("ValidateImageSize", "aGVsbG8=").Return(nil).Once()
	mockStore.On("GenerateFileName", "stu-1", "me.png").Return("avatars/stu-1-123.png").Once()
	mockStore.On("UploadImage", mock.Anything, "aGVsbG8=", "avatars/stu-1-123.png", "image/png").
		Return("https://cdn.example.com/bucket/avatars/stu-1-123.png", nil).Once()
	mockStudents.On("SetAvatar", mock.Anything, "stu-1", "https://cdn.example.com/bucket/avatars/stu-1-123.png").
		Return(&models.Student{ID: "stu-1"}, nil).Once()

	w := postJSONWithMethod(router, "POST", "/students/stu-1/picture", gin.H{
		"imageData":   "aGVsbG8=",
		"fileName":    "me.png",
		"contentType": "image/png",
	}, map[string]string{handlers.EditTokenHeaderName: "token-abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "avatars/stu-1-123.png")
	mockStore.AssertExpectations(t)
	mockStudents.AssertExpectations(t)
}

func TestStudentProfileHandler_UploadAvatar_BadType(t *testing.T) {
	mockStudents := new(MockStudentService)
	mockOTP := new(MockOTPService)
	mockStore := new(MockStorageClient)
	router := profileTestRouter(mockStudents, mockOTP, mockStore)

	mockOTP.On("AuthorizeEditToken", "stu-1", "token-abc").Return(nil).Once()
	mockStore.On("ValidateImageType", "image/gif").
		Return(apperrors.InvalidInputError("contentType", "unsupported image type")).Once()

	w := postJSONWithMethod(router, "POST", "/students/stu-1/picture", gin.H{
		"imageData":   "aGVsbG8=",
		"fileName":    "me.gif",
		"contentType": "image/gif",
	}, map[string]string{handlers.EditTokenHeaderName: "token-abc"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockStore.AssertNotCalled(t, "UploadImage")
}
