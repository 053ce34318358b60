package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
	"github.com/uniconnect/uniconnect-api/pkg/storage"
)

// EditTokenHeaderName carries a minted edit token on self-service requests
const EditTokenHeaderName = "X-Edit-Token"

// EditProfileRequest is the payload for an owner-initiated profile update.
// Callers authorize either with the edit token header or with a verified
// email + code pair in the body.
type EditProfileRequest struct {
	Email   string               `json:"email" binding:"omitempty,email"`
	Code    string               `json:"code" binding:"omitempty,len=6,numeric"`
	Profile models.StudentUpdate `json:"profile"`
}

// UploadAvatarRequest is the payload for an avatar upload
type UploadAvatarRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	Code        string `json:"code" binding:"omitempty,len=6,numeric"`
	ImageData   string `json:"imageData" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// StudentProfileHandler handles owner-authorized profile endpoints
type StudentProfileHandler struct {
	studentService services.StudentServiceInterface
	otpService     services.OTPServiceInterface
	storageClient  storage.ClientInterface
}

// NewStudentProfileHandler creates a new StudentProfileHandler
func NewStudentProfileHandler(
	studentService services.StudentServiceInterface,
	otpService services.OTPServiceInterface,
	storageClient storage.ClientInterface,
) *StudentProfileHandler {

	return &StudentProfileHandler{
		studentService: studentService,
		otpService:     otpService,
		storageClient:  storageClient,
	}
}

// authorize checks either the edit token header or a verified email + code
// pair against the target student
func (h *StudentProfileHandler) authorize(c *gin.Context, studentID, email, code string) error {
	if token := c.GetHeader(EditTokenHeaderName); token != "" {
		return h.otpService.AuthorizeEditToken(studentID, token)
	}
	if email == "" || code == "" {
		return apperrors.UnauthorizedError("verification required")
	}
	return h.otpService.ConsumeForEdit(c.Request.Context(), studentID, email, code)
}

// EditProfile handles PATCH /api/v1/students/:id/edit
func (h *StudentProfileHandler) EditProfile(c *gin.Context) {
	studentID := c.Param("id")

	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrors := ParseValidationErrors(err)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErrors, err)
		return
	}

	if err := h.authorize(c, studentID, req.Email, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	student, err := h.studentService.SelfUpdate(c.Request.Context(), studentID, &req.Profile)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Profile updated by owner", zap.String("student_id", studentID))

	c.JSON(http.StatusOK, gin.H{"student": student.ToPublicResponse()})
}

// UploadAvatar handles POST /api/v1/students/:id/picture
func (h *StudentProfileHandler) UploadAvatar(c *gin.Context) {
	studentID := c.Param("id")

	var req UploadAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrors := ParseValidationErrors(err)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErrors, err)
		return
	}

	if err := h.authorize(c, studentID, req.Email, req.Code); err != nil {
		metrics.AvatarUploads.WithLabelValues("unauthorized").Inc()
		respondServiceError(c, err)
		return
	}

	if err := h.storageClient.ValidateImageType(req.ContentType); err != nil {
		metrics.AvatarUploads.WithLabelValues("invalid").Inc()
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := h.storageClient.ValidateImageSize(req.ImageData); err != nil {
		metrics.AvatarUploads.WithLabelValues("invalid").Inc()
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	key := h.storageClient.GenerateFileName(studentID, req.FileName)
	imageURL, err := h.storageClient.UploadImage(c.Request.Context(), req.ImageData, key, req.ContentType)
	if err != nil {
		metrics.AvatarUploads.WithLabelValues("error").Inc()
		respondError(c, http.StatusInternalServerError, "Failed to upload image", err)
		return
	}

	if _, err := h.studentService.SetAvatar(c.Request.Context(), studentID, imageURL); err != nil {
		metrics.AvatarUploads.WithLabelValues("error").Inc()
		respondServiceError(c, err)
		return
	}

	metrics.AvatarUploads.WithLabelValues("success").Inc()
	logger.Info("Avatar uploaded",
		zap.String("student_id", studentID),
		zap.String("image_url", imageURL))

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": imageURL,
	})
}
