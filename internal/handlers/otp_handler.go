package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/services"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

// SendOTPRequest is the payload for requesting a verification code
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest is the payload for checking a verification code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// OTPHandler handles the email verification endpoints
type OTPHandler struct {
	service      services.OTPServiceInterface
	isProduction bool
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(service services.OTPServiceInterface, isProduction bool) *OTPHandler {
	return &OTPHandler{service: service, isProduction: isProduction}
}

// SendOTP handles POST /api/v1/otp/send
func (h *OTPHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrors := ParseValidationErrors(err)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErrors, err)
		return
	}

	if err := h.service.Issue(c.Request.Context(), req.Email); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "No profile found for this email", err)
			return
		}
		// Dispatch failures get a detail outside production to help local
		// SMTP debugging
		if !h.isProduction {
			respondErrorWithDetails(c, http.StatusInternalServerError,
				"Failed to send verification code", gin.H{"message": err.Error()}, err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to send verification code", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// VerifyOTP handles POST /api/v1/otp/verify
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrors := ParseValidationErrors(err)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErrors, err)
		return
	}

	outcome, err := h.service.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			respondError(c, http.StatusBadRequest, "Invalid or expired code", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to verify code", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified":  true,
		"studentId": outcome.StudentID,
		"editToken": outcome.EditToken,
	})
}
