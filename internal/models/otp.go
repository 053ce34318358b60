package models

import "time"

// OTPChallenge is a short-lived proof of email ownership
type OTPChallenge struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	StudentID string    `json:"studentId"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}
