package models

import (
	"strings"
	"time"
)

// StudentStatus is the moderation state of a student profile
type StudentStatus string

const (
	StatusPending  StudentStatus = "pending"
	StatusApproved StudentStatus = "approved"
	StatusRejected StudentStatus = "rejected"
	StatusHidden   StudentStatus = "hidden"
)

// IsValid reports whether s is one of the known moderation states
func (s StudentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusHidden:
		return true
	}
	return false
}

// Tracks is the fixed enumeration of academic focuses a student can pick
var Tracks = []string{
	"Web Development - Frontend",
	"Web Development - Backend",
	"Web Development - Full Stack",
	"Mobile Development",
	"AI & Data",
	"Cybersecurity",
	"UX/UI Design",
}

// IsValidTrack reports whether track is one of the fixed enumeration values
func IsValidTrack(track string) bool {
	for _, t := range Tracks {
		if t == track {
			return true
		}
	}
	return false
}

// Student represents one applicant/team-seeker
type Student struct {
	ID          string        `json:"id"`
	FullName    string        `json:"fullName"`
	Email       string        `json:"email"`
	LinkedIn    string        `json:"linkedIn"`
	GitHub      string        `json:"github"`
	Portfolio   string        `json:"portfolio,omitempty"`
	Telegram    string        `json:"telegram,omitempty"`
	Track       string        `json:"track"`
	Skills      []string      `json:"skills"`
	Bio         string        `json:"bio"`
	Avatar      string        `json:"avatar,omitempty"`
	Preferences string        `json:"preferences,omitempty"`
	Status      StudentStatus `json:"status"`
	Featured    bool          `json:"featured"`
	Special     bool          `json:"special"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PublicStudentResponse is the externally visible representation of a student.
// The email field is deliberately absent.
type PublicStudentResponse struct {
	ID        string        `json:"id"`
	FullName  string        `json:"fullName"`
	Track     string        `json:"track"`
	Skills    []string      `json:"skills"`
	Bio       string        `json:"bio"`
	LinkedIn  string        `json:"linkedIn"`
	GitHub    string        `json:"github"`
	Portfolio string        `json:"portfolio,omitempty"`
	Telegram  string        `json:"telegram,omitempty"`
	Avatar    string        `json:"avatar,omitempty"`
	Featured  bool          `json:"featured"`
	Special   bool          `json:"special"`
	Status    StudentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ToPublicResponse converts a Student to its sanitized public form
func (s *Student) ToPublicResponse() PublicStudentResponse {
	return PublicStudentResponse{
		ID:        s.ID,
		FullName:  s.FullName,
		Track:     s.Track,
		Skills:    s.Skills,
		Bio:       s.Bio,
		LinkedIn:  s.LinkedIn,
		GitHub:    s.GitHub,
		Portfolio: s.Portfolio,
		Telegram:  s.Telegram,
		Avatar:    s.Avatar,
		Featured:  s.Featured,
		Special:   s.Special,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
}

// StudentFilters represents options for filtering the student listing
type StudentFilters struct {
	Status StudentStatus
	Track  string
	Query  string
}

// StudentUpdate carries a partial update to a student profile. Nil pointers
// mean "leave unchanged". Status is only honored on the admin path; createdAt
// is never settable.
type StudentUpdate struct {
	FullName    *string        `json:"fullName,omitempty"`
	LinkedIn    *string        `json:"linkedIn,omitempty"`
	GitHub      *string        `json:"github,omitempty"`
	Portfolio   *string        `json:"portfolio,omitempty"`
	Telegram    *string        `json:"telegram,omitempty"`
	Track       *string        `json:"track,omitempty"`
	Skills      *[]string      `json:"skills,omitempty"`
	Bio         *string        `json:"bio,omitempty"`
	Avatar      *string        `json:"avatar,omitempty"`
	Preferences *string        `json:"preferences,omitempty"`
	Featured    *bool          `json:"featured,omitempty"`
	Special     *bool          `json:"special,omitempty"`
	Status      *StudentStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the update carries no changes at all
func (u *StudentUpdate) IsEmpty() bool {
	return u.FullName == nil && u.LinkedIn == nil && u.GitHub == nil &&
		u.Portfolio == nil && u.Telegram == nil && u.Track == nil &&
		u.Skills == nil && u.Bio == nil && u.Avatar == nil &&
		u.Preferences == nil && u.Featured == nil && u.Special == nil &&
		u.Status == nil
}

// StripRestricted clears the fields the self-service path must never touch
func (u *StudentUpdate) StripRestricted() {
	u.Status = nil
	u.Featured = nil
	u.Special = nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTelegram extracts a bare Telegram username from a handle or link.
// Accepts "@bob", "t.me/bob", "https://t.me/bob/" and similar forms.
func NormalizeTelegram(input string) string {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return ""
	}

	lower := strings.ToLower(cleaned)
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, prefix) {
			cleaned = cleaned[len(prefix):]
			lower = lower[len(prefix):]
			break
		}
	}
	if strings.HasPrefix(lower, "t.me/") {
		cleaned = cleaned[len("t.me/"):]
	}
	cleaned = strings.TrimPrefix(cleaned, "@")

	// Drop any trailing path or query parameters
	if idx := strings.IndexAny(cleaned, "/?"); idx >= 0 {
		cleaned = cleaned[:idx]
	}

	return cleaned
}
