package models

import "time"

// Settings is the singleton site configuration record
type Settings struct {
	MaintenanceMode    bool      `json:"maintenanceMode"`
	MaintenanceMessage string    `json:"maintenanceMessage"`
	SiteName           string    `json:"siteName"`
	SiteDescription    string    `json:"siteDescription"`
	FeaturedLabel      string    `json:"featuredLabel"`
	SpecialLabel       string    `json:"specialLabel"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultSettings is what the first read creates when no record exists yet
func DefaultSettings() Settings {
	return Settings{
		MaintenanceMode:    false,
		MaintenanceMessage: "We're currently performing maintenance. Please check back soon.",
		SiteName:           "UniConnect",
		SiteDescription:    "Graduation Project Team Matching Platform",
		FeaturedLabel:      "Platform Developer",
		SpecialLabel:       "Featured",
	}
}

// SettingsUpdate carries a partial update to the settings singleton. Nil
// pointers mean "leave unchanged"; updatedAt is never settable by callers.
type SettingsUpdate struct {
	MaintenanceMode    *bool   `json:"maintenanceMode,omitempty"`
	MaintenanceMessage *string `json:"maintenanceMessage,omitempty"`
	SiteName           *string `json:"siteName,omitempty"`
	SiteDescription    *string `json:"siteDescription,omitempty"`
	FeaturedLabel      *string `json:"featuredLabel,omitempty"`
	SpecialLabel       *string `json:"specialLabel,omitempty"`
}

// PublicSettingsResponse is the unauthenticated subset of settings
type PublicSettingsResponse struct {
	MaintenanceMode    bool   `json:"maintenanceMode"`
	MaintenanceMessage string `json:"maintenanceMessage"`
	SiteName           string `json:"siteName"`
	SiteDescription    string `json:"siteDescription"`
	FeaturedLabel      string `json:"featuredLabel"`
	SpecialLabel       string `json:"specialLabel"`
}

// ToPublicResponse converts Settings to the unauthenticated subset
func (s *Settings) ToPublicResponse() PublicSettingsResponse {
	return PublicSettingsResponse{
		MaintenanceMode:    s.MaintenanceMode,
		MaintenanceMessage: s.MaintenanceMessage,
		SiteName:           s.SiteName,
		SiteDescription:    s.SiteDescription,
		FeaturedLabel:      s.FeaturedLabel,
		SpecialLabel:       s.SpecialLabel,
	}
}
