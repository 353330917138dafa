package models

import "time"

type WebsiteStatus string

const (
	WebsiteStatusUp      WebsiteStatus = "up"
	WebsiteStatusDown    WebsiteStatus = "down"
	WebsiteStatusUnknown WebsiteStatus = "unknown"
)

type Website struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	OwnerEmail      string        `json:"owner_email"`
	URL             string        `json:"url"`
	IntervalMinutes int           `json:"interval_minutes"`
	Status          WebsiteStatus `json:"status"`
	LastChecked     *time.Time    `json:"last_checked,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
