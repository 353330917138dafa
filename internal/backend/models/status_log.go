package models

import "time"

// StatusLog append-only запись об одной проверке сайта
type StatusLog struct {
	ID         string    `json:"id"`
	WebsiteID  string    `json:"website_id"`
	StatusCode int       `json:"status_code"`
	CheckedAt  time.Time `json:"checked_at"`
}
