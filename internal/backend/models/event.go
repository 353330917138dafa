package models

import "time"

// CheckEvent уведомление о результате проверки (для realtime слоя)
type CheckEvent struct {
	WebsiteID      string        `json:"website_id"`
	UserID         string        `json:"user_id"`
	URL            string        `json:"url"`
	Status         WebsiteStatus `json:"status"`
	StatusCode     int           `json:"status_code"`
	ResponseTimeMs int64         `json:"response_time_ms"`
	Timestamp      time.Time     `json:"timestamp"`
}
