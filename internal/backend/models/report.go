package models

import "time"

// Report хранит накопленную статистику доступности одного сайта
type Report struct {
	ID              string        `json:"id"`
	WebsiteID       string        `json:"website_id"`
	Status          WebsiteStatus `json:"status"`
	Availability    float64       `json:"availability"`
	Outages         int           `json:"outages"`
	UptimeSeconds   float64       `json:"uptime_seconds"`
	DowntimeSeconds float64       `json:"downtime_seconds"`
	AvgResponseTime float64       `json:"avg_response_time"` // в миллисекундах
	Samples         int           `json:"samples"`
	History         []ReportEntry `json:"history"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ReportEntry одна запись истории проверок; ResponseTime равен nil для неудачных проверок
type ReportEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Status       WebsiteStatus `json:"status"`
	ResponseTime *int64        `json:"response_time,omitempty"` // в миллисекундах
}

// ReportSummary сводка по журналу статусов сайта
type ReportSummary struct {
	WebsiteID        string       `json:"website_id"`
	TotalChecks      int          `json:"total_checks"`
	SuccessfulChecks int          `json:"successful_checks"`
	UptimePercentage float64      `json:"uptime_percentage"`
	Logs             []*StatusLog `json:"logs"`
}
