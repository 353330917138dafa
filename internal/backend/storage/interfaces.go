package storage

import (
	"SiteWatch/internal/backend/models"
	"context"
	"time"
)

// WebsiteStore интерфейс для работы с сайтами
type WebsiteStore interface {
	Create(ctx context.Context, website *models.Website) error
	GetByID(ctx context.Context, id string) (*models.Website, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Website, error)
	Update(ctx context.Context, website *models.Website) error
	UpdateStatus(ctx context.Context, id string, status models.WebsiteStatus, lastChecked time.Time) error
	Delete(ctx context.Context, id string) error
}

// ReportStore интерфейс для работы с отчетами
type ReportStore interface {
	Upsert(ctx context.Context, websiteID string) (*models.Report, error)
	Save(ctx context.Context, report *models.Report) error
	GetByWebsiteID(ctx context.Context, websiteID string) (*models.Report, error)
}

// StatusLogStore интерфейс для работы с журналом проверок
type StatusLogStore interface {
	Append(ctx context.Context, websiteID string, statusCode int) error
	ListByWebsite(ctx context.Context, websiteID string, limit int) ([]*models.StatusLog, error)
	CountByWebsite(ctx context.Context, websiteID string) (total int, successful int, err error)
}

// EventPublisher интерфейс для публикации событий проверок
type EventPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}
