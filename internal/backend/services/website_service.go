package services

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/internal/backend/storage"
	"SiteWatch/pkg/validator"
	"context"
	"fmt"
	"log/slog"
)

type WebsiteService struct {
	websiteStore storage.WebsiteStore
	logger       *slog.Logger
}

func NewWebsiteService(websiteStore storage.WebsiteStore, logger *slog.Logger) *WebsiteService {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebsiteService{
		websiteStore: websiteStore,
		logger:       logger,
	}
}

// CreateWebsite регистрирует новый сайт для мониторинга.
// Работающая сессия пользователя подхватит его на ближайшей сверке.
func (s *WebsiteService) CreateWebsite(ctx context.Context, userID, ownerEmail, url string, intervalMinutes int) (*models.Website, error) {
	s.logger.Info("creating website",
		"user_id", userID,
		"url", url,
		"interval_minutes", intervalMinutes,
	)

	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	if !validator.ValidateURL(url) {
		s.logger.Warn("invalid website URL received", "url", url)
		return nil, fmt.Errorf("invalid website URL: %s", url)
	}

	if !validator.ValidateEmail(ownerEmail) {
		s.logger.Warn("invalid owner email received", "email", ownerEmail)
		return nil, fmt.Errorf("invalid owner email: %s", ownerEmail)
	}

	if !validator.ValidateInterval(intervalMinutes) {
		s.logger.Warn("invalid check interval received", "interval_minutes", intervalMinutes)
		return nil, fmt.Errorf("check interval must be at least %d minute(s)", validator.MinCheckInterval)
	}

	website := &models.Website{
		UserID:          userID,
		OwnerEmail:      ownerEmail,
		URL:             url,
		IntervalMinutes: intervalMinutes,
	}

	if err := s.websiteStore.Create(ctx, website); err != nil {
		s.logger.Error("failed to create website in storage",
			"error", err,
			"user_id", userID,
			"url", url,
		)
		return nil, fmt.Errorf("failed to create website: %w", err)
	}

	s.logger.Info("website created",
		"website_id", website.ID,
		"user_id", userID,
		"url", url,
	)

	return website, nil
}

// GetWebsite возвращает сайт по ID; nil если сайт не найден
func (s *WebsiteService) GetWebsite(ctx context.Context, id string) (*models.Website, error) {
	website, err := s.websiteStore.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get website",
			"error", err,
			"website_id", id,
		)
		return nil, fmt.Errorf("failed to get website: %w", err)
	}

	return website, nil
}

// ListWebsites возвращает все сайты пользователя
func (s *WebsiteService) ListWebsites(ctx context.Context, userID string) ([]*models.Website, error) {
	websites, err := s.websiteStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list websites",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}

	return websites, nil
}

// UpdateWebsite меняет URL, email и интервал сайта. Возвращает признак
// изменения интервала: в этом случае вызывающий обязан перезапустить
// мониторинг пользователя, чтобы новый интервал вступил в силу.
func (s *WebsiteService) UpdateWebsite(ctx context.Context, id, ownerEmail, url string, intervalMinutes int) (*models.Website, bool, error) {
	website, err := s.websiteStore.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get website for update",
			"error", err,
			"website_id", id,
		)
		return nil, false, fmt.Errorf("failed to get website: %w", err)
	}

	if website == nil {
		return nil, false, nil
	}

	if !validator.ValidateURL(url) {
		s.logger.Warn("invalid website URL received", "url", url)
		return nil, false, fmt.Errorf("invalid website URL: %s", url)
	}

	if !validator.ValidateEmail(ownerEmail) {
		s.logger.Warn("invalid owner email received", "email", ownerEmail)
		return nil, false, fmt.Errorf("invalid owner email: %s", ownerEmail)
	}

	if !validator.ValidateInterval(intervalMinutes) {
		s.logger.Warn("invalid check interval received", "interval_minutes", intervalMinutes)
		return nil, false, fmt.Errorf("check interval must be at least %d minute(s)", validator.MinCheckInterval)
	}

	intervalChanged := website.IntervalMinutes != intervalMinutes

	website.URL = url
	website.OwnerEmail = ownerEmail
	website.IntervalMinutes = intervalMinutes

	if err := s.websiteStore.Update(ctx, website); err != nil {
		s.logger.Error("failed to update website in storage",
			"error", err,
			"website_id", id,
		)
		return nil, false, fmt.Errorf("failed to update website: %w", err)
	}

	s.logger.Info("website updated",
		"website_id", id,
		"url", url,
		"interval_minutes", intervalMinutes,
		"interval_changed", intervalChanged,
	)

	return website, intervalChanged, nil
}

// DeleteWebsite удаляет сайт вместе с отчетом и журналом.
// Работающая задача сайта снимет себя на ближайшем срабатывании,
// цикл сверки уберет ее еще раньше.
func (s *WebsiteService) DeleteWebsite(ctx context.Context, id string) error {
	if err := s.websiteStore.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete website",
			"error", err,
			"website_id", id,
		)
		return fmt.Errorf("failed to delete website: %w", err)
	}

	s.logger.Info("website deleted", "website_id", id)
	return nil
}
