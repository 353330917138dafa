package storage

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/pkg/uuidutil"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) ReportStore {
	return &reportStore{pool: pool}
}

// Возвращает отчет сайта, создавая его с начальными значениями при отсутствии
func (s *reportStore) Upsert(ctx context.Context, websiteID string) (*models.Report, error) {
	query := `
		INSERT INTO reports (id, website_id, status, availability, outages, uptime_seconds, downtime_seconds, avg_response_time, samples, history, updated_at)
		VALUES ($1, $2, 'up', 100, 0, 0, 0, 0, 0, '[]', $3)
		ON CONFLICT (website_id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, uuidutil.New(), websiteID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert report for website %s: %w", websiteID, err)
	}

	report, err := s.GetByWebsiteID(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	if report == nil {
		return nil, fmt.Errorf("report missing after upsert for website %s", websiteID)
	}

	return report, nil
}

// Сохраняет отчет целиком
func (s *reportStore) Save(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now()

	historyJSON, err := json.Marshal(report.History)
	if err != nil {
		return fmt.Errorf("failed to marshal report history: %w", err)
	}

	query := `
		UPDATE reports
		SET status = $1, availability = $2, outages = $3, uptime_seconds = $4,
			downtime_seconds = $5, avg_response_time = $6, samples = $7, history = $8, updated_at = $9
		WHERE website_id = $10
	`

	tag, err := s.pool.Exec(ctx, query,
		report.Status,
		report.Availability,
		report.Outages,
		report.UptimeSeconds,
		report.DowntimeSeconds,
		report.AvgResponseTime,
		report.Samples,
		historyJSON,
		report.UpdatedAt,
		report.WebsiteID,
	)
	if err != nil {
		return fmt.Errorf("failed to save report for website %s: %w", report.WebsiteID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report not found for website: %s", report.WebsiteID)
	}

	return nil
}

// Возвращает отчет по ID сайта
func (s *reportStore) GetByWebsiteID(ctx context.Context, websiteID string) (*models.Report, error) {
	query := `
		SELECT id, website_id, status, availability, outages, uptime_seconds, downtime_seconds, avg_response_time, samples, history, updated_at
		FROM reports WHERE website_id = $1
	`

	var report models.Report
	var historyJSON []byte

	err := s.pool.QueryRow(ctx, query, websiteID).Scan(
		&report.ID,
		&report.WebsiteID,
		&report.Status,
		&report.Availability,
		&report.Outages,
		&report.UptimeSeconds,
		&report.DowntimeSeconds,
		&report.AvgResponseTime,
		&report.Samples,
		&historyJSON,
		&report.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report for website %s: %w", websiteID, err)
	}

	// Декодируем историю, только если она не пустая
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &report.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report history: %w", err)
		}
	}

	return &report, nil
}
