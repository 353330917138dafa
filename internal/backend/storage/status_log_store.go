package storage

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/pkg/uuidutil"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type statusLogStore struct {
	pool *pgxpool.Pool
}

func NewStatusLogStore(pool *pgxpool.Pool) StatusLogStore {
	return &statusLogStore{pool: pool}
}

// Добавляет запись в журнал; журнал append-only, записи никогда не меняются
func (s *statusLogStore) Append(ctx context.Context, websiteID string, statusCode int) error {
	query := `INSERT INTO status_logs (id, website_id, status_code, checked_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, uuidutil.New(), websiteID, statusCode, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append status log for website %s: %w", websiteID, err)
	}

	return nil
}

// Возвращает последние записи журнала сайта
func (s *statusLogStore) ListByWebsite(ctx context.Context, websiteID string, limit int) ([]*models.StatusLog, error) {
	query := `
		SELECT id, website_id, status_code, checked_at
		FROM status_logs
		WHERE website_id = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, websiteID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query status logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.StatusLog
	for rows.Next() {
		var log models.StatusLog
		err := rows.Scan(
			&log.ID,
			&log.WebsiteID,
			&log.StatusCode,
			&log.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status log row: %w", err)
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status log rows: %w", err)
	}

	return logs, nil
}

// Возвращает общее число проверок и число успешных
func (s *statusLogStore) CountByWebsite(ctx context.Context, websiteID string) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status_code = $2)
		FROM status_logs
		WHERE website_id = $1
	`

	var total, successful int
	err := s.pool.QueryRow(ctx, query, websiteID, http.StatusOK).Scan(&total, &successful)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count status logs for website %s: %w", websiteID, err)
	}

	return total, successful, nil
}
