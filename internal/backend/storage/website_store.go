package storage

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/pkg/uuidutil"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type websiteStore struct {
	pool *pgxpool.Pool
}

func NewWebsiteStore(pool *pgxpool.Pool) WebsiteStore {
	return &websiteStore{pool: pool}
}

// Создаем новый сайт для мониторинга
func (s *websiteStore) Create(ctx context.Context, website *models.Website) error {
	website.ID = uuidutil.New()
	website.Status = models.WebsiteStatusUnknown
	website.CreatedAt = time.Now()
	website.UpdatedAt = time.Now()

	query := `INSERT INTO websites (id, user_id, owner_email, url, interval_minutes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		website.ID,
		website.UserID,
		website.OwnerEmail,
		website.URL,
		website.IntervalMinutes,
		website.Status,
		website.CreatedAt,
		website.UpdatedAt,
	)

	return err
}

// Возвращает сайт по ID
func (s *websiteStore) GetByID(ctx context.Context, id string) (*models.Website, error) {
	query := `SELECT id, user_id, owner_email, url, interval_minutes, status, last_checked, created_at, updated_at
		FROM websites WHERE id = $1`

	var website models.Website
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&website.ID,
		&website.UserID,
		&website.OwnerEmail,
		&website.URL,
		&website.IntervalMinutes,
		&website.Status,
		&website.LastChecked,
		&website.CreatedAt,
		&website.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get website %s: %w", id, err)
	}

	return &website, nil
}

// Возвращает все сайты пользователя
func (s *websiteStore) ListByUser(ctx context.Context, userID string) ([]*models.Website, error) {
	query := `
		SELECT id, user_id, owner_email, url, interval_minutes, status, last_checked, created_at, updated_at
		FROM websites
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list websites: failed to query websites for user %s: %w", userID, err)
	}
	defer rows.Close()

	var websites []*models.Website
	for rows.Next() {
		var website models.Website
		err := rows.Scan(
			&website.ID,
			&website.UserID,
			&website.OwnerEmail,
			&website.URL,
			&website.IntervalMinutes,
			&website.Status,
			&website.LastChecked,
			&website.CreatedAt,
			&website.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list websites: failed to scan row: %w", err)
		}
		websites = append(websites, &website)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list websites: row iteration error: %w", err)
	}

	return websites, nil
}

// Обновляет URL, email и интервал сайта
func (s *websiteStore) Update(ctx context.Context, website *models.Website) error {
	website.UpdatedAt = time.Now()

	query := `UPDATE websites
		SET url = $1, owner_email = $2, interval_minutes = $3, updated_at = $4
		WHERE id = $5`

	tag, err := s.pool.Exec(ctx, query,
		website.URL,
		website.OwnerEmail,
		website.IntervalMinutes,
		website.UpdatedAt,
		website.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update website %s: %w", website.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("website not found: %s", website.ID)
	}

	return nil
}

// Обновляет статус и время последней проверки
func (s *websiteStore) UpdateStatus(ctx context.Context, id string, status models.WebsiteStatus, lastChecked time.Time) error {
	query := `UPDATE websites SET status = $1, last_checked = $2, updated_at = $3 WHERE id = $4`
	_, err := s.pool.Exec(ctx, query, status, lastChecked, time.Now(), id)
	return err
}

// Удаляет сайт вместе с отчетом и журналом проверок
func (s *websiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM status_logs WHERE website_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete status logs for website %s: %w", id, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reports WHERE website_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete report for website %s: %w", id, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM websites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete website %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("website not found: %s", id)
	}

	return tx.Commit(ctx)
}
