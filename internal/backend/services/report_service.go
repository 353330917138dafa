package services

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/internal/backend/runner"
	"SiteWatch/internal/backend/storage"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Фиксированные 60 секунд простоя за каждую неудачную проверку.
// Асимметрия с uptime (который копит реальное время ответа) сохранена
// из наблюдаемого поведения исходной системы.
const downtimePerFailure = 60.0

type ReportService struct {
	websiteStore   storage.WebsiteStore
	reportStore    storage.ReportStore
	statusLogStore storage.StatusLogStore
	events         storage.EventPublisher
	alerts         AlertDispatcher
	historyLimit   int
	logger         *slog.Logger

	// Пер-сайтовые мьютексы: обновления отчета одного сайта строго
	// последовательны, разные сайты не мешают друг другу. Счетчик ссылок
	// убирает мьютекс из карты, как только его никто не держит и не ждет
	mu    sync.Mutex
	locks map[string]*siteLock
}

type siteLock struct {
	sync.Mutex
	refs int
}

type ReportServiceConfig struct {
	HistoryLimit int
}

func NewReportService(
	websiteStore storage.WebsiteStore,
	reportStore storage.ReportStore,
	statusLogStore storage.StatusLogStore,
	events storage.EventPublisher,
	alerts AlertDispatcher,
	cfg ReportServiceConfig,
	logger *slog.Logger,
) *ReportService {

	historyLimit := cfg.HistoryLimit
	if historyLimit == 0 {
		historyLimit = 1000
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReportService{
		websiteStore:   websiteStore,
		reportStore:    reportStore,
		statusLogStore: statusLogStore,
		events:         events,
		alerts:         alerts,
		historyLimit:   historyLimit,
		logger:         logger,
		locks:          make(map[string]*siteLock),
	}
}

// ApplyCheckResult сворачивает результат одной проверки в отчет сайта:
// запись журнала, статус сайта, накопленная статистика, оповещение при отказе.
// Ошибки персистентности возвращаются вызывающему (задаче), которая их
// логирует и продолжает работать по расписанию.
func (s *ReportService) ApplyCheckResult(ctx context.Context, website *models.Website, probe *runner.ProbeResult) error {
	lock := s.acquireSiteLock(website.ID)
	defer s.releaseSiteLock(website.ID, lock)

	now := time.Now()
	status := models.WebsiteStatusUp
	if !probe.Success {
		status = models.WebsiteStatusDown
	}

	s.logger.Debug("applying check result",
		"website_id", website.ID,
		"url", website.URL,
		"status", status,
		"status_code", probe.StatusCode,
		"elapsed", probe.Elapsed,
	)

	if err := s.statusLogStore.Append(ctx, website.ID, probe.StatusCode); err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}

	if err := s.websiteStore.UpdateStatus(ctx, website.ID, status, now); err != nil {
		return fmt.Errorf("failed to update website status: %w", err)
	}

	report, err := s.reportStore.Upsert(ctx, website.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	elapsedSeconds := probe.Elapsed.Seconds()
	elapsedMs := probe.Elapsed.Milliseconds()

	entry := models.ReportEntry{
		Timestamp: now,
		Status:    status,
	}

	if probe.Success {
		report.Status = models.WebsiteStatusUp
		report.UptimeSeconds += elapsedSeconds
		// Успешная проверка "отрабатывает" накопленный простой, но не ниже нуля
		report.DowntimeSeconds = math.Max(0, report.DowntimeSeconds-elapsedSeconds)

		// Среднее время ответа считается только по успешным проверкам
		report.Samples++
		n := float64(report.Samples)
		report.AvgResponseTime = (report.AvgResponseTime*(n-1) + float64(elapsedMs)) / n

		entry.ResponseTime = &elapsedMs
	} else {
		report.Status = models.WebsiteStatusDown
		report.Outages++
		report.DowntimeSeconds += downtimePerFailure

		s.alerts.Dispatch(Alert{
			To:         website.OwnerEmail,
			WebsiteURL: website.URL,
			Message:    failureMessage(website.URL, probe),
		})
	}

	report.History = append(report.History, entry)
	if s.historyLimit > 0 && len(report.History) > s.historyLimit {
		report.History = report.History[len(report.History)-s.historyLimit:]
	}

	report.Availability = availability(report.UptimeSeconds, report.DowntimeSeconds)

	if err := s.reportStore.Save(ctx, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.publishCheckEvent(ctx, website, status, probe)

	s.logger.Info("check result applied",
		"website_id", website.ID,
		"url", website.URL,
		"status", status,
		"availability", report.Availability,
		"outages", report.Outages,
	)

	return nil
}

// GetReport возвращает отчет сайта
func (s *ReportService) GetReport(ctx context.Context, websiteID string) (*models.Report, error) {
	report, err := s.reportStore.GetByWebsiteID(ctx, websiteID)
	if err != nil {
		s.logger.Error("failed to get report",
			"error", err,
			"website_id", websiteID,
		)
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// GetSummary возвращает сводку по журналу проверок сайта
func (s *ReportService) GetSummary(ctx context.Context, websiteID string, logLimit int) (*models.ReportSummary, error) {
	if logLimit <= 0 || logLimit > 500 {
		logLimit = 100
	}

	total, successful, err := s.statusLogStore.CountByWebsite(ctx, websiteID)
	if err != nil {
		s.logger.Error("failed to count status logs",
			"error", err,
			"website_id", websiteID,
		)
		return nil, fmt.Errorf("failed to count status logs: %w", err)
	}

	logs, err := s.statusLogStore.ListByWebsite(ctx, websiteID, logLimit)
	if err != nil {
		s.logger.Error("failed to list status logs",
			"error", err,
			"website_id", websiteID,
		)
		return nil, fmt.Errorf("failed to list status logs: %w", err)
	}

	summary := &models.ReportSummary{
		WebsiteID:        websiteID,
		TotalChecks:      total,
		SuccessfulChecks: successful,
		Logs:             logs,
	}

	if total > 0 {
		summary.UptimePercentage = round2(float64(successful) / float64(total) * 100)
	}

	return summary, nil
}

// публикует событие проверки для realtime слоя; ошибки только логируются
func (s *ReportService) publishCheckEvent(ctx context.Context, website *models.Website, status models.WebsiteStatus, probe *runner.ProbeResult) {
	if s.events == nil {
		return
	}

	event := models.CheckEvent{
		WebsiteID:      website.ID,
		UserID:         website.UserID,
		URL:            website.URL,
		Status:         status,
		StatusCode:     probe.StatusCode,
		ResponseTimeMs: probe.Elapsed.Milliseconds(),
		Timestamp:      time.Now(),
	}

	if err := s.events.Publish(ctx, storage.CheckEventsChannel, event); err != nil {
		s.logger.Warn("failed to publish check event",
			"error", err,
			"website_id", website.ID,
		)
	}
}

// захватывает мьютекс сайта, создавая его при первом обращении
func (s *ReportService) acquireSiteLock(websiteID string) *siteLock {
	s.mu.Lock()
	lock, ok := s.locks[websiteID]
	if !ok {
		lock = &siteLock{}
		s.locks[websiteID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// отпускает мьютекс сайта; последний владелец убирает его из карты
func (s *ReportService) releaseSiteLock(websiteID string, lock *siteLock) {
	lock.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, websiteID)
	}
	s.mu.Unlock()
}

func failureMessage(url string, probe *runner.ProbeResult) string {
	if probe.Reason == "" {
		return fmt.Sprintf("Website %s is down. Status code: %d", url, probe.StatusCode)
	}
	return fmt.Sprintf("Website %s check failed.\nStatus code: %d\nReason: %s", url, probe.StatusCode, probe.Reason)
}

// availability = uptime / (uptime + downtime) * 100; без наблюдений считается 100
func availability(uptimeSeconds, downtimeSeconds float64) float64 {
	total := uptimeSeconds + downtimeSeconds
	if total <= 0 {
		return 100
	}
	return round2(uptimeSeconds / total * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
