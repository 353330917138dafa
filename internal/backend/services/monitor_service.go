package services

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/internal/backend/runner"
	"SiteWatch/internal/backend/storage"
	"SiteWatch/pkg/validator"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Запас времени на персистентность сверх таймаута самой проверки
const persistGrace = 15 * time.Second

// Prober выполняет одну проверку доступности
type Prober interface {
	Execute(ctx context.Context, target string) *runner.ProbeResult
}

// ReportApplier сворачивает результат проверки в отчет сайта
type ReportApplier interface {
	ApplyCheckResult(ctx context.Context, website *models.Website, probe *runner.ProbeResult) error
}

// userSession набор задач мониторинга одного пользователя плюс его цикл сверки
type userSession struct {
	userID          string
	cron            *cron.Cron
	cancelReconcile context.CancelFunc

	mu      sync.Mutex
	entries map[string]cron.EntryID // website id -> запись планировщика
}

func (sess *userSession) setEntry(websiteID string, id cron.EntryID) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.entries[websiteID] = id
}

func (sess *userSession) hasEntry(websiteID string) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	_, ok := sess.entries[websiteID]
	return ok
}

func (sess *userSession) removeEntry(websiteID string) (cron.EntryID, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	id, ok := sess.entries[websiteID]
	if ok {
		delete(sess.entries, websiteID)
	}
	return id, ok
}

func (sess *userSession) websiteIDs() []string {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ids := make([]string, 0, len(sess.entries))
	for id := range sess.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MonitorService владеет всеми активными сессиями мониторинга.
// Вся изменяемая структура (user -> jobs) живет за мьютексом сервиса,
// глобального состояния процесса нет.
type MonitorService struct {
	websiteStore storage.WebsiteStore
	reports      ReportApplier
	prober       Prober
	logger       *slog.Logger

	reconcileInterval time.Duration
	checkTimeout      time.Duration

	mu       sync.Mutex
	sessions map[string]*userSession
}

type MonitorServiceConfig struct {
	ReconcileInterval time.Duration
	CheckTimeout      time.Duration
}

func NewMonitorService(
	websiteStore storage.WebsiteStore,
	reports ReportApplier,
	prober Prober,
	cfg MonitorServiceConfig,
	logger *slog.Logger,
) *MonitorService {

	reconcileInterval := cfg.ReconcileInterval
	if reconcileInterval == 0 {
		reconcileInterval = time.Minute
	}

	checkTimeout := cfg.CheckTimeout
	if checkTimeout == 0 {
		checkTimeout = 30 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MonitorService{
		websiteStore:      websiteStore,
		reports:           reports,
		prober:            prober,
		logger:            logger,
		reconcileInterval: reconcileInterval,
		checkTimeout:      checkTimeout,
		sessions:          make(map[string]*userSession),
	}
}

// StartMonitoring создает сессию пользователя: по задаче на каждый его сайт
// плюс цикл сверки. Повторный вызов для активного пользователя - no-op.
// Сайты с некорректным интервалом пропускаются, ошибка возвращается
// вызывающему, остальные сайты при этом запускаются.
func (s *MonitorService) StartMonitoring(ctx context.Context, userID string) error {
	reconcileCtx, cancel := context.WithCancel(context.Background())

	sess := &userSession{
		userID: userID,
		// SkipIfStillRunning: задача никогда не выполняется параллельно
		// сама с собой, лишнее срабатывание пропускается
		cron:            cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cancelReconcile: cancel,
		entries:         make(map[string]cron.EntryID),
	}

	s.mu.Lock()
	if _, exists := s.sessions[userID]; exists {
		s.mu.Unlock()
		cancel()
		s.logger.Info("monitoring already active for user", "user_id", userID)
		return nil
	}
	s.sessions[userID] = sess
	s.mu.Unlock()

	websites, err := s.websiteStore.ListByUser(ctx, userID)
	if err != nil {
		s.dropSession(userID)
		cancel()
		s.logger.Error("failed to load websites for user",
			"error", err,
			"user_id", userID,
		)
		return fmt.Errorf("failed to load websites for user %s: %w", userID, err)
	}

	var schedErrs []error
	for _, website := range websites {
		if err := s.scheduleJob(sess, website); err != nil {
			s.logger.Warn("website not scheduled",
				"error", err,
				"website_id", website.ID,
				"url", website.URL,
			)
			schedErrs = append(schedErrs, err)
		}
	}

	sess.cron.Start()
	go s.reconcileLoop(reconcileCtx, sess)

	s.logger.Info("monitoring started",
		"user_id", userID,
		"websites", len(websites),
		"scheduled", len(websites)-len(schedErrs),
	)

	return errors.Join(schedErrs...)
}

// StopMonitoring снимает сессию пользователя: останавливает все его задачи
// и цикл сверки. Новые срабатывания после возврата не начинаются; уже
// начавшаяся проверка довыполняется (мягкая остановка). No-op без сессии.
func (s *MonitorService) StopMonitoring(userID string) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("no active monitoring session for user", "user_id", userID)
		return
	}
	delete(s.sessions, userID)
	s.mu.Unlock()

	sess.cancelReconcile()
	sess.cron.Stop()

	s.logger.Info("monitoring stopped",
		"user_id", userID,
		"jobs", len(sess.websiteIDs()),
	)
}

// Restart пересоздает сессию пользователя; используется после изменения
// интервала сайта, чтобы старый таймер гарантированно не пережил новый
func (s *MonitorService) Restart(ctx context.Context, userID string) error {
	s.StopMonitoring(userID)
	return s.StartMonitoring(ctx, userID)
}

// StopAll останавливает все сессии; вызывается при завершении процесса
func (s *MonitorService) StopAll() {
	s.mu.Lock()
	users := make([]string, 0, len(s.sessions))
	for userID := range s.sessions {
		users = append(users, userID)
	}
	s.mu.Unlock()

	for _, userID := range users {
		s.StopMonitoring(userID)
	}
}

// IsMonitoring сообщает, есть ли активная сессия пользователя
func (s *MonitorService) IsMonitoring(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}

// ActiveJobs возвращает ID сайтов с активными задачами пользователя
func (s *MonitorService) ActiveJobs(userID string) []string {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return sess.websiteIDs()
}

// ActiveUsers возвращает пользователей с активными сессиями
func (s *MonitorService) ActiveUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]string, 0, len(s.sessions))
	for userID := range s.sessions {
		users = append(users, userID)
	}
	slices.Sort(users)
	return users
}

// добавляет повторяющуюся задачу проверки сайта в сессию
func (s *MonitorService) scheduleJob(sess *userSession, website *models.Website) error {
	if !validator.ValidateInterval(website.IntervalMinutes) {
		return fmt.Errorf("website %s: check interval must be at least %d minute(s), got %d",
			website.ID, validator.MinCheckInterval, website.IntervalMinutes)
	}

	websiteID := website.ID
	spec := fmt.Sprintf("*/%d * * * *", website.IntervalMinutes)

	entryID, err := sess.cron.AddFunc(spec, func() {
		s.runJob(sess, websiteID)
	})
	if err != nil {
		return fmt.Errorf("website %s: failed to schedule job: %w", websiteID, err)
	}

	sess.setEntry(websiteID, entryID)

	s.logger.Info("scheduled monitoring job",
		"user_id", sess.userID,
		"website_id", websiteID,
		"url", website.URL,
		"interval_minutes", website.IntervalMinutes,
	)

	return nil
}

// одно срабатывание задачи: перечитать сайт, проверить, обновить отчет.
// Любая ошибка логируется и не снимает задачу с расписания.
func (s *MonitorService) runJob(sess *userSession, websiteID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.checkTimeout+persistGrace)
	defer cancel()

	// Перечитываем сайт, чтобы подхватить правки URL без перезапуска задачи
	website, err := s.websiteStore.GetByID(ctx, websiteID)
	if err != nil {
		s.logger.Error("failed to load website for check",
			"error", err,
			"website_id", websiteID,
		)
		return
	}

	if website == nil {
		// Сайт удален - задача снимает сама себя
		s.logger.Info("website removed, cancelling its job",
			"user_id", sess.userID,
			"website_id", websiteID,
		)
		s.removeJob(sess, websiteID)
		return
	}

	probeCtx, probeCancel := context.WithTimeout(ctx, s.checkTimeout)
	probe := s.prober.Execute(probeCtx, website.URL)
	probeCancel()

	if err := s.reports.ApplyCheckResult(ctx, website, probe); err != nil {
		s.logger.Error("failed to apply check result",
			"error", err,
			"website_id", websiteID,
			"url", website.URL,
		)
	}
}

func (s *MonitorService) removeJob(sess *userSession, websiteID string) {
	if entryID, ok := sess.removeEntry(websiteID); ok {
		sess.cron.Remove(entryID)
	}
}

// цикл сверки: периодически приводит набор задач сессии к актуальному
// списку сайтов пользователя
func (s *MonitorService) reconcileLoop(ctx context.Context, sess *userSession) {
	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx, sess)
		}
	}
}

func (s *MonitorService) reconcile(ctx context.Context, sess *userSession) {
	websites, err := s.websiteStore.ListByUser(ctx, sess.userID)
	if err != nil {
		s.logger.Warn("reconcile: failed to list websites",
			"error", err,
			"user_id", sess.userID,
		)
		return
	}

	desired := make(map[string]*models.Website, len(websites))
	for _, website := range websites {
		desired[website.ID] = website

		if !sess.hasEntry(website.ID) {
			if err := s.scheduleJob(sess, website); err != nil {
				s.logger.Warn("reconcile: website not scheduled",
					"error", err,
					"website_id", website.ID,
				)
			}
		}
	}

	for _, websiteID := range sess.websiteIDs() {
		if _, ok := desired[websiteID]; !ok {
			s.removeJob(sess, websiteID)
			s.logger.Info("stopped monitoring removed website",
				"user_id", sess.userID,
				"website_id", websiteID,
			)
		}
	}
}

func (s *MonitorService) dropSession(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}
