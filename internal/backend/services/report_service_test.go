package services

import (
	"SiteWatch/internal/backend/models"
	"SiteWatch/internal/backend/runner"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWebsiteStore struct {
	mu       sync.Mutex
	websites map[string]*models.Website
	listErr  error
}

func newFakeWebsiteStore(websites ...*models.Website) *fakeWebsiteStore {
	s := &fakeWebsiteStore{websites: make(map[string]*models.Website)}
	for _, w := range websites {
		s.websites[w.ID] = w
	}
	return s
}

func (s *fakeWebsiteStore) Create(ctx context.Context, website *models.Website) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if website.ID == "" {
		website.ID = fmt.Sprintf("site-%d", len(s.websites)+1)
	}
	website.Status = models.WebsiteStatusUnknown
	s.websites[website.ID] = website
	return nil
}

func (s *fakeWebsiteStore) GetByID(ctx context.Context, id string) (*models.Website, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	website, ok := s.websites[id]
	if !ok {
		return nil, nil
	}
	copied := *website
	return &copied, nil
}

func (s *fakeWebsiteStore) ListByUser(ctx context.Context, userID string) ([]*models.Website, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var result []*models.Website
	for _, website := range s.websites {
		if website.UserID == userID {
			copied := *website
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeWebsiteStore) Update(ctx context.Context, website *models.Website) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.websites[website.ID] = website
	return nil
}

func (s *fakeWebsiteStore) UpdateStatus(ctx context.Context, id string, status models.WebsiteStatus, lastChecked time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if website, ok := s.websites[id]; ok {
		website.Status = status
		website.LastChecked = &lastChecked
	}
	return nil
}

func (s *fakeWebsiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.websites, id)
	return nil
}

type fakeReportStore struct {
	mu      sync.Mutex
	reports map[string]*models.Report
	saveErr error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]*models.Report)}
}

func copyReport(report *models.Report) *models.Report {
	copied := *report
	copied.History = append([]models.ReportEntry(nil), report.History...)
	return &copied
}

func (s *fakeReportStore) Upsert(ctx context.Context, websiteID string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[websiteID]
	if !ok {
		report = &models.Report{
			ID:           "report-" + websiteID,
			WebsiteID:    websiteID,
			Status:       models.WebsiteStatusUp,
			Availability: 100,
		}
		s.reports[websiteID] = report
	}
	return copyReport(report), nil
}

func (s *fakeReportStore) Save(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.reports[report.WebsiteID] = copyReport(report)
	return nil
}

func (s *fakeReportStore) GetByWebsiteID(ctx context.Context, websiteID string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[websiteID]
	if !ok {
		return nil, nil
	}
	return copyReport(report), nil
}

type fakeStatusLogStore struct {
	mu        sync.Mutex
	logs      []*models.StatusLog
	appendErr error
}

func (s *fakeStatusLogStore) Append(ctx context.Context, websiteID string, statusCode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.logs = append(s.logs, &models.StatusLog{
		ID:         fmt.Sprintf("log-%d", len(s.logs)),
		WebsiteID:  websiteID,
		StatusCode: statusCode,
		CheckedAt:  time.Now(),
	})
	return nil
}

func (s *fakeStatusLogStore) ListByWebsite(ctx context.Context, websiteID string, limit int) ([]*models.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.StatusLog
	for i := len(s.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if s.logs[i].WebsiteID == websiteID {
			result = append(result, s.logs[i])
		}
	}
	return result, nil
}

func (s *fakeStatusLogStore) CountByWebsite(ctx context.Context, websiteID string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, successful := 0, 0
	for _, log := range s.logs {
		if log.WebsiteID != websiteID {
			continue
		}
		total++
		if log.StatusCode == 200 {
			successful++
		}
	}
	return total, successful, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, message)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeDispatcher struct {
	mu     sync.Mutex
	alerts []Alert
}

func (d *fakeDispatcher) Dispatch(alert Alert) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, alert)
	return true
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.alerts)
}

func testWebsite() *models.Website {
	return &models.Website{
		ID:              "site-1",
		UserID:          "user-1",
		OwnerEmail:      "owner@example.com",
		URL:             "https://example.com",
		IntervalMinutes: 1,
		Status:          models.WebsiteStatusUnknown,
	}
}

func newTestReportService(cfg ReportServiceConfig) (*ReportService, *fakeWebsiteStore, *fakeReportStore, *fakeStatusLogStore, *fakePublisher, *fakeDispatcher) {
	websites := newFakeWebsiteStore(testWebsite())
	reports := newFakeReportStore()
	logs := &fakeStatusLogStore{}
	events := &fakePublisher{}
	alerts := &fakeDispatcher{}
	svc := NewReportService(websites, reports, logs, events, alerts, cfg, nil)
	return svc, websites, reports, logs, events, alerts
}

func successProbe(elapsed time.Duration) *runner.ProbeResult {
	return &runner.ProbeResult{Success: true, StatusCode: 200, Elapsed: elapsed}
}

func failureProbe(code int) *runner.ProbeResult {
	return &runner.ProbeResult{StatusCode: code, Elapsed: 50 * time.Millisecond, Reason: "unexpected status"}
}

func TestApplyCheckResult_SuccessAccumulatesUptime(t *testing.T) {
	svc, websites, reports, logs, events, alerts := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	for _, elapsed := range []time.Duration{1000 * time.Millisecond, 1200 * time.Millisecond, 800 * time.Millisecond} {
		require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(elapsed)))
	}

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, models.WebsiteStatusUp, report.Status)
	assert.InDelta(t, 3.0, report.UptimeSeconds, 1e-9)
	assert.Equal(t, 0.0, report.DowntimeSeconds)
	assert.Equal(t, 0, report.Outages)
	assert.Equal(t, 3, report.Samples)
	assert.InDelta(t, 1000.0, report.AvgResponseTime, 1e-9)
	assert.Equal(t, 100.0, report.Availability)

	require.Len(t, report.History, 3)
	for _, entry := range report.History {
		assert.Equal(t, models.WebsiteStatusUp, entry.Status)
		require.NotNil(t, entry.ResponseTime)
	}
	assert.Equal(t, int64(1200), *report.History[1].ResponseTime)

	stored, err := websites.GetByID(ctx, website.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WebsiteStatusUp, stored.Status)
	require.NotNil(t, stored.LastChecked)

	assert.Len(t, logs.logs, 3)
	assert.Len(t, events.events, 3)
	assert.Equal(t, 0, alerts.count())
}

func TestApplyCheckResult_FailureRecordsOutageAndAlerts(t *testing.T) {
	svc, websites, reports, logs, _, alerts := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	require.NoError(t, svc.ApplyCheckResult(ctx, website, failureProbe(503)))

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, models.WebsiteStatusDown, report.Status)
	assert.Equal(t, 1, report.Outages)
	assert.Equal(t, 60.0, report.DowntimeSeconds)
	assert.Equal(t, 0.0, report.UptimeSeconds)
	assert.Equal(t, 0, report.Samples)
	assert.Equal(t, 0.0, report.AvgResponseTime)
	assert.Equal(t, 0.0, report.Availability)

	require.Len(t, report.History, 1)
	assert.Equal(t, models.WebsiteStatusDown, report.History[0].Status)
	assert.Nil(t, report.History[0].ResponseTime)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, 503, logs.logs[0].StatusCode)

	require.Equal(t, 1, alerts.count())
	assert.Equal(t, "owner@example.com", alerts.alerts[0].To)
	assert.Equal(t, website.URL, alerts.alerts[0].WebsiteURL)
	assert.Contains(t, alerts.alerts[0].Message, website.URL)

	stored, err := websites.GetByID(ctx, website.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WebsiteStatusDown, stored.Status)
}

func TestApplyCheckResult_FailureExcludedFromAverage(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(400*time.Millisecond)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, failureProbe(500)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(600*time.Millisecond)))

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)

	// Среднее считается только по двум успешным проверкам
	assert.Equal(t, 2, report.Samples)
	assert.InDelta(t, 500.0, report.AvgResponseTime, 1e-9)
}

func TestApplyCheckResult_SuccessReclaimsDowntime(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	require.NoError(t, svc.ApplyCheckResult(ctx, website, failureProbe(500)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(2*time.Second)))

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, report.UptimeSeconds, 1e-9)
	assert.InDelta(t, 58.0, report.DowntimeSeconds, 1e-9)
	// 2 / 60 * 100, округленное до сотых
	assert.Equal(t, 3.33, report.Availability)
}

func TestApplyCheckResult_DowntimeNeverGoesNegative(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	require.NoError(t, svc.ApplyCheckResult(ctx, website, failureProbe(500)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(90*time.Second)))

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.DowntimeSeconds)
	assert.Equal(t, 100.0, report.Availability)
}

func TestApplyCheckResult_HistoryTrimmedToLimit(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{HistoryLimit: 5})
	ctx := context.Background()
	website := testWebsite()

	for i := 0; i < 8; i++ {
		require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(time.Duration(i+1)*100*time.Millisecond)))
	}

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)

	require.Len(t, report.History, 5)
	// Старейшие записи отброшены, последняя соответствует последней проверке
	assert.Equal(t, int64(800), *report.History[4].ResponseTime)
	assert.Equal(t, int64(400), *report.History[0].ResponseTime)
	// Счетчики не зависят от длины истории
	assert.Equal(t, 8, report.Samples)
}

func TestApplyCheckResult_PersistenceErrorPropagates(t *testing.T) {
	svc, _, _, logs, _, alerts := newTestReportService(ReportServiceConfig{})
	logs.appendErr = errors.New("connection lost")

	err := svc.ApplyCheckResult(context.Background(), testWebsite(), successProbe(time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
	assert.Equal(t, 0, alerts.count())
}

func TestApplyCheckResult_SaveErrorPropagates(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{})
	reports.saveErr = errors.New("save failed")

	err := svc.ApplyCheckResult(context.Background(), testWebsite(), successProbe(time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save failed")
}

func TestApplyCheckResult_ConcurrentUpdatesSerialized(t *testing.T) {
	svc, _, reports, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(100*time.Millisecond)))
		}()
	}
	wg.Wait()

	report, err := reports.GetByWebsiteID(ctx, website.ID)
	require.NoError(t, err)

	// Ни одно обновление не потеряно
	assert.Equal(t, workers, report.Samples)
	assert.InDelta(t, float64(workers)*0.1, report.UptimeSeconds, 1e-6)
	assert.InDelta(t, 100.0, report.AvgResponseTime, 1e-6)
	assert.Len(t, report.History, workers)
}

func TestApplyCheckResult_SiteLocksEvicted(t *testing.T) {
	svc, websites, _, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()

	// Множество разных сайтов, часть проверяется конкурентно
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		website := testWebsite()
		website.ID = fmt.Sprintf("site-%d", i)
		require.NoError(t, websites.Create(ctx, website))

		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(time.Millisecond)))
		}()
	}
	wg.Wait()

	// Карта мьютексов не растет вместе с числом когда-либо проверенных сайтов
	svc.mu.Lock()
	remaining := len(svc.locks)
	svc.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestGetReport_MissingReturnsNil(t *testing.T) {
	svc, _, _, _, _, _ := newTestReportService(ReportServiceConfig{})

	report, err := svc.GetReport(context.Background(), "unknown-site")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestGetSummary_CountsSuccessfulChecks(t *testing.T) {
	svc, _, _, _, _, _ := newTestReportService(ReportServiceConfig{})
	ctx := context.Background()
	website := testWebsite()

	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(time.Second)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, failureProbe(404)))
	require.NoError(t, svc.ApplyCheckResult(ctx, website, successProbe(time.Second)))

	summary, err := svc.GetSummary(ctx, website.ID, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalChecks)
	assert.Equal(t, 2, summary.SuccessfulChecks)
	assert.Equal(t, 66.67, summary.UptimePercentage)
	assert.Len(t, summary.Logs, 3)
}

func TestAvailability(t *testing.T) {
	assert.Equal(t, 100.0, availability(0, 0))
	assert.Equal(t, 100.0, availability(10, 0))
	assert.Equal(t, 0.0, availability(0, 60))
	assert.Equal(t, 50.0, availability(30, 30))
	assert.Equal(t, 33.33, availability(1, 2))
}
