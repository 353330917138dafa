package services

import (
	"SiteWatch/internal/config"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mail "gopkg.in/mail.v2"
)

// Alert письмо владельцу сайта об отказе
type Alert struct {
	To         string
	WebsiteURL string
	Message    string
}

// AlertDispatcher неблокирующая отправка оповещений; возвращает false,
// если оповещение было отброшено
type AlertDispatcher interface {
	Dispatch(alert Alert) bool
}

// Mailer транспорт доставки оповещений
type Mailer interface {
	Send(alert Alert) error
}

type smtpMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(alert Alert) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", alert.To)
	msg.SetHeader("Subject", "Website Down Alert")
	msg.SetBody("text/plain", alert.Message)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}
	d.Timeout = 15 * time.Second

	if m.cfg.SSL {
		d.SSL = true
	} else {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// logMailer используется когда SMTP не настроен
type logMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(alert Alert) error {
	m.logger.Warn("down alert (SMTP disabled)",
		"to", alert.To,
		"website", alert.WebsiteURL,
		"message", alert.Message,
	)
	return nil
}

// AlertService доставляет оповещения через ограниченную очередь, чтобы
// медленный почтовый транспорт не тормозил выполнение проверок
type AlertService struct {
	mailer   Mailer
	queue    chan Alert
	logger   *slog.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once

	// mu упорядочивает Dispatch относительно закрытия очереди: мониторинг
	// останавливается мягко, и проверка может довыполниться уже после Stop
	mu      sync.Mutex
	stopped bool
}

type AlertServiceConfig struct {
	QueueSize int
}

func NewAlertService(mailer Mailer, cfg AlertServiceConfig, logger *slog.Logger) *AlertService {
	queueSize := cfg.QueueSize
	if queueSize == 0 {
		queueSize = 64
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AlertService{
		mailer: mailer,
		queue:  make(chan Alert, queueSize),
		logger: logger,
	}
}

// Start запускает воркер доставки оповещений
func (s *AlertService) Start() {
	s.wg.Add(1)
	go s.worker()

	s.logger.Info("alert service started", "queue_size", cap(s.queue))
}

// Stop останавливает воркер, дождавшись доставки оставшихся оповещений.
// Dispatch после Stop безопасен: оповещение отбрасывается
func (s *AlertService) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.queue)
		s.mu.Unlock()

		s.wg.Wait()
		s.logger.Info("alert service stopped")
	})
}

// Dispatch ставит оповещение в очередь не блокируя вызывающего;
// при переполненной очереди или остановленном сервисе оповещение отбрасывается
func (s *AlertService) Dispatch(alert Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("alert service stopped, dropping alert",
			"to", alert.To,
			"website", alert.WebsiteURL,
		)
		return false
	}

	select {
	case s.queue <- alert:
		s.logger.Debug("alert queued",
			"to", alert.To,
			"website", alert.WebsiteURL,
		)
		return true
	default:
		s.logger.Warn("alert queue full, dropping alert",
			"to", alert.To,
			"website", alert.WebsiteURL,
		)
		return false
	}
}

func (s *AlertService) worker() {
	defer s.wg.Done()

	for alert := range s.queue {
		if err := s.mailer.Send(alert); err != nil {
			s.logger.Error("failed to send alert",
				"error", err,
				"to", alert.To,
				"website", alert.WebsiteURL,
			)
			continue
		}

		s.logger.Info("alert sent",
			"to", alert.To,
			"website", alert.WebsiteURL,
		)
	}
}
