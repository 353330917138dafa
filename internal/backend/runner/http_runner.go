package runner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SyntheticFailureCode записывается в журнал, когда ответ не был получен
// (сетевая ошибка, таймаут, некорректный URL)
const SyntheticFailureCode = 500

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/86.0.4240.183 Safari/537.36"

// ProbeResult результат одной проверки доступности.
// Success истинен только при статусе ровно 200; любой другой статус или
// транспортная ошибка считаются отказом.
type ProbeResult struct {
	Success    bool
	StatusCode int
	Elapsed    time.Duration
	Reason     string
}

type HTTPRunner struct {
	client *http.Client
}

func NewHTTPRunner(timeout time.Duration) *HTTPRunner {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPRunner{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: false,
					MinVersion:         tls.VersionTLS12,
				},
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Execute выполняет одну проверку; никогда не возвращает ошибку наружу,
// все отказы выражаются через ProbeResult
func (r *HTTPRunner) Execute(ctx context.Context, target string) *ProbeResult {
	fullURL, err := r.normalizeURL(target)
	if err != nil {
		return &ProbeResult{
			StatusCode: SyntheticFailureCode,
			Reason:     fmt.Sprintf("invalid URL: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &ProbeResult{
			StatusCode: SyntheticFailureCode,
			Reason:     fmt.Sprintf("failed to create request: %v", err),
		}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		return &ProbeResult{
			StatusCode: SyntheticFailureCode,
			Elapsed:    elapsed,
			Reason:     err.Error(),
		}
	}
	defer resp.Body.Close()

	// Тело не нужно, но вычитываем хвост чтобы соединение вернулось в пул
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &ProbeResult{
			StatusCode: resp.StatusCode,
			Elapsed:    elapsed,
			Reason:     fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	return &ProbeResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
	}
}

func (r *HTTPRunner) normalizeURL(target string) (string, error) {
	if _, err := url.ParseRequestURI(target); err != nil {
		if httpURL, err := url.Parse("http://" + target); err == nil {
			return httpURL.String(), nil
		}
		return "", fmt.Errorf("invalid URL format: %s", target)
	}
	return target, nil
}
