package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"torgmailru/client/internal/apierrors"
	"torgmailru/client/internal/config"
	"torgmailru/client/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Transport fetches the raw JSON body of one API resource
type Transport interface {
	FetchJSON(ctx context.Context, resource string, params Params) ([]byte, error)
}

type httpTransport struct {
	rl            ratelimit.Limiter
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier

	// Circuit breaker for 429 responses
	circuitBreakerMutex sync.RWMutex
	quotaExceededUntil  time.Time
	circuitBreakerDelay time.Duration
}

// NewTransport builds the HTTP transport. It fails with a configuration error,
// before any request is sent, when no access token is configured.
func NewTransport(cfg config.APIConfig, proxySupplier proxy.ProxySupplier) (Transport, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, apierrors.ErrNoAccessToken
	}
	if cfg.BaseURL == "" {
		return nil, apierrors.NewConfigError("api base URL is empty", nil)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", cfg.AccessToken)

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	cooldown := cfg.CircuitBreakerCooldown
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}

	return &httpTransport{
		rl:                  rl,
		httpClient:          client,
		proxySupplier:       proxySupplier,
		circuitBreakerDelay: cooldown,
	}, nil
}

// FetchJSON issues GET <base>/<resource>.json with params as the query string
func (t *httpTransport) FetchJSON(ctx context.Context, resource string, params Params) ([]byte, error) {
	path := "/" + strings.Trim(resource, "/") + ".json"

	if t.isCircuitBreakerOpen() {
		remaining := t.getRemainingCircuitBreakerTime()
		log.Debugf("🚫 Request to %s blocked by circuit breaker. Remaining time: %v", path, remaining.Round(time.Second))
		return nil, apierrors.NewTransportError(
			fmt.Sprintf("GET %s blocked for %v more", path, remaining.Round(time.Second)),
			http.StatusTooManyRequests, apierrors.ErrCircuitOpen)
	}

	t.rl.Take()

	resp, err := t.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params.Query()).
		Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apierrors.NewTransportError(fmt.Sprintf("GET %s cancelled", path), 0, ctx.Err())
		}
		return nil, apierrors.NewTransportError(fmt.Sprintf("GET %s failed", path), 0, err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		t.rotateProxy()
		t.triggerCircuitBreaker()
	}

	if resp.IsError() {
		return nil, apierrors.NewTransportError(fmt.Sprintf("GET %s: %s", path, resp.Status()), resp.StatusCode(), nil)
	}

	log.Debugf("GET %s -> %d", path, resp.StatusCode())
	return []byte(resp.String()), nil
}

func (t *httpTransport) rotateProxy() {
	if t.proxySupplier == nil {
		return
	}
	if newProxy := t.proxySupplier.Get(); newProxy != "" {
		log.Infof("🔄 Switching to new proxy: %s", newProxy)
		t.httpClient.SetProxy(newProxy)
	}
}

func (t *httpTransport) isCircuitBreakerOpen() bool {
	t.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(t.quotaExceededUntil)
	wasTriggered := !t.quotaExceededUntil.IsZero()
	t.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		t.circuitBreakerMutex.Lock()
		// Double-check after acquiring write lock
		if !t.quotaExceededUntil.IsZero() && now.After(t.quotaExceededUntil) {
			t.quotaExceededUntil = time.Time{}
			log.Infof("✅ Circuit breaker re-enabled - requests are now allowed")
		}
		t.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (t *httpTransport) triggerCircuitBreaker() {
	t.circuitBreakerMutex.Lock()
	defer t.circuitBreakerMutex.Unlock()

	t.quotaExceededUntil = time.Now().Add(t.circuitBreakerDelay)
	log.Warnf("🚫 Circuit breaker activated! Requests disabled until %v",
		t.quotaExceededUntil.Format("15:04:05"))
}

func (t *httpTransport) getRemainingCircuitBreakerTime() time.Duration {
	t.circuitBreakerMutex.RLock()
	defer t.circuitBreakerMutex.RUnlock()

	remaining := time.Until(t.quotaExceededUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}
