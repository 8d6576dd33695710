package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxParallelProbes = 16

// ProxySupplier hands out proxy URLs in round-robin order
type ProxySupplier interface {
	Get() string
}

// Probe reports whether a proxy can reach the API
type Probe func(ctx context.Context, proxyURL string) bool

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewStaticSupplier rotates over proxies without checking them
func NewStaticSupplier(proxies []string) ProxySupplier {
	list := make([]string, len(proxies))
	copy(list, proxies)
	return &proxySupplier{proxies: list}
}

// NewProxySupplier keeps only the proxies that pass probe, preserving their
// configured order.
func NewProxySupplier(ctx context.Context, proxies []string, probe Probe) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{}
	}

	log.Infof("🔄 Testing %d proxies...", len(proxies))

	valid := make([]bool, len(proxies))
	g := new(errgroup.Group)
	g.SetLimit(maxParallelProbes)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			valid[i] = probe(ctx, proxyURL)
			if valid[i] {
				log.Debugf("✅ Proxy %s is working", proxyURL)
			} else {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
			}
			return nil
		})
	}
	_ = g.Wait()

	working := make([]string, 0, len(proxies))
	for i, ok := range valid {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("✅ ProxySupplier initialized with %d working proxies out of %d tested", len(working), len(proxies))
	return &proxySupplier{proxies: working}
}

// Get returns the next proxy URL, or "" when there are none
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

// HTTPProbe checks a proxy by requesting testURL through it with the given
// Authorization header. Any non-error status counts as reachable.
func HTTPProbe(testURL, accessToken string) Probe {
	return func(ctx context.Context, proxyURL string) bool {
		client := resty.New().
			SetTimeout(5*time.Second).
			SetRetryCount(0).
			SetProxy(proxyURL).
			SetHeader("Authorization", accessToken)

		resp, err := client.R().
			SetContext(ctx).
			Get(testURL)
		if err != nil {
			log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
			return false
		}
		if resp.IsError() {
			log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
			return false
		}
		return true
	}
}
