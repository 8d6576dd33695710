package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupplier_RoundRobin(t *testing.T) {
	s := NewStaticSupplier([]string{"http://a:1", "http://b:2"})

	assert.Equal(t, "http://a:1", s.Get())
	assert.Equal(t, "http://b:2", s.Get())
	assert.Equal(t, "http://a:1", s.Get())
}

func TestSupplier_Empty(t *testing.T) {
	assert.Equal(t, "", NewStaticSupplier(nil).Get())
	assert.Equal(t, "", NewProxySupplier(context.Background(), nil, nil).Get())
}

func TestNewProxySupplier_FiltersByProbe(t *testing.T) {
	probe := func(_ context.Context, proxyURL string) bool {
		return !strings.Contains(proxyURL, "dead")
	}

	s := NewProxySupplier(context.Background(), []string{"http://dead:1", "http://ok-1:2", "http://dead:3", "http://ok-2:4"}, probe)

	assert.Equal(t, "http://ok-1:2", s.Get())
	assert.Equal(t, "http://ok-2:4", s.Get())
	assert.Equal(t, "http://ok-1:2", s.Get())
}

func TestHTTPProbe(t *testing.T) {
	// An HTTP proxy receives the absolute target URL; this one answers directly.
	var gotAuth string
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if strings.Contains(r.URL.String(), "forbidden") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer proxyServer.Close()

	ctx := context.Background()
	assert.True(t, HTTPProbe("http://api.example.test/regions.json", "token")(ctx, proxyServer.URL))
	assert.Equal(t, "token", gotAuth)
	assert.False(t, HTTPProbe("http://api.example.test/forbidden.json", "token")(ctx, proxyServer.URL))
	assert.False(t, HTTPProbe("http://api.example.test/regions.json", "token")(ctx, "http://127.0.0.1:1"))
}
