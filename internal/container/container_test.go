package container

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torgmailru/client/internal/apierrors"
	"torgmailru/client/internal/config"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.API.BaseURL = baseURL
	cfg.API.AccessToken = "secret"
	return cfg
}

func redisConfig(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(mr.Port(), "%d", &port)
	require.NoError(t, err)
	return config.RedisConfig{Host: mr.Host(), Port: port}
}

func TestNewAPI_RequiresToken(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.API.AccessToken = ""

	_, err := NewAPI(context.Background(), cfg)
	assert.ErrorIs(t, err, apierrors.ErrNoAccessToken)
}

func TestNewAPI_WithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Region": {"Id": 213, "Name": "Москва"}}`)
	}))
	defer srv.Close()

	app, err := NewAPI(context.Background(), testConfig(t, srv.URL))
	require.NoError(t, err)
	defer app.Close()

	region, err := app.API.Get(context.Background(), "region/213", nil)
	require.NoError(t, err)
	name, _ := region.Path("name")
	s, _ := name.AsString()
	assert.Equal(t, "Москва", s)
	assert.Nil(t, app.Service)
}

func TestNewAPI_CacheEnabled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"Region": {"Id": 213}}`)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	cfg := testConfig(t, srv.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute
	cfg.Redis = redisConfig(t, mr)

	app, err := NewAPI(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	for i := 0; i < 2; i++ {
		_, err := app.API.Get(context.Background(), "region/213", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestNew_WiresCrawler(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "http://localhost")
	cfg.Redis = redisConfig(t, mr)

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Service)
	assert.NotNil(t, app.Repository)
	assert.NotNil(t, app.Checkpoints)
	assert.True(t, mr.Exists("torgmailru:stream:ListingTask"))
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProxyProbeURL(t *testing.T) {
	assert.Equal(t, "http://content.api.torg.mail.ru/2.0/regions.json", proxyProbeURL("http://content.api.torg.mail.ru/2.0"))
	assert.Equal(t, "http://localhost/2.0/regions.json", proxyProbeURL("http://localhost/2.0/"))
}

func TestNewAPI_ProbesAndUsesProxy(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/2.0/regions.json":
			fmt.Fprint(w, `{"RegionList": {"ResultsTotal": 0, "ResultsPerPage": 30, "Page": 1, "Listing": []}}`)
		case "/2.0/region/213.json":
			fmt.Fprint(w, `{"Region": {"Id": 213}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer proxySrv.Close()

	cfg := testConfig(t, "http://catalog.invalid/2.0")
	cfg.API.Proxies = []string{proxySrv.URL}

	app, err := NewAPI(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	region, err := app.API.Get(context.Background(), "region/213", nil)
	require.NoError(t, err, "requests go through the proxy that passed the probe")
	id, _ := region.Path("id")
	n, _ := id.AsInt()
	assert.Equal(t, int64(213), n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/2.0/regions.json", "/2.0/region/213.json"}, paths)
}
