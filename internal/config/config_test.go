package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torgmailru/client/internal/apierrors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://content.api.torg.mail.ru/2.0", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.API.MaxRequestsPerSecond)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 4, cfg.Crawl.MaxWorkers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
api:
  access_token: from-file
  timeout: 5s
  proxies:
    - http://proxy-1:3128
cache:
  enabled: true
  ttl: 1m
crawl:
  max_items: 50
  resources:
    - path: regions
    - path: category/1/offers
      params:
        geo_id: "213"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("TORGMAILRU_API_MAX_REQUESTS_PER_SECOND", "12")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.API.AccessToken)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 12, cfg.API.MaxRequestsPerSecond)
	assert.Equal(t, []string{"http://proxy-1:3128"}, cfg.API.Proxies)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Crawl.MaxItems)
	require.Len(t, cfg.Crawl.Resources, 2)
	assert.Equal(t, "regions", cfg.Crawl.Resources[0].Path)
	assert.Equal(t, map[string]string{"geo_id": "213"}, cfg.Crawl.Resources[1].Params)
}

func TestLoad_EnvAccessToken(t *testing.T) {
	t.Setenv("TORGMAILRU_API_ACCESS_TOKEN", "secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.API.AccessToken)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{API: APIConfig{BaseURL: "http://example.test"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrNoAccessToken)
	assert.True(t, apierrors.IsConfig(err))

	cfg.API.AccessToken = "token"
	cfg.API.BaseURL = ""
	assert.True(t, apierrors.IsConfig(cfg.Validate()))
}
