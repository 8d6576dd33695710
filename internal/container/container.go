package container

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"torgmailru/client/internal/api"
	"torgmailru/client/internal/client"
	"torgmailru/client/internal/config"
	"torgmailru/client/internal/proxy"
	"torgmailru/client/internal/queue"
	"torgmailru/client/internal/repository"
	"torgmailru/client/internal/service"
	"torgmailru/client/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// resource requested through each proxy before it is trusted; the same
// listing api.Regions reads
const proxyProbeResource = "regions"

func proxyProbeURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + proxyProbeResource + ".json"
}

// Container holds all initialized components
type Container struct {
	Config    *config.Config
	Transport client.Transport
	API       *api.API

	Repository  repository.ItemRepository
	Queue       queue.Queue
	Checkpoints state.Checkpoints
	Service     *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// NewAPI builds the API client only. Redis is connected only when the
// response cache is enabled.
func NewAPI(ctx context.Context, cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
	}

	var proxySupplier proxy.ProxySupplier
	if len(cfg.API.Proxies) > 0 {
		proxySupplier = proxy.NewProxySupplier(ctx, cfg.API.Proxies, proxy.HTTPProbe(proxyProbeURL(cfg.API.BaseURL), cfg.API.AccessToken))
	} else {
		proxySupplier = proxy.NewStaticSupplier(nil)
	}

	transport, err := client.NewTransport(cfg.API, proxySupplier)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		rdb, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		container.redis = rdb
		transport = client.NewCachingTransport(transport, rdb, cfg.Cache.TTL, cfg.Cache.KeyPrefix)
		log.Infof("✅ Response cache enabled (ttl %s)", cfg.Cache.TTL)
	}

	container.Transport = transport
	container.API = api.New(transport)

	return container, nil
}

// New creates a container with the crawler and its storage initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container, err := NewAPI(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if container.redis == nil {
		rdb, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		container.redis = rdb
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	container.db = db

	container.Repository = repository.NewItemRepository(db)

	redisQueue, err := queue.NewRedisQueue(ctx, container.redis, queue.DefaultStreamPrefix, cfg.Crawl.ConsumerGroup)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	container.Checkpoints = state.NewRedisCheckpoints(container.redis)

	container.Service = service.NewService(
		container.API,
		container.Repository,
		redisQueue,
		container.Checkpoints,
		service.OptionsFromConfig(cfg.Crawl),
	)

	return container, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")
	return rdb, nil
}

// Run enqueues the configured resources and processes tasks until ctx ends
func (c *Container) Run(ctx context.Context) error {
	if c.Service == nil {
		return fmt.Errorf("crawler is not initialized")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Service.EnqueueResources(ctx, c.Config.Crawl.Resources)
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Crawl.MaxWorkers)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return err
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
