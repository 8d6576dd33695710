package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"torgmailru/client/internal/client"
	"torgmailru/client/internal/config"
	"torgmailru/client/internal/container"
	"torgmailru/client/internal/normalize"

	log "github.com/sirupsen/logrus"
)

// Globals are the flags shared by every command
type Globals struct {
	Config string `help:"Directory containing config.yaml." short:"c" type:"path" default:"."`
	Token  string `help:"API access token, overrides api.access_token." env:"TORGMAILRU_TOKEN"`
	Debug  bool   `help:"Enable debug logging." short:"d"`

	out io.Writer `kong:"-"`
}

func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Token != "" {
		cfg.API.AccessToken = g.Token
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Log.Level, err)
	}
	if g.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	return cfg, nil
}

func toParams(raw map[string]string) client.Params {
	params := make(client.Params, len(raw))
	for k, v := range raw {
		params[k] = v
	}
	return params
}

func writeNode(w io.Writer, node normalize.Node) error {
	data, err := node.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

type GetCmd struct {
	Resource string            `arg:"" help:"Resource path, e.g. model/12345 or region/213."`
	Params   map[string]string `help:"Query parameter as key=value, repeatable." short:"p"`
}

func (c *GetCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	app, err := container.NewAPI(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	payload, err := app.API.Get(ctx, c.Resource, toParams(c.Params))
	if err != nil {
		return err
	}
	return writeNode(g.out, payload)
}

type ListCmd struct {
	Resource string            `arg:"" help:"Listing resource path, e.g. category/91491/offers."`
	Params   map[string]string `help:"Query parameter as key=value, repeatable." short:"p"`
	Limit    int               `help:"Stop after this many items, 0 for all." short:"n" default:"0"`
}

func (c *ListCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	app, err := container.NewAPI(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	l := app.API.Listing(c.Resource, toParams(c.Params))
	count := 0
	for item, err := range l.All(ctx) {
		if err != nil {
			return err
		}
		if err := writeNode(g.out, item); err != nil {
			return err
		}
		count++
		if c.Limit > 0 && count >= c.Limit {
			break
		}
	}

	log.Debugf("Listed %d items of %s in %d requests", count, c.Resource, l.Fetches())
	return nil
}

type CrawlCmd struct {
	Resources []string `arg:"" optional:"" help:"Listing resources to crawl instead of crawl.resources."`
	Workers   int      `help:"Worker count, overrides crawl.max_workers." short:"w"`
}

func (c *CrawlCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if len(c.Resources) > 0 {
		cfg.Crawl.Resources = make([]config.ResourceConfig, 0, len(c.Resources))
		for _, r := range c.Resources {
			cfg.Crawl.Resources = append(cfg.Crawl.Resources, config.ResourceConfig{Path: r})
		}
	}
	if c.Workers > 0 {
		cfg.Crawl.MaxWorkers = c.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	log.Infof("🚀 Crawling %d listings with %d workers", len(cfg.Crawl.Resources), cfg.Crawl.MaxWorkers)
	if err := app.Run(ctx); err != nil {
		return err
	}

	log.Info("Crawler stopped")
	return nil
}
