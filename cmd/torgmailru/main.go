package main

import (
	"os"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
)

// CLI defines the command-line interface
type CLI struct {
	Globals

	Get   GetCmd   `cmd:"" help:"Fetch a single resource and print its normalized payload."`
	List  ListCmd  `cmd:"" help:"Stream the items of a paginated listing as JSON lines."`
	Crawl CrawlCmd `cmd:"" help:"Crawl the configured listings into Postgres."`
}

func main() {
	cli := CLI{Globals: Globals{out: os.Stdout}}

	ctx := kong.Parse(&cli,
		kong.Name("torgmailru"),
		kong.Description("Client for the Torg.Mail.Ru content API"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}
