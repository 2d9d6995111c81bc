// Package sitemapper implements the site_mapper bot: a bounded BFS crawl
// from a start URL producing a depth-grouped URL listing, a Mermaid site
// graph, and the sitemap-declared routes the crawl never reached.
package sitemapper

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"scraper-station/pkg/bots"
	"scraper-station/pkg/config"
	"scraper-station/pkg/crawler"
	"scraper-station/pkg/fetch"
	"scraper-station/pkg/parse"
	"scraper-station/pkg/report"
	"scraper-station/pkg/sitemap"
)

// Result is the bot's run outcome
type Result struct {
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	Start           string `json:"start,omitempty"`
	Pages           int    `json:"pages"`
	Edges           int    `json:"edges"`
	UnexposedRoutes int    `json:"unexposed_routes"`
}

// Bot crawls a site and writes a report to its output writer
type Bot struct {
	fetcher  fetch.Getter
	cfg      config.MapperConfig
	output   io.Writer
	markdown bool
	log      *logrus.Entry
}

// New creates the site_mapper bot. When markdown is set the report is
// rendered as a Markdown document instead of the plain-text summary.
func New(fetcher fetch.Getter, cfg config.MapperConfig, output io.Writer, markdown bool, logger *logrus.Entry) *Bot {
	return &Bot{
		fetcher:  fetcher,
		cfg:      cfg,
		output:   output,
		markdown: markdown,
		log:      logger.WithField("bot", "site_mapper"),
	}
}

// Manifest implements the bots.Bot interface
func (b *Bot) Manifest() bots.Manifest {
	return bots.Manifest{
		Name:        "site_mapper",
		Description: "Crawls a site map from a start URL and prints URL list + Mermaid diagram",
		Author:      "Scraper Kit",
		Version:     "0.1.0",
		Operations:  []string{"run"},
	}
}

// Run implements the bots.Bot interface. Positional parameters:
// start URL, max depth (optional), same-domain-only flag (optional).
// A missing start URL yields an error result without any network activity.
func (b *Bot) Run(ctx context.Context, params []string) (any, error) {
	var startURL string
	if len(params) > 0 {
		startURL = strings.TrimSpace(params[0])
	}
	if startURL == "" {
		b.log.Warn("Usage: station run site_mapper <start_url> [max_depth] [same_domain_only]")
		return &Result{Status: "error", Error: "missing_start_url"}, nil
	}

	maxDepth := b.cfg.MaxDepth
	if len(params) > 1 {
		if d, err := strconv.Atoi(params[1]); err == nil {
			maxDepth = d
		} else {
			b.log.Warnf("Ignoring non-integer max_depth %q", params[1])
		}
	}
	sameDomain := b.cfg.SameDomain()
	if len(params) > 2 {
		if v, err := strconv.ParseBool(params[2]); err == nil {
			sameDomain = v
		} else {
			b.log.Warnf("Ignoring non-boolean same_domain_only %q", params[2])
		}
	}

	start := parse.Canonicalize(startURL)

	discoverer := sitemap.NewDiscoverer(b.fetcher, b.log)
	sitemapURLs := discoverer.DiscoverSitemapURLs(ctx, start)
	declaredRoutes := discoverer.FetchRoutes(ctx, sitemapURLs)

	engine := crawler.NewEngine(b.fetcher, crawler.Options{
		MaxDepth:       maxDepth,
		MaxPages:       b.cfg.MaxPages,
		SameDomainOnly: sameDomain,
		Parallelism:    b.cfg.Parallelism,
	}, b.log)
	res, err := engine.Crawl(ctx, start)
	if err != nil {
		return &Result{Status: "error", Error: "missing_start_url"}, nil
	}

	unexposed := res.Unexposed(declaredRoutes)

	if b.markdown {
		err = report.NewMarkdownWriter(b.output).Write(res, unexposed)
	} else {
		err = report.NewTextWriter(b.output).Write(res, unexposed)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:          "success",
		Start:           res.Start,
		Pages:           len(res.Pages),
		Edges:           len(res.Edges),
		UnexposedRoutes: len(unexposed),
	}, nil
}
