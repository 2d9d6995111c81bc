// Package hackernews implements the hackernews_top bot: it scrapes the
// Hacker News front page and snapshots the top stories as JSON.
package hackernews

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"scraper-station/pkg/bots"
	"scraper-station/pkg/fetch"
	"scraper-station/pkg/storage"
	"scraper-station/pkg/utils"
)

const defaultBaseURL = "https://news.ycombinator.com"

// Story is one front-page entry
type Story struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	ScrapedAt string `json:"scraped_at"`
}

// Snapshot is the JSON document written per run
type Snapshot struct {
	Source    string  `json:"source"`
	ScrapedAt string  `json:"scraped_at"`
	Stories   []Story `json:"stories"`
}

// Result is the bot's run outcome
type Result struct {
	Status       string `json:"status"`
	StoriesFound int    `json:"stories_found"`
	OutputFile   string `json:"output_file"`
}

// Bot scrapes Hacker News top stories
type Bot struct {
	fetcher   fetch.Getter
	snapshots *storage.SnapshotStore
	baseURL   string
	log       *logrus.Entry
}

// New creates the hackernews_top bot
func New(fetcher fetch.Getter, snapshots *storage.SnapshotStore, logger *logrus.Entry) *Bot {
	return &Bot{
		fetcher:   fetcher,
		snapshots: snapshots,
		baseURL:   defaultBaseURL,
		log:       logger.WithField("bot", "hackernews_top"),
	}
}

// WithBaseURL overrides the scraped site root
func (b *Bot) WithBaseURL(baseURL string) *Bot {
	b.baseURL = strings.TrimRight(baseURL, "/")
	return b
}

// Manifest implements the bots.Bot interface
func (b *Bot) Manifest() bots.Manifest {
	return bots.Manifest{
		Name:        "hackernews_top",
		Description: "Fetches the top stories from Hacker News",
		Author:      "Scraping Station",
		Version:     "1.0.0",
		Operations:  []string{"run"},
	}
}

// Run implements the bots.Bot interface. The single optional parameter is
// the number of stories to fetch (default 10).
func (b *Bot) Run(ctx context.Context, params []string) (any, error) {
	limit := 10
	if len(params) > 0 {
		if n, err := strconv.Atoi(params[0]); err == nil && n > 0 {
			limit = n
		} else {
			b.log.Warnf("Ignoring invalid limit %q", params[0])
		}
	}

	res, err := b.fetcher.Get(ctx, b.baseURL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: front page returned status %d", utils.ErrTransport, res.StatusCode)
	}

	stories, err := b.parseStories(res.Body, limit)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		Source:    "Hacker News",
		ScrapedAt: time.Now().UTC().Format(time.RFC3339),
		Stories:   stories,
	}
	path, err := b.snapshots.Write("hackernews", "top_stories", snapshot)
	if err != nil {
		return nil, err
	}

	b.log.Infof("Successfully scraped %d stories. Saved to %s", len(stories), path)
	return &Result{Status: "success", StoriesFound: len(stories), OutputFile: path}, nil
}

// parseStories extracts up to limit stories from the front page HTML.
// Each story row (tr.athing) is followed by a subtext row carrying the
// score and comment count.
func (b *Bot) parseStories(body []byte, limit int) ([]Story, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse front page: %w", utils.ErrParsing, err)
	}

	stories := make([]Story, 0, limit)
	doc.Find("tr.athing").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(stories) >= limit {
			return false
		}
		titleLink := row.Find("span.titleline > a").First()
		if titleLink.Length() == 0 {
			return true
		}
		href, _ := titleLink.Attr("href")

		story := Story{
			Title:     titleLink.Text(),
			URL:       href,
			ScrapedAt: time.Now().UTC().Format(time.RFC3339),
		}

		subtext := row.Next()
		story.Score = leadingInt(subtext.Find("span.score").First().Text())
		subtext.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(a.Text()), "comment") {
				story.Comments = leadingInt(a.Text())
				return false
			}
			return true
		})

		stories = append(stories, story)
		return true
	})
	return stories, nil
}

// leadingInt parses the integer prefix of strings like "123 points"
func leadingInt(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
