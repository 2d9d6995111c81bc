package crawler

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"scraper-station/pkg/fetch"
	"scraper-station/pkg/parse"
	"scraper-station/pkg/utils"
)

// DefaultMaxPages is the hard safety cap on visited pages per crawl
const DefaultMaxPages = 200

// Options configures a single crawl
type Options struct {
	MaxDepth       int  // Links on pages at this depth are not expanded
	MaxPages       int  // Hard cap on |visited|; 0 means DefaultMaxPages
	SameDomainOnly bool // Restrict traversal to the start URL's host
	Parallelism    int  // Concurrent fetches within a batch; <= 1 is sequential
}

// Page is the record of one crawled canonical URL. Created once when the
// URL is first dequeued and never mutated afterwards. Status 0 and an
// empty Title mean the fetch failed.
type Page struct {
	URL            string
	Title          string
	Status         int
	Depth          int
	DiscoveredFrom []string
	OutLinks       []string
}

// Edge is a directed link discovery: From first discovered To
type Edge struct {
	From string
	To   string
}

// Result holds the complete output of one crawl
type Result struct {
	Start          string
	MaxDepth       int
	SameDomainOnly bool
	Pages          map[string]*Page // canonical URL -> record (doubles as the visited set)
	ByDepth        map[int][]string // depth -> URLs in discovery order
	Edges          []Edge
}

// Engine runs bounded breadth-first traversals over a site's link graph.
// The frontier is a strict FIFO queue and deduplication happens at dequeue
// time, so the parent recorded for a page is always its shallowest-depth
// discoverer (ties broken by document order on the first-enqueued page).
type Engine struct {
	fetcher fetch.Getter
	opts    Options
	log     *logrus.Entry
}

// NewEngine creates a crawl engine
func NewEngine(fetcher fetch.Getter, opts Options, logger *logrus.Entry) *Engine {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Engine{
		fetcher: fetcher,
		opts:    opts,
		log:     logger.WithField("component", "crawl_engine"),
	}
}

// frontierEntry is a queued unit of traversal work. The same URL may be
// enqueued multiple times; duplicates are discarded when dequeued.
type frontierEntry struct {
	url    string
	depth  int
	parent string // empty for the start URL
}

// Crawl traverses from startURL breadth-first up to the configured depth,
// page cap and domain filter. Fetch and parse failures degrade to pages
// with no status/title/links; the only error is a missing start URL.
func (e *Engine) Crawl(ctx context.Context, startURL string) (*Result, error) {
	start := parse.Canonicalize(startURL)
	if start == "" {
		return nil, utils.ErrMissingStartURL
	}
	startHost := parse.Host(start)

	res := &Result{
		Start:          start,
		MaxDepth:       e.opts.MaxDepth,
		SameDomainOnly: e.opts.SameDomainOnly,
		Pages:          make(map[string]*Page),
		ByDepth:        make(map[int][]string),
	}

	crawlLog := e.log.WithField("start", start)
	crawlLog.Infof("Starting crawl (max_depth=%d, max_pages=%d, same_domain_only=%v)",
		e.opts.MaxDepth, e.opts.MaxPages, e.opts.SameDomainOnly)

	frontier := []frontierEntry{{url: start, depth: 0}}
	sem := semaphore.NewWeighted(int64(e.opts.Parallelism))

	for len(frontier) > 0 && len(res.Pages) < e.opts.MaxPages {
		// Admission is strictly sequential and FIFO: the visited
		// check-and-insert must be atomic with respect to fetch scheduling
		// so at most one record exists per canonical URL, and admission
		// order decides which parent wins an edge.
		var batch []frontierEntry
		for len(frontier) > 0 && len(res.Pages) < e.opts.MaxPages {
			entry := frontier[0]
			frontier = frontier[1:]
			entry.url = parse.Canonicalize(entry.url)
			if _, visited := res.Pages[entry.url]; visited {
				continue
			}
			if e.opts.SameDomainOnly && parse.Host(entry.url) != startHost {
				continue
			}
			// Reserve the slot before fetching
			res.Pages[entry.url] = nil
			batch = append(batch, entry)
		}
		if len(batch) == 0 {
			continue
		}

		// Only the network round-trips run concurrently
		fetched := make([]*fetch.Result, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int, pageURL string) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				defer sem.Release(1)
				r, err := e.fetcher.Get(ctx, pageURL)
				if err != nil {
					crawlLog.WithField("url", pageURL).Debugf("Fetch failed, recording empty page: %v", err)
					return
				}
				fetched[i] = r
			}(i, batch[i].url)
		}
		wg.Wait()

		// Record pages and expand out-links in admission order
		for i, entry := range batch {
			page := &Page{URL: entry.url, Depth: entry.depth}
			if entry.parent != "" {
				page.DiscoveredFrom = []string{entry.parent}
				res.Edges = append(res.Edges, Edge{From: entry.parent, To: entry.url})
			}
			if r := fetched[i]; r != nil {
				page.Status = r.StatusCode
				page.Title, page.OutLinks = parse.ParsePage(r.Body, r.ContentType)
			}
			res.Pages[entry.url] = page
			res.ByDepth[entry.depth] = append(res.ByDepth[entry.depth], entry.url)

			if entry.depth >= e.opts.MaxDepth {
				continue
			}
			base, err := url.Parse(entry.url)
			if err != nil {
				continue
			}
			for _, raw := range page.OutLinks {
				ref, err := url.Parse(strings.TrimSpace(raw))
				if err != nil {
					continue
				}
				child := parse.Canonicalize(base.ResolveReference(ref).String())
				if !parse.IsHTTP(child) {
					continue
				}
				if e.opts.SameDomainOnly && parse.Host(child) != startHost {
					continue
				}
				// Enqueued even when already visited; the dequeue-time
				// check discards duplicates.
				frontier = append(frontier, frontierEntry{url: child, depth: entry.depth + 1, parent: entry.url})
			}
		}
	}

	crawlLog.Infof("Crawl finished: %d pages, %d edges", len(res.Pages), len(res.Edges))
	return res, nil
}
