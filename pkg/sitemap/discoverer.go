package sitemap

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"scraper-station/pkg/fetch"
	"scraper-station/pkg/parse"
)

// Discoverer mines robots.txt for sitemap directives and flattens sitemap
// files (including nested index sitemaps) into a list of declared routes.
// Every failure is tolerated: an unreachable robots.txt or sitemap simply
// contributes nothing.
type Discoverer struct {
	fetcher fetch.Getter
	log     *logrus.Entry
}

// NewDiscoverer creates a Discoverer
func NewDiscoverer(fetcher fetch.Getter, logger *logrus.Entry) *Discoverer {
	return &Discoverer{
		fetcher: fetcher,
		log:     logger.WithField("component", "sitemap_discoverer"),
	}
}

// DiscoverSitemapURLs fetches {scheme}://{host}/robots.txt for the start
// URL's host and collects declared sitemap URLs. When robots.txt is
// unreachable, returns an error status, or declares no sitemaps, the
// conventional {scheme}://{host}/sitemap.xml is used as a fallback.
// Results are canonicalized and deduplicated in first-seen order.
func (d *Discoverer) DiscoverSitemapURLs(ctx context.Context, startURL string) []string {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		d.log.Debugf("Cannot derive host from start URL %q", startURL)
		return nil
	}

	var found []string

	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	robotsLog := d.log.WithField("robots_url", robotsURL)
	res, err := d.fetcher.Get(ctx, robotsURL)
	switch {
	case err != nil:
		robotsLog.Debugf("robots.txt fetch failed: %v", err)
	case res.StatusCode >= 400:
		robotsLog.Debugf("robots.txt returned status %d", res.StatusCode)
	default:
		if data, perr := robotstxt.FromBytes(res.Body); perr == nil {
			if len(data.Sitemaps) > 0 {
				robotsLog.Infof("Found %d sitemap directive(s)", len(data.Sitemaps))
			}
			found = append(found, data.Sitemaps...)
		} else {
			robotsLog.Debugf("robots.txt parse failed: %v", perr)
		}
	}

	if len(found) == 0 {
		found = append(found, u.Scheme+"://"+u.Host+"/sitemap.xml")
	}

	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, s := range found {
		c := parse.Canonicalize(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// routeState tracks declared routes and visited sitemaps across the
// recursive expansion of index sitemaps.
type routeState struct {
	routes     []string
	seenRoutes map[string]struct{}
	// Sitemap URLs already fetched. Guards against index sitemaps that
	// reference themselves or each other in a cycle.
	visitedSitemaps map[string]struct{}
}

func (st *routeState) addRoute(route string) {
	if route == "" {
		return
	}
	if _, ok := st.seenRoutes[route]; ok {
		return
	}
	st.seenRoutes[route] = struct{}{}
	st.routes = append(st.routes, route)
}

// FetchRoutes resolves each sitemap URL into its declared routes. Index
// sitemaps are expanded depth-first: each nested <loc> is recorded as a
// declared route and then resolved as a further sitemap. Sitemaps that fail
// to fetch (or return status >= 400) are skipped. Output is canonicalized
// and deduplicated in first-seen order.
func (d *Discoverer) FetchRoutes(ctx context.Context, sitemapURLs []string) []string {
	st := &routeState{
		seenRoutes:      make(map[string]struct{}),
		visitedSitemaps: make(map[string]struct{}),
	}
	for _, smURL := range sitemapURLs {
		d.fetchRoutesInto(ctx, smURL, st)
	}
	return st.routes
}

func (d *Discoverer) fetchRoutesInto(ctx context.Context, smURL string, st *routeState) {
	if _, ok := st.visitedSitemaps[smURL]; ok {
		d.log.WithField("sitemap_url", smURL).Debug("Sitemap already resolved, skipping (cycle guard)")
		return
	}
	st.visitedSitemaps[smURL] = struct{}{}

	smLog := d.log.WithField("sitemap_url", smURL)
	res, err := d.fetcher.Get(ctx, smURL)
	if err != nil {
		smLog.Debugf("Sitemap fetch failed: %v", err)
		return
	}
	if res.StatusCode >= 400 {
		smLog.Debugf("Sitemap returned status %d, skipping", res.StatusCode)
		return
	}

	// Try parsing as a sitemap index first, then as a URL set
	var index parse.XMLSitemapIndex
	if xml.Unmarshal(res.Body, &index) == nil && len(index.Sitemaps) > 0 {
		smLog.Debugf("Parsed as sitemap index with %d references", len(index.Sitemaps))
		children := make([]string, 0, len(index.Sitemaps))
		for _, entry := range index.Sitemaps {
			child := parse.Canonicalize(strings.TrimSpace(entry.Loc))
			if child == "" {
				continue
			}
			// A nested <loc> is a declared route in its own right
			st.addRoute(child)
			children = append(children, child)
		}
		for _, child := range children {
			d.fetchRoutesInto(ctx, child, st)
		}
		return
	}

	var urlSet parse.XMLURLSet
	if err := xml.Unmarshal(res.Body, &urlSet); err != nil {
		smLog.Debugf("Sitemap is neither an index nor a URL set: %v", err)
		return
	}
	smLog.Debugf("Parsed as URL set with %d entries", len(urlSet.URLs))
	for _, entry := range urlSet.URLs {
		st.addRoute(parse.Canonicalize(strings.TrimSpace(entry.Loc)))
	}
}
