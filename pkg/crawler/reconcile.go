package crawler

import "scraper-station/pkg/parse"

// UnexposedRoutes returns the declared routes (from sitemaps) that the
// crawl never reached. When sameDomainOnly is set, routes on other hosts
// are excluded. Order follows the declared list.
func UnexposedRoutes(visited map[string]*Page, declared []string, startHost string, sameDomainOnly bool) []string {
	var out []string
	for _, route := range declared {
		if _, ok := visited[route]; ok {
			continue
		}
		if sameDomainOnly && parse.Host(route) != startHost {
			continue
		}
		out = append(out, route)
	}
	return out
}

// Unexposed is a convenience wrapper computing unexposed routes for a
// completed crawl result.
func (r *Result) Unexposed(declared []string) []string {
	return UnexposedRoutes(r.Pages, declared, parse.Host(r.Start), r.SameDomainOnly)
}
