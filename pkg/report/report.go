package report

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"scraper-station/pkg/crawler"
)

// maxUnexposedListed caps the unexposed-routes section of a report
const maxUnexposedListed = 200

var nodeIDRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// nodeID derives a Mermaid-safe node identifier from a URL
func nodeID(u string) string {
	id := nodeIDRe.ReplaceAllString(u, "_")
	if len(id) > 60 {
		id = id[:60]
	}
	return id
}

// MermaidGraph renders the crawl's link graph as a Mermaid "graph TD"
// definition. Each node is declared once, on first appearance in edge
// order. A crawl with no edges yields a single isolated start node.
func MermaidGraph(res *crawler.Result) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	printed := make(map[string]struct{})
	declare := func(u string) {
		if _, ok := printed[u]; ok {
			return
		}
		printed[u] = struct{}{}
		fmt.Fprintf(&b, "  %s[%q]\n", nodeID(u), u)
	}
	for _, e := range res.Edges {
		declare(e.From)
		declare(e.To)
		fmt.Fprintf(&b, "  %s --> %s\n", nodeID(e.From), nodeID(e.To))
	}
	if len(res.Edges) == 0 {
		fmt.Fprintf(&b, "  %s[%q]\n", nodeID(res.Start), res.Start)
	}
	return b.String()
}

// TextWriter renders crawl results as a plain-text summary followed by a
// fenced Mermaid diagram.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write outputs the summary: crawl parameters, pages grouped by depth
// (URLs sorted within each depth), unexposed routes, and the site graph.
func (w *TextWriter) Write(res *crawler.Result, unexposed []string) error {
	var b strings.Builder

	b.WriteString("\nSite Map Summary\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Start: %s\n", res.Start)
	fmt.Fprintf(&b, "Max depth: %d\n", res.MaxDepth)
	fmt.Fprintf(&b, "Same domain only: %v\n", res.SameDomainOnly)
	fmt.Fprintf(&b, "Pages crawled: %d\n", len(res.Pages))
	b.WriteString("\n")

	depths := make([]int, 0, len(res.ByDepth))
	for d := range res.ByDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	for _, d := range depths {
		fmt.Fprintf(&b, "Depth %d:\n", d)
		urls := append([]string(nil), res.ByDepth[d]...)
		sort.Strings(urls)
		for _, u := range urls {
			var status, title string
			if info := res.Pages[u]; info != nil {
				if info.Status != 0 {
					status = fmt.Sprintf(" [%d]", info.Status)
				}
				if info.Title != "" {
					title = " — " + info.Title
				}
			}
			fmt.Fprintf(&b, "  - %s%s%s\n", u, status, title)
		}
		b.WriteString(strings.Repeat("-", 40) + "\n")
	}

	if len(unexposed) > 0 {
		b.WriteString("Potential unexposed routes (from sitemap):\n")
		listed := unexposed
		if len(listed) > maxUnexposedListed {
			listed = listed[:maxUnexposedListed]
		}
		for _, u := range listed {
			fmt.Fprintf(&b, "  - %s\n", u)
		}
		b.WriteString(strings.Repeat("-", 40) + "\n")
	}

	b.WriteString("Mermaid diagram:\n")
	b.WriteString("```mermaid\n")
	b.WriteString(MermaidGraph(res))
	b.WriteString("```\n")

	_, err := io.WriteString(w.output, b.String())
	return err
}
