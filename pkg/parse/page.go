package parse

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matches the url= target inside a meta refresh content attribute, up to the next ';'
var metaRefreshURLRe = regexp.MustCompile(`(?i)url=([^;]+)`)

// ParsePage extracts the page title and the raw out-link targets from an
// HTML body. The body is only parsed when the Content-Type advertises HTML
// or the leading non-whitespace byte is '<' (some servers mislabel HTML).
// Out-links are every non-empty anchor href plus the targets of
// <meta http-equiv="refresh"> redirects, in document order and without
// deduplication (the visited set deduplicates later).
func ParsePage(body []byte, contentType string) (title string, links []string) {
	if !looksLikeHTML(body, contentType) {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})

	doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
		equiv, _ := s.Attr("http-equiv")
		if !strings.Contains(strings.ToLower(equiv), "refresh") {
			return
		}
		content, _ := s.Attr("content")
		if m := metaRefreshURLRe.FindStringSubmatch(content); m != nil {
			links = append(links, strings.TrimSpace(m[1]))
		}
	})

	return title, links
}

func looksLikeHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}
