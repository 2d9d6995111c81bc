package deposits

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Offer is one normalized deposit product row: a term (e.g. "3M", "1Y"),
// an annual rate in percent, and an optional product name.
type Offer struct {
	Product string  `json:"product,omitempty"`
	Term    string  `json:"term"`
	Rate    float64 `json:"rate"`
	Raw     string  `json:"raw,omitempty"`
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	rateRe       = regexp.MustCompile(`(\d{1,2}(?:\.\d{1,3})?)\s*%`)

	// Term patterns are tried in order against lowercased text. Thai rate
	// pages mix English and Thai term labels (เดือน = month, ปี = year).
	termPatterns = []struct {
		re     *regexp.Regexp
		suffix string
	}{
		{regexp.MustCompile(`(\d{1,2})\s*(?:months|month|mo|m)\b`), "M"},
		{regexp.MustCompile(`(\d{1,2})\s*(?:years|year|yr|y)\b`), "Y"},
		{regexp.MustCompile(`(\d{1,2})\s*เดือน`), "M"},
		{regexp.MustCompile(`(\d{1,2})\s*ปี`), "Y"},
	}

	rateTableKeywords = []string{
		"interest", "rate", "deposit", "time", "fixed",
		"ดอกเบี้ย", "อัตรา", "เงินฝาก", "ประจำ", "เดือน",
	}
)

// NormalizeText collapses runs of whitespace into single spaces
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ExtractRate finds the first percentage figure in text, e.g. "1.50%"
func ExtractRate(text string) (float64, bool) {
	m := rateRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return rate, true
}

// ExtractTerm finds a deposit term in text and normalizes it to "<n>M" or
// "<n>Y". Returns "" when no term is present.
func ExtractTerm(text string) string {
	t := strings.ToLower(text)
	for _, p := range termPatterns {
		if m := p.re.FindStringSubmatch(t); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return fmt.Sprintf("%d%s", n, p.suffix)
		}
	}
	return ""
}

// LooksLikeRateTable reports whether header text suggests a deposit rate
// table rather than an unrelated table on the page.
func LooksLikeRateTable(text string) bool {
	t := strings.ToLower(text)
	for _, k := range rateTableKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// ExtractFromTables scans the document's tables for rows carrying both a
// term and a rate. Tables whose leading cells don't look rate-related are
// skipped. A row of 3+ cells uses its first cell as the product name.
func ExtractFromTables(doc *goquery.Document) []Offer {
	var offers []Offer
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("th, td").EachWithBreak(func(i int, cell *goquery.Selection) bool {
			headers = append(headers, NormalizeText(cell.Text()))
			return i < 9
		})
		if !LooksLikeRateTable(strings.Join(headers, " ")) {
			return
		}

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, NormalizeText(cell.Text()))
			})
			if len(cells) < 2 {
				return
			}
			blob := strings.Join(cells, " ")
			term := ExtractTerm(blob)
			rate, ok := ExtractRate(blob)
			if term == "" || !ok {
				return
			}
			var product string
			if len(cells) >= 3 {
				product = cells[0]
			}
			offers = append(offers, Offer{Product: product, Term: term, Rate: rate, Raw: blob})
		})
	})
	return offers
}

// ExtractGenericBlocks scans non-table content blocks for term/rate pairs,
// catching pages that render rates in lists or cards instead of tables.
func ExtractGenericBlocks(doc *goquery.Document) []Offer {
	var offers []Offer
	doc.Find("section, div, li, article").Each(func(_ int, block *goquery.Selection) {
		text := NormalizeText(block.Text())
		if !strings.Contains(text, "%") {
			return
		}
		rate, ok := ExtractRate(text)
		term := ExtractTerm(text)
		if !ok || term == "" {
			return
		}
		if len(text) > 180 {
			text = text[:180]
		}
		offers = append(offers, Offer{Term: term, Rate: rate, Raw: text})
	})
	return offers
}

// DedupeOffers removes duplicates keyed by (term, rate, product), keeping
// first-seen order.
func DedupeOffers(offers []Offer) []Offer {
	seen := make(map[string]struct{}, len(offers))
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		key := fmt.Sprintf("%s|%g|%s", o.Term, o.Rate, strings.ToLower(o.Product))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}
