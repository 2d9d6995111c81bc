package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"scraper-station/pkg/crawler"
)

// MarkdownWriter renders crawl results as a Markdown document with a
// Mermaid site graph, suitable for sharing or committing alongside docs.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the full crawl report in Markdown format.
func (w *MarkdownWriter) Write(res *crawler.Result, unexposed []string) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Site Map Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start", "`" + res.Start + "`"},
			{"Max depth", strconv.Itoa(res.MaxDepth)},
			{"Same domain only", strconv.FormatBool(res.SameDomainOnly)},
			{"Pages crawled", strconv.Itoa(len(res.Pages))},
			{"Edges", strconv.Itoa(len(res.Edges))},
		},
	})
	md.PlainText("")

	w.writePages(md, res)
	w.writeUnexposed(md, unexposed)

	md.H2("Site Graph")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, MermaidGraph(res))
	md.PlainText("")

	return md.Build()
}

// writePages writes one table per depth, URLs sorted within each depth.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, res *crawler.Result) {
	md.H2("Pages by Depth")
	md.PlainText("")

	depths := make([]int, 0, len(res.ByDepth))
	for d := range res.ByDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		md.PlainText("### Depth " + strconv.Itoa(d))
		md.PlainText("")

		urls := append([]string(nil), res.ByDepth[d]...)
		sort.Strings(urls)
		rows := make([][]string, 0, len(urls))
		for _, u := range urls {
			status, title := "-", "-"
			if info := res.Pages[u]; info != nil {
				if info.Status != 0 {
					status = strconv.Itoa(info.Status)
				}
				if info.Title != "" {
					title = info.Title
				}
			}
			rows = append(rows, []string{"`" + u + "`", status, title})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Status", "Title"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeUnexposed(md *markdown.Markdown, unexposed []string) {
	md.H2("Unexposed Routes")
	md.PlainText("")

	if len(unexposed) == 0 {
		md.PlainText("No sitemap-declared routes were left uncrawled.")
		md.PlainText("")
		return
	}

	listed := unexposed
	if len(listed) > maxUnexposedListed {
		listed = listed[:maxUnexposedListed]
	}
	md.BulletList(listed...)
	md.PlainText("")
}
