package report

import (
	"bytes"
	"strings"
	"testing"

	"scraper-station/pkg/crawler"
)

func sampleResult() *crawler.Result {
	return &crawler.Result{
		Start:          "http://example.com/",
		MaxDepth:       2,
		SameDomainOnly: true,
		Pages: map[string]*crawler.Page{
			"http://example.com/":      {URL: "http://example.com/", Title: "Home", Status: 200, Depth: 0},
			"http://example.com/about": {URL: "http://example.com/about", Title: "About Us", Status: 200, Depth: 1},
			"http://example.com/down":  {URL: "http://example.com/down", Depth: 1},
		},
		ByDepth: map[int][]string{
			0: {"http://example.com/"},
			1: {"http://example.com/down", "http://example.com/about"},
		},
		Edges: []crawler.Edge{
			{From: "http://example.com/", To: "http://example.com/about"},
			{From: "http://example.com/", To: "http://example.com/down"},
		},
	}
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"url characters replaced", "http://example.com/a-b", "http___example_com_a_b"},
		{"alphanumerics kept", "abc123", "abc123"},
		{
			"truncated to 60",
			"http://example.com/" + strings.Repeat("x", 100),
			("http___example_com_" + strings.Repeat("x", 100))[:60],
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeID(tt.in); got != tt.want {
				t.Errorf("nodeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMermaidGraph(t *testing.T) {
	got := MermaidGraph(sampleResult())

	if !strings.HasPrefix(got, "graph TD\n") {
		t.Errorf("graph does not start with header: %q", got)
	}
	for _, want := range []string{
		`http___example_com_["http://example.com/"]`,
		`http___example_com_about["http://example.com/about"]`,
		"http___example_com_ --> http___example_com_about",
		"http___example_com_ --> http___example_com_down",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("graph missing %q:\n%s", want, got)
		}
	}
	// Each node declared exactly once even when shared by several edges
	if n := strings.Count(got, `http___example_com_["http://example.com/"]`); n != 1 {
		t.Errorf("start node declared %d times, want 1", n)
	}
}

func TestMermaidGraph_NoEdges(t *testing.T) {
	res := &crawler.Result{
		Start: "http://example.com/",
		Pages: map[string]*crawler.Page{
			"http://example.com/": {URL: "http://example.com/", Depth: 0},
		},
	}
	got := MermaidGraph(res)
	want := "graph TD\n  http___example_com_[\"http://example.com/\"]\n"
	if got != want {
		t.Errorf("MermaidGraph() = %q, want isolated start node %q", got, want)
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(sampleResult(), []string{"http://example.com/secret"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Site Map Summary",
		"Start: http://example.com/",
		"Max depth: 2",
		"Same domain only: true",
		"Pages crawled: 3",
		"Depth 0:",
		"  - http://example.com/ [200] — Home",
		"Depth 1:",
		"Potential unexposed routes (from sitemap):",
		"  - http://example.com/secret",
		"```mermaid",
		"graph TD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// Failed pages render with neither status nor title
	if !strings.Contains(out, "  - http://example.com/down\n") {
		t.Errorf("failed page not rendered bare:\n%s", out)
	}
	// URLs sorted within a depth group
	if strings.Index(out, "http://example.com/about") > strings.Index(out, "http://example.com/down") {
		t.Errorf("depth group not sorted:\n%s", out)
	}
}

func TestTextWriter_UnexposedCap(t *testing.T) {
	unexposed := make([]string, maxUnexposedListed+50)
	for i := range unexposed {
		unexposed[i] = "http://example.com/u"
	}

	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(sampleResult(), unexposed); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n := strings.Count(buf.String(), "  - http://example.com/u\n"); n != maxUnexposedListed {
		t.Errorf("unexposed routes listed = %d, want cap %d", n, maxUnexposedListed)
	}
}

func TestTextWriter_NoUnexposedSection(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(sampleResult(), nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(buf.String(), "unexposed") {
		t.Errorf("unexposed section rendered with no routes:\n%s", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownWriter(&buf).Write(sampleResult(), []string{"http://example.com/secret"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Site Map Report",
		"| Start |",
		"## Pages by Depth",
		"### Depth 0",
		"### Depth 1",
		"## Unexposed Routes",
		"- http://example.com/secret",
		"## Site Graph",
		"```mermaid",
		"graph TD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q:\n%s", want, out)
		}
	}
}
