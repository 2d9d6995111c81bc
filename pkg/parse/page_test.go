package parse

import (
	"reflect"
	"testing"
)

func TestParsePage_TitleAndLinks(t *testing.T) {
	body := []byte(`<html><head><title>  Example Page </title></head>
<body>
<a href="/a">A</a>
<a href="http://b.com/b">B</a>
<a href="">empty</a>
<a>no href</a>
<a href="/a">A again</a>
</body></html>`)

	title, links := ParsePage(body, "text/html; charset=utf-8")

	if title != "Example Page" {
		t.Errorf("title = %q, want %q", title, "Example Page")
	}
	want := []string{"/a", "http://b.com/b", "/a"}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %v, want %v (document order, duplicates kept)", links, want)
	}
}

func TestParsePage_MetaRefresh(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "Lowercase",
			body: `<html><head><meta http-equiv="refresh" content="0; url=/redirected"></head></html>`,
			want: []string{"/redirected"},
		},
		{
			name: "MixedCaseAndSpacing",
			body: `<html><head><meta http-equiv="Refresh" content="5; URL=http://x.com/next ; extra"></head></html>`,
			want: []string{"http://x.com/next"},
		},
		{
			name: "NoURL",
			body: `<html><head><meta http-equiv="refresh" content="5"></head></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, links := ParsePage([]byte(tt.body), "text/html")
			if !reflect.DeepEqual(links, tt.want) {
				t.Errorf("links = %v, want %v", links, tt.want)
			}
		})
	}
}

func TestParsePage_AnchorsBeforeMetaRefresh(t *testing.T) {
	body := []byte(`<html><head><meta http-equiv="refresh" content="0;url=/meta"></head>
<body><a href="/anchor">x</a></body></html>`)
	_, links := ParsePage(body, "text/html")
	want := []string{"/anchor", "/meta"}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %v, want %v (anchors first, meta targets appended)", links, want)
	}
}

func TestParsePage_ContentTypeGate(t *testing.T) {
	htmlBody := []byte(`<html><head><title>T</title></head><body><a href="/x">x</a></body></html>`)

	tests := []struct {
		name        string
		body        []byte
		contentType string
		wantParsed  bool
	}{
		{"HTMLContentType", htmlBody, "text/html", true},
		{"MislabeledButLooksHTML", htmlBody, "application/octet-stream", true},
		{"LeadingWhitespaceHTML", append([]byte("\n\t "), htmlBody...), "text/plain", true},
		{"JSONBody", []byte(`{"not": "html"}`), "application/json", false},
		{"EmptyBody", nil, "text/plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, links := ParsePage(tt.body, tt.contentType)
			parsed := title != "" || len(links) > 0
			if parsed != tt.wantParsed {
				t.Errorf("parsed = %v, want %v (title=%q links=%v)", parsed, tt.wantParsed, title, links)
			}
		})
	}
}

func TestParsePage_NoTitle(t *testing.T) {
	title, _ := ParsePage([]byte(`<html><body>hello</body></html>`), "text/html")
	if title != "" {
		t.Errorf("title = %q, want empty", title)
	}
}
