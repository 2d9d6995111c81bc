package parse

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"Plain", "http://a.com/x", "http://a.com/x"},
		{"FragmentStripped", "http://a.com/x#frag", "http://a.com/x"},
		{"FragmentOnly", "http://a.com/x#", "http://a.com/x"},
		{"SchemeRelative", "//a.com/x", "https://a.com/x"},
		{"SchemeRelativeWithFragment", "//a.com/x#top", "https://a.com/x"},
		{"Whitespace", "  http://a.com/x \n", "http://a.com/x"},
		{"RelativePathUnchanged", "/about", "/about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.input); got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"http://a.com/x#frag",
		"//a.com/x",
		"  https://a.com/ ",
		"mailto:someone@example.com",
		"not a url at all",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCanonicalize_FragmentEquivalence(t *testing.T) {
	if Canonicalize("http://a.com/x#frag") != Canonicalize("http://a.com/x") {
		t.Error("fragment-only variants should map to the same key")
	}
	if Canonicalize("//a.com/x") != Canonicalize("https://a.com/x") {
		t.Error("scheme-relative and https variants should map to the same key")
	}
}

func TestIsHTTP(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"http://a.com", true},
		{"https://a.com/path", true},
		{"HTTP://a.com", true},
		{"mailto:x@y.com", false},
		{"javascript:void(0)", false},
		{"tel:+123456", false},
		{"ftp://a.com", false},
		{"/relative/path", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsHTTP(tt.input); got != tt.expected {
			t.Errorf("IsHTTP(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"http://a.com/x", "a.com"},
		{"https://a.com:8443/x", "a.com:8443"},
		{"/relative", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Host(tt.input); got != tt.expected {
			t.Errorf("Host(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
