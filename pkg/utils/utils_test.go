package utils

import "testing"

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"Valid http", "http://example.com/article", false},
		{"Valid https", "https://example.com/article-42.html", false},
		{"Empty", "", true},
		{"Relative", "/article-42.html", true},
		{"Wrong scheme", "ftp://example.com/file", true},
		{"Missing host", "http:///article", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}

			if IsValidURL(tt.url) != !tt.wantErr {
				t.Errorf("IsValidURL(%q) = %v, want %v", tt.url, IsValidURL(tt.url), !tt.wantErr)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Collapses spaces", "a  b   c", "a b c"},
		{"Trims ends", "  hello world \n", "hello world"},
		{"Tabs and newlines", "a\tb\nc", "a b c"},
		{"Empty", "", ""},
		{"Only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.input); got != tt.expected {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"Short enough", "hello", 10, "hello"},
		{"Exact length", "hello", 5, "hello"},
		{"Truncated", "hello world", 5, "hello..."},
		{"Multibyte safe", "héllo wörld", 5, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.max); got != tt.expected {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
