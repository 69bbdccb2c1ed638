package urlnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legacy without scheme", "www.kwai.com/@johndoe", "https://m.kwai.com/u/@johndoe"},
		{"legacy apex", "https://kwai.com/@johndoe", "https://m.kwai.com/u/@johndoe"},
		{"legacy with video path", "https://www.kwai.com/@maria.s/video/123", "https://m.kwai.com/u/@maria.s"},
		{"legacy with query", "https://www.kwai.com/profile?user=@ana_b", "https://m.kwai.com/u/@ana_b"},
		{"legacy bare segment", "https://www.kwai.com/johndoe", "https://m.kwai.com/u/@johndoe"},
		{"legacy no username", "https://www.kwai.com/", "https://www.kwai.com/"},
		{"canonical insecure", "HTTP://m.kwai.com/u/@johndoe", "https://m.kwai.com/u/@johndoe"},
		{"canonical already", "https://m.kwai.com/u/@johndoe", "https://m.kwai.com/u/@johndoe"},
		{"canonical keeps query", "https://m.kwai.com/u/@johndoe?lang=pt", "https://m.kwai.com/u/@johndoe?lang=pt"},
		{"mobile missing u", "m.kwai.com/@johndoe", "https://m.kwai.com/u/@johndoe"},
		{"whitespace", "  www.kwai.com/@johndoe \n", "https://m.kwai.com/u/@johndoe"},
		{"other host untouched", "http://example.com/@someone", "http://example.com/@someone"},
		{"garbage", "not a url", "https://not a url"},
		{"empty", "", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCustomHosts(t *testing.T) {
	h := Hosts{Canonical: "m.example-host.com", Legacy: []string{"www.example-host.com"}}
	if got, want := h.Normalize("www.example-host.com/@johndoe"), "https://m.example-host.com/u/@johndoe"; got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
	if got, want := h.Normalize("HTTP://m.example-host.com/u/@johndoe"), "https://m.example-host.com/u/@johndoe"; got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://m.kwai.com/u/@johndoe", "johndoe"},
		{"https://m.kwai.com/u/@maria.s?x=1", "maria.s"},
		{"https://m.kwai.com/u/", ""},
		{"@bare", "bare"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Username(tt.in); got != tt.want {
				t.Errorf("Username(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
