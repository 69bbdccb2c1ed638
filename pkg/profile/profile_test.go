package profile

import "testing"

func TestComplete(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"both valid", Record{FollowerCount: "815", LikeCount: "4988"}, true},
		{"likes zero", Record{FollowerCount: "12000", LikeCount: "0"}, false},
		{"followers empty", Record{LikeCount: "10"}, false},
		{"sentinel", Record{FollowerCount: "N/A", LikeCount: "10"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClearInvalid(t *testing.T) {
	r := Record{FollowerCount: "12000", LikeCount: "0"}
	r.ClearInvalid()
	if r.FollowerCount != "12000" {
		t.Errorf("FollowerCount = %q, want 12000", r.FollowerCount)
	}
	if r.LikeCount != "" {
		t.Errorf("LikeCount = %q, want empty", r.LikeCount)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		username string
		want     string
	}{
		{"pipe suffix", "Maria Silva | Kwai", "maria", "Maria Silva"},
		{"handle and suffix", "Maria Silva (@maria) | Kwai", "maria", "Maria Silva"},
		{"on kwai", "Joao on Kwai", "", "Joao"},
		{"portuguese", "Joao no Kwai", "", "Joao"},
		{"plain", "Just A Name", "", "Just A Name"},
		{"trailing handle", "Ana @ana", "ana", "Ana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.in, tt.username); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
