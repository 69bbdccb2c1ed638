package count

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"0", false},
		{"N/A", false},
		{"n/a", false},
		{"NULL", false},
		{"null", false},
		{"undefined", false},
		{"UNDEFINED", false},
		{"000", false},
		{"0K", false},
		{"abc", false},
		{"k", false},
		{"815", true},
		{"4.5K", true},
		{"12,345", true},
		{" 42 ", true},
		{"99999999999999999999999", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := IsValid(tt.raw); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"4.500k", "4500K"},
		{"12,345", "12345"},
		{"3.1M", "31M"},
		{"1.234", "1234"},
		{"1.234k", "1234K"},
		{"2b", "2B"},
		{"4988", "4988"},
		{" 1 200 ", "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"4.500k", "12,345", "3.1M", "815", "1.2b", "7 K"}
	for _, in := range inputs {
		if !IsValid(in) {
			t.Fatalf("IsValid(%q) = false, test input must be valid", in)
		}
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestAccept(t *testing.T) {
	if v, ok := Accept("1.234k"); !ok || v != "1234K" {
		t.Errorf("Accept(1.234k) = %q, %v; want 1234K, true", v, ok)
	}
	if v, ok := Accept("0"); ok || v != "" {
		t.Errorf("Accept(0) = %q, %v; want empty, false", v, ok)
	}
}
