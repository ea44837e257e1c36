package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Some Movie", "Some Movie"},
		{"colon space", "Avatar: The Way of Water", "Avatar - The Way of Water"},
		{"bare colon", "12:30", "12 -30"},
		{"double colon", "Alien: Covenant: Origins", "Alien - Covenant - Origins"},
		{"slash", "AC/DC Live", "AC-DC Live"},
		{"backslash", "a\\b", "a-b"},
		{"dropped characters", "Who? <Why> \"How\" |When", "Who Why How When"},
		{"asterisk", "M*A*S*H", "M-A-S-H"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Some.Release", "some_release"},
		{"keeps digits and dashes", "web-dl-1080", "web-dl-1080"},
		{"strips edge underscores", "!!token!!", "token"},
		{"empty", "", "unknown"},
		{"all symbols", "!!!", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
