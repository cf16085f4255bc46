package textutil

import "testing"

func TestMaskMatchesCaseInsensitiveSubstrings(t *testing.T) {
	m := NewMask([]string{" Draft ", "", "TMP"})
	tests := []struct {
		name       string
		candidates []string
		want       bool
	}{
		{"basename", []string{"report-DRAFT.png"}, true},
		{"full path", []string{"x.png", "/home/user/tmp/x.png"}, true},
		{"no match", []string{"final.png", "/srv/final.png"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.candidates...); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.candidates, got, tt.want)
			}
		})
	}
	if pattern, ok := m.Match("A-Draft"); !ok || pattern != "draft" {
		t.Errorf("Match returned %q, %v", pattern, ok)
	}
}

func TestEmptyMaskNeverMatches(t *testing.T) {
	m := NewMask([]string{"", "  "})
	if !m.Empty() || m.Matches("anything") {
		t.Fatal("empty mask should never match")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("My Photo.PNG"); got != "my_photo_png" {
		t.Errorf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken(" "); got != "unknown" {
		t.Errorf("SanitizeToken(blank) = %q", got)
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "a", "b") != "a" || Ternary(false, 1, 2) != 2 {
		t.Fatal("unexpected ternary result")
	}
}
