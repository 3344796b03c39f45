package textutil

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Breaking Bad", "breaking bad"},
		{"strips year suffix", "Shogun (2024)", "shogun"},
		{"transliterates", "Pokémon", "pokemon"},
		{"drops punctuation", "Marvel's Agents of S.H.I.E.L.D.", "marvels agents of shield"},
		{"collapses whitespace", "  The   Office ", "the office"},
		{"keeps digits", "9-1-1", "911"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayTitleKeepsCase(t *testing.T) {
	if got := DisplayTitle("Dark (2017)"); got != "Dark" {
		t.Fatalf("DisplayTitle = %q, want Dark", got)
	}
	if got := DisplayTitle("Café Society"); got != "Cafe Society" {
		t.Fatalf("DisplayTitle = %q, want Cafe Society", got)
	}
}

func TestSlugAndFolder(t *testing.T) {
	if got := Slug("The Last of Us"); got != "the-last-of-us" {
		t.Fatalf("Slug = %q", got)
	}
	if got := FolderName("Face/Off"); got != "Face Off" {
		t.Fatalf("FolderName = %q", got)
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("severance", "severance"); got != 100 {
		t.Fatalf("identical strings scored %d", got)
	}
	if got := Ratio("", ""); got != 100 {
		t.Fatalf("empty strings scored %d", got)
	}
	if got := Ratio("abcd", "wxyz"); got != 0 {
		t.Fatalf("disjoint strings scored %d", got)
	}
	// One substitution across ten runes.
	if got := Ratio("abcdefghij", "abcdefghiX"); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	if Ratio("the wire (2002)", "the wire") >= Ratio("the wire", "the wire") {
		t.Fatal("year suffix should lower the score")
	}
}
