package domain

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Haus", "Haus"},
		{"trims whitespace", "  Haus \n", "Haus"},
		{"case preserved", "Laut", "Laut"},
		{"composed umlaut unchanged", "Bär", "Bär"},
		{"decomposed umlaut composed", "Bär", "Bär"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInflectionSourceIsValid(t *testing.T) {
	if !SourceOverview.IsValid() || !SourceFlexion.IsValid() {
		t.Error("known sources must be valid")
	}
	if InflectionSource("other").IsValid() {
		t.Error("unknown source must be invalid")
	}
}
