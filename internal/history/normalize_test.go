package history

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase", input: "Hello World", want: "hello world"},
		{name: "punctuation to spaces", input: "Wait... what?!", want: "wait what"},
		{name: "apostrophes split words", input: "Alex's cat", want: "alex s cat"},
		{name: "collapse whitespace", input: "  a \t\n b  ", want: "a b"},
		{name: "underscores kept", input: "snake_case", want: "snake_case"},
		{name: "only punctuation", input: "?!...", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "half overlap", a: "the cat sat", b: "the cat ran", want: 0.5},
		{name: "identical", a: "the cat sat", b: "the cat sat", want: 1},
		{name: "disjoint", a: "red fish", b: "blue bird", want: 0},
		{name: "repeated words are a set", a: "no no no", b: "no", want: 1},
		{name: "one empty", a: "", b: "word", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	samples := []string{
		"the cat sat",
		"the cat ran away",
		"monday is a mood",
		"a mood is monday",
		"x",
		"",
	}
	for _, a := range samples {
		for _, b := range samples {
			if Jaccard(a, b) != Jaccard(b, a) {
				t.Errorf("Jaccard(%q, %q) != Jaccard(%q, %q)", a, b, b, a)
			}
		}
		if a != "" && Jaccard(a, a) != 1 {
			t.Errorf("Jaccard(%q, %q) = %v, want 1", a, a, Jaccard(a, a))
		}
	}
}
