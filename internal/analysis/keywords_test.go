package analysis

import (
	"reflect"
	"testing"
)

func TestDetectEmergency(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		text string
		want bool
	}{
		{"I want to kill myself", true},
		{"I Want To KILL Myself", true},
		{"everything feels hopeless lately", true},
		{"I want to   kill  myself", true},
		{"I had a rough day at school", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := d.DetectEmergency(tc.text); got != tc.want {
			t.Fatalf("DetectEmergency(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestDetectEmergencyIdempotent(t *testing.T) {
	d := NewDetector()
	text := "I feel worthless and want to die"
	if d.DetectEmergency(text) != d.DetectEmergency(text) {
		t.Fatalf("expected identical results on repeated calls")
	}
}

func TestMatchedKeywordsDeclarationOrder(t *testing.T) {
	d := NewDetector()
	// "hopeless" appears before "kill myself" in the input, but the phrase
	// list declares "kill myself" first.
	got := d.MatchedKeywords("hopeless, I could kill myself")
	want := []string{"kill myself", "hopeless"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchedKeywordsNoMatch(t *testing.T) {
	d := NewDetector()
	if got := d.MatchedKeywords("just a normal tuesday"); got != nil {
		t.Fatalf("expected no matches, got %v", got)
	}
}
