package analysis

import "strings"

// Fixed high-risk phrase list. Matching is case-insensitive substring
// containment over whitespace-normalized text, so "KILL  myself" still
// matches "kill myself".
var emergencyPhrases = []string{
	"suicide", "kill myself", "end my life", "want to die", "self harm", "hurt myself",
	"overdose", "pills", "jump", "bridge", "rope", "gun", "knife", "cutting",
	"hopeless", "worthless", "burden", "everyone better without me",
}

// Detector scans text against the fixed emergency phrase list. The list is
// injected at construction and never mutated.
type Detector struct {
	phrases []string
}

func NewDetector() Detector {
	return Detector{phrases: emergencyPhrases}
}

func (d Detector) DetectEmergency(text string) bool {
	normalized := normalize(text)
	for _, phrase := range d.phrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// MatchedKeywords returns every phrase that matches, in list-declaration
// order.
func (d Detector) MatchedKeywords(text string) []string {
	normalized := normalize(text)
	var out []string
	for _, phrase := range d.phrases {
		if strings.Contains(normalized, phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
