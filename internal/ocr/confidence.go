package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	rePhone = regexp.MustCompile(`(\+91[\s-]?)?[6-9]\d{9}\b|\+?\d[\d\s().-]{8,}\d`)
	reWords = regexp.MustCompile(`\b[a-z]{3,}\b`)
)

func hasEmailPattern(s string) bool { return reEmail.MatchString(s) }
func hasPhonePattern(s string) bool { return rePhone.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost on biography artifacts: contact details, dictionary-looking
	// words, enough content overall.
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasEmailPattern(txtL) {
		score += 0.15
	}
	if hasPhonePattern(txtL) {
		score += 0.15
	}
	if len(reWords.FindAllString(txtL, 20)) >= 20 {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
