package analysis

import (
	"regexp"
	"strings"

	"cvscore/internal/types"
)

var (
	// punctuation is anything that is not a letter, digit, underscore or whitespace
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	sentenceSplit      = regexp.MustCompile(`[.!?]+`)
)

// ExtractAllText flattens a CV into one space-separated string in a fixed
// field order: personal info, experience, education, skills, certifications.
// Blank fields are skipped, so sparse CVs do not pick up double spaces that
// the grammar double-space rule would count against them.
func ExtractAllText(cv types.CVRecord) string {
	parts := make([]string, 0, 16)
	add := func(fields ...string) {
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				parts = append(parts, f)
			}
		}
	}

	p := cv.PersonalInfo
	add(p.Name, p.Title, p.Email, p.Phone, p.Location, p.Summary)

	for _, exp := range cv.Experience {
		add(exp.Title, exp.Company, exp.Location, exp.Description)
	}
	for _, edu := range cv.Education {
		add(edu.Degree, edu.Institution, edu.Location, edu.Description)
	}
	add(strings.Join(cv.Skills, " "))
	for _, cert := range cv.Certifications {
		add(cert.Name, cert.Issuer, cert.Description)
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

// words splits text on whitespace
func words(text string) []string {
	return strings.Fields(text)
}

// sentences splits text on runs of sentence terminators, dropping blank pieces
func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// stripPunctuation removes punctuation so that stray symbols do not count as words
func stripPunctuation(text string) string {
	return punctuationPattern.ReplaceAllString(text, "")
}

func countWords(text string) int {
	return len(words(stripPunctuation(text)))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
