package verify

import (
	"math"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/thabo-maseko/regverify/internal/document"
)

const (
	defaultFuzzyThreshold = 85

	// Below the threshold but above this floor, the extracted value is still
	// worth surfacing as a suggested correction.
	autoCorrectFloor = 50
)

var (
	reExactStrip = regexp.MustCompile(`[\s\-]+`)
	rePunct      = regexp.MustCompile(`[^\w\s]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// legalSuffixes are stripped from the END of a company name before fuzzy
// comparison. Longer variants come first so "(PTY) LIMITED" is not cut down
// to a dangling "(PTY)".
var legalSuffixes = []string{
	"(PTY) LIMITED",
	"(PTY) LTD",
	"(RF) NPC",
	"INCORPORATED",
	"CORPORATION",
	"LIMITED",
	"CORP",
	"LTD",
	"NPC",
	"INC",
	"CC",
}

// normalizeExact strips whitespace and hyphens and upper-cases.
func normalizeExact(s string) string {
	return strings.ToUpper(reExactStrip.ReplaceAllString(s, ""))
}

// normalizeCompany upper-cases, strips one trailing legal-entity suffix,
// strips punctuation, and collapses whitespace.
func normalizeCompany(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, suf := range legalSuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			break
		}
	}
	s = rePunct.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// similarity scores two normalized strings as round(100*(maxLen-dist)/maxLen).
// Two empty strings score 100.
func similarity(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.Distance(a, b, nil)
	return int(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// CompareField compares one expected field against one extracted field.
// An absent expected value is vacuously a match; a present expected value
// with nothing extracted is a hard mismatch with nothing to suggest.
func CompareField(field string, expected, extracted any, match document.MatchType, threshold int) document.FieldVerificationResult {
	if threshold <= 0 {
		threshold = defaultFuzzyThreshold
	}
	res := document.FieldVerificationResult{
		Field:     field,
		Expected:  expected,
		Extracted: extracted,
	}

	expStr := document.ValueString(expected)
	extStr := document.ValueString(extracted)

	if expStr == "" {
		// Nothing to check against; the document is assumed authoritative.
		res.Match = true
		if extStr != "" {
			res.AutoCorrectValue = extracted
		}
		return res
	}
	if extStr == "" {
		res.Match = false
		return res
	}

	switch match {
	case document.MatchFuzzy:
		sim := similarity(normalizeCompany(expStr), normalizeCompany(extStr))
		res.Similarity = &sim
		res.Match = sim >= threshold
		if !res.Match && sim > autoCorrectFloor {
			res.AutoCorrectValue = extracted
		}
	default:
		res.Match = normalizeExact(expStr) == normalizeExact(extStr)
		if !res.Match {
			res.AutoCorrectValue = extracted
		}
	}
	return res
}
