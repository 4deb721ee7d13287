package verify

import (
	"math"

	"github.com/thabo-maseko/regverify/internal/document"
)

// Fixed user-facing warnings.
const (
	warnLowOCRConfidence = "low OCR confidence - extracted data may be unreliable, consider manual review"
	warnDocumentAccurate = "extracted data differs from input with high confidence - the document may be more accurate than the input"
)

// fuseConfidence combines the extraction confidence with per-field match
// signals: 0.3*extraction + 0.5*matchRatio + 0.2*(avgSimilarity/100),
// rounded to two decimals. With nothing compared it falls back to the raw
// extraction confidence.
func fuseConfidence(extractionConf float64, results []document.FieldVerificationResult) float64 {
	if len(results) == 0 {
		return clamp01(extractionConf)
	}

	matched := 0
	simSum, simCount := 0.0, 0.0
	for _, r := range results {
		if r.Match {
			matched++
		}
		if r.Similarity != nil {
			simSum += float64(*r.Similarity)
			simCount++
		}
	}

	matchRatio := float64(matched) / float64(len(results))
	avgSimilarity := 0.0
	if simCount > 0 {
		avgSimilarity = simSum / simCount
	}

	overall := extractionConf*0.3 + matchRatio*0.5 + (avgSimilarity/100)*0.2
	return clamp01(math.Round(overall*100) / 100)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func allFieldsMatch(results []document.FieldVerificationResult) bool {
	for _, r := range results {
		if !r.Match {
			return false
		}
	}
	return true
}

// autoCorrections deduplicates suggested values: explicit per-field
// suggestions first (first occurrence wins), then any extracted field the
// caller never asked about.
func autoCorrections(results []document.FieldVerificationResult, extracted document.ExtractedRegistrationData) []document.AutoCorrection {
	var out []document.AutoCorrection
	seen := make(map[string]bool, len(results))
	compared := make(map[string]bool, len(results))

	for _, r := range results {
		compared[r.Field] = true
		if r.AutoCorrectValue == nil || seen[r.Field] {
			continue
		}
		seen[r.Field] = true
		out = append(out, document.AutoCorrection{Field: r.Field, Value: r.AutoCorrectValue})
	}

	for _, f := range extracted.FieldsExtracted {
		if compared[f] || seen[f] {
			continue
		}
		if v, ok := extracted.Field(f); ok {
			seen[f] = true
			out = append(out, document.AutoCorrection{Field: f, Value: v})
		}
	}
	return out
}

func buildWarnings(extractionConf, overall float64, allMatch bool) []string {
	var warnings []string
	if extractionConf < 0.5 {
		warnings = append(warnings, warnLowOCRConfidence)
	}
	if !allMatch && overall > 0.7 {
		warnings = append(warnings, warnDocumentAccurate)
	}
	return warnings
}
