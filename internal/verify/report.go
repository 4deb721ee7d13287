package verify

import (
	"fmt"
	"strings"

	"github.com/thabo-maseko/regverify/internal/document"
)

const reportAllVerified = "All supplied fields were verified successfully against the document."

// GenerateReport renders a human-readable mismatch summary from an
// already-computed result. Pure rendering: no field is re-derived.
func GenerateReport(result document.RegistrationVerificationResult) string {
	var mismatches []document.FieldVerificationResult
	for _, r := range result.FieldResults {
		if !r.Match {
			mismatches = append(mismatches, r)
		}
	}
	if len(mismatches) == 0 {
		return reportAllVerified
	}

	var b strings.Builder
	b.WriteString("Verification found the following mismatches:\n")
	for _, r := range mismatches {
		extracted := "Not found"
		if s := document.ValueString(r.Extracted); s != "" {
			extracted = fmt.Sprintf("%q", s)
		}
		fmt.Fprintf(&b, "- %s: expected %q, document shows %s", r.Field, document.ValueString(r.Expected), extracted)
		if r.Similarity != nil {
			fmt.Fprintf(&b, " (similarity %d%%)", *r.Similarity)
		}
		b.WriteByte('\n')
	}

	if len(result.AutoCorrections) > 0 {
		b.WriteString("\nSuggested corrections:\n")
		for _, c := range result.AutoCorrections {
			fmt.Fprintf(&b, "- %s: %s\n", c.Field, document.ValueString(c.Value))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
