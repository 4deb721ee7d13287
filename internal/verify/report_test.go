package verify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thabo-maseko/regverify/internal/document"
)

func TestGenerateReportAllVerified(t *testing.T) {
	result := document.RegistrationVerificationResult{
		Success: true,
		FieldResults: []document.FieldVerificationResult{
			{Field: document.FieldVATNumber, Match: true},
			{Field: document.FieldCompanyName, Match: true, Similarity: intPtr(100)},
		},
	}
	assert.Equal(t, reportAllVerified, GenerateReport(result))
}

func TestGenerateReportNoComparisons(t *testing.T) {
	assert.Equal(t, reportAllVerified, GenerateReport(document.RegistrationVerificationResult{Success: true}))
}

func TestGenerateReportMismatches(t *testing.T) {
	result := document.RegistrationVerificationResult{
		Success: true,
		FieldResults: []document.FieldVerificationResult{
			{Field: document.FieldVATNumber, Match: true},
			{
				Field:      document.FieldCompanyName,
				Expected:   "ACME HOLDINGS",
				Extracted:  "ACME INDUSTRIES (PTY) LTD",
				Match:      false,
				Similarity: intPtr(62),
			},
			{
				Field:    document.FieldPostalCode,
				Expected: "2196",
				Match:    false,
			},
		},
	}

	report := GenerateReport(result)

	assert.Contains(t, report, "Verification found the following mismatches:")
	assert.Contains(t, report, `- companyName: expected "ACME HOLDINGS", document shows "ACME INDUSTRIES (PTY) LTD" (similarity 62%)`)
	assert.Contains(t, report, `- postalCode: expected "2196", document shows Not found`)
	assert.NotContains(t, report, "vatNumber")
	assert.NotContains(t, report, "Suggested corrections")
	assert.False(t, strings.HasSuffix(report, "\n"))
}

func TestGenerateReportWithCorrections(t *testing.T) {
	result := document.RegistrationVerificationResult{
		Success: true,
		FieldResults: []document.FieldVerificationResult{
			{
				Field:            document.FieldBEELevel,
				Expected:         1,
				Extracted:        2,
				Match:            false,
				AutoCorrectValue: 2,
			},
		},
		AutoCorrections: []document.AutoCorrection{
			{Field: document.FieldBEELevel, Value: 2},
		},
	}

	report := GenerateReport(result)

	assert.Contains(t, report, `- beeLevel: expected "1", document shows "2"`)
	assert.Contains(t, report, "Suggested corrections:")
	assert.Contains(t, report, "- beeLevel: 2")
}
