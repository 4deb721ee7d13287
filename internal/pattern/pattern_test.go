package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thabo-maseko/regverify/internal/document"
)

func TestExtractVATDocument(t *testing.T) {
	text := "VAT REGISTRATION CERTIFICATE\n" +
		"VAT Number 4123456789\n" +
		"Registration 2015/123456/07\n" +
		"ACME INDUSTRIES (PTY) LTD"

	data := Extract(text, document.TypeVAT, 0.85)

	assert.Equal(t, "4123456789", data.VATNumber)
	assert.Equal(t, "2015/123456/07", data.RegistrationNumber)
	assert.Equal(t, "ACME INDUSTRIES (PTY) LTD", data.CompanyName)
	assert.Equal(t, 0.85, data.Confidence)
	assert.Equal(t, []string{
		document.FieldVATNumber,
		document.FieldRegistrationNumber,
		document.FieldCompanyName,
	}, data.FieldsExtracted)
	assert.Equal(t, text, data.RawText)
}

func TestMatchCompanyName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"pty ltd suffix", "Acme Industries (Pty) Ltd\nissued on request", "ACME INDUSTRIES (PTY) LTD"},
		{"pty limited suffix", "BLUE SKY TRADING (PTY) LIMITED", "BLUE SKY TRADING (PTY) LIMITED"},
		{"close corporation", "KHUMALO BUILDERS CC", "KHUMALO BUILDERS CC"},
		{"npc", "HOPE FOUNDATION NPC", "HOPE FOUNDATION NPC"},
		{"labeled fallback", "Company Name: Blue Sky Trading\nother text", "BLUE SKY TRADING"},
		{"trading name label", "Trading Name: Mzansi Traders\n", "MZANSI TRADERS"},
		{"whitespace collapsed", "ACME   INDUSTRIES  (PTY) LTD", "ACME INDUSTRIES (PTY) LTD"},
		{"no match", "no legal entity here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCompanyName(tt.text))
		})
	}
}

func TestMatchPostalCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Cape Town 7441", "7441"},
		{"year excluded", "Issued 2024\nPolokwane 0699", "0699"},
		{"last candidate wins", "first 7441 then 0002", "0002"},
		{"all reserved takes last", "Issued in 2024, Johannesburg 2000", "2000"},
		{"all reserved is order dependent", "Johannesburg 2000\nIssued 2024", "2024"},
		{"embedded digits ignored", "VAT 4123456789", ""},
		{"none", "no codes here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPostalCode(tt.text))
		})
	}
}

func TestExtractRegistrationDocument(t *testing.T) {
	text := "CERTIFICATE OF REGISTRATION\n" +
		"Issued 2024\n" +
		"Registration Number 2015/123456/07\n" +
		"ACME INDUSTRIES (PTY) LTD\n" +
		"Registered Address:\n" +
		"12 Main Road\n" +
		"Sandton, 2196\n" +
		"Gauteng\n"

	data := Extract(text, document.TypeRegistration, 0.85)

	assert.Equal(t, "2015/123456/07", data.RegistrationNumber)
	assert.Equal(t, "ACME INDUSTRIES (PTY) LTD", data.CompanyName)
	assert.Equal(t, "12 Main Road", data.StreetAddress)
	assert.Equal(t, "Sandton", data.City)
	assert.Equal(t, "GAUTENG", data.ProvinceState)
	assert.Equal(t, "2196", data.PostalCode)
	assert.ElementsMatch(t, []string{
		document.FieldRegistrationNumber,
		document.FieldCompanyName,
		document.FieldStreetAddress,
		document.FieldCity,
		document.FieldProvinceState,
		document.FieldPostalCode,
	}, data.FieldsExtracted)
}

func TestDeriveCityStripsProvince(t *testing.T) {
	block := []string{"1 Long Street", "Cape Town Western Cape, 8001", "South Africa"}
	assert.Equal(t, "Cape Town", deriveCity(block, "8001", "WESTERN CAPE"))
}

func TestDeriveCityNeedsTwoLines(t *testing.T) {
	assert.Empty(t, deriveCity([]string{"only street"}, "", ""))
	assert.Empty(t, deriveCity(nil, "", ""))
}

func TestExtractBEEDocument(t *testing.T) {
	text := "B-BBEE VERIFICATION CERTIFICATE\n" +
		"KHUMALO BUILDERS CC\n" +
		"BEE Status Level: 2\n" +
		"Valid Until: 31/03/2026\n" +
		"Verified By: Empowerdex Agency\n"

	data := Extract(text, document.TypeBEE, 0.7)

	assert.Equal(t, "KHUMALO BUILDERS CC", data.CompanyName)
	assert.Equal(t, 2, data.BEELevel)
	assert.Equal(t, "31/03/2026", data.BEEExpiryDate)
	assert.Equal(t, "Empowerdex Agency", data.VerificationAgency)
	assert.Equal(t, []string{
		document.FieldCompanyName,
		document.FieldBEELevel,
		document.FieldBEEExpiryDate,
		document.FieldVerificationAgency,
	}, data.FieldsExtracted)
}

func TestExtractBEELevelOutOfRangeIgnored(t *testing.T) {
	data := Extract("BEE Level: 9", document.TypeBEE, 0.5)
	assert.Zero(t, data.BEELevel)
	assert.NotContains(t, data.FieldsExtracted, document.FieldBEELevel)
}

func TestExtractNothingFound(t *testing.T) {
	data := Extract("completely unrelated text", document.TypeVAT, 0.4)
	require.Empty(t, data.FieldsExtracted)
	assert.Empty(t, data.VATNumber)
	assert.Equal(t, 0.4, data.Confidence)
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "ACME INDUSTRIES (PTY) LTD\nVAT 4123456789"
	first := Extract(text, document.TypeVAT, 0.85)
	second := Extract(text, document.TypeVAT, 0.85)
	assert.Equal(t, first, second)
}
