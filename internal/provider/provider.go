// Package provider holds the remote structured-extraction providers. Each
// provider turns acquired text into a partially-populated record; the
// cascade tries them in a fixed priority order and falls back to pattern
// extraction when none is available or the call fails.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/thabo-maseko/regverify/internal/common"
	"github.com/thabo-maseko/regverify/internal/document"
)

// Provider is one remote structured-extraction strategy. Available reports
// whether its credential/configuration is present; no network probe is made.
type Provider interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, text string, docType document.Type) (document.ExtractedRegistrationData, error)
}

// promptTextLimit caps how much acquired text is embedded in the prompt.
const promptTextLimit = 10000

// parseConfidence is the fixed self-reported confidence for a successful parse.
const parseConfidence = 0.9

const extractionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "vatNumber":          {"type": ["string", "null"]},
    "registrationNumber": {"type": ["string", "null"]},
    "companyName":        {"type": ["string", "null"]},
    "streetAddress":      {"type": ["string", "null"]},
    "city":               {"type": ["string", "null"]},
    "provinceState":      {"type": ["string", "null"]},
    "postalCode":         {"type": ["string", "null"]},
    "beeLevel":           {"type": ["integer", "null"], "minimum": 1, "maximum": 8},
    "beeExpiryDate":      {"type": ["string", "null"]},
    "verificationAgency": {"type": ["string", "null"]}
  },
  "additionalProperties": true
}`

var extractionSchema = jsonschema.MustCompileString("extraction.json", extractionSchemaJSON)

// BuildPrompt composes the instruction prompt for a document type, embedding
// the exact JSON shape to return and the first ~10k characters of text.
func BuildPrompt(docType document.Type, text string) (system, user string) {
	fields := map[document.Type]string{
		document.TypeVAT:          `"vatNumber" (10 digits starting with 4), "registrationNumber" (YYYY/NNNNNN/NN), "companyName"`,
		document.TypeRegistration: `"registrationNumber" (YYYY/NNNNNN/NN), "companyName", "streetAddress", "city", "provinceState", "postalCode"`,
		document.TypeBEE:          `"companyName", "beeLevel" (integer 1-8), "beeExpiryDate", "verificationAgency"`,
	}

	system = strings.Join([]string{
		"You are a South African business-document parser. Return ONLY a JSON object, no prose.",
		fmt.Sprintf("The document is a %s certificate. Extract these fields: %s.", docType, fields[docType]),
		"Use null for any field not present in the document. Never invent values.",
		"Keys not listed must be omitted.",
	}, " ")

	if len(text) > promptTextLimit {
		text = text[:promptTextLimit]
	}
	user = "Document text:\n" + text
	return system, user
}

// DecodeFields validates a provider's JSON body against the extraction schema
// and decodes it defensively: missing or null keys stay absent, textual
// fields are upper-cased for consistent downstream comparison, and the
// confidence is fixed at 0.9 for a successful parse.
func DecodeFields(raw []byte) (document.ExtractedRegistrationData, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return document.ExtractedRegistrationData{}, fmt.Errorf("%w: %v", common.ErrProviderResponse, err)
	}
	if err := extractionSchema.Validate(v); err != nil {
		return document.ExtractedRegistrationData{}, fmt.Errorf("%w: %v", common.ErrProviderResponse, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return document.ExtractedRegistrationData{}, fmt.Errorf("%w: not a JSON object", common.ErrProviderResponse)
	}

	data := document.ExtractedRegistrationData{Confidence: parseConfidence}
	add := func(field string) {
		data.FieldsExtracted = append(data.FieldsExtracted, field)
	}

	if s := upperString(m, document.FieldVATNumber); s != "" {
		data.VATNumber = s
		add(document.FieldVATNumber)
	}
	if s := upperString(m, document.FieldRegistrationNumber); s != "" {
		data.RegistrationNumber = s
		add(document.FieldRegistrationNumber)
	}
	if s := upperString(m, document.FieldCompanyName); s != "" {
		data.CompanyName = s
		add(document.FieldCompanyName)
	}
	if s := upperString(m, document.FieldStreetAddress); s != "" {
		data.StreetAddress = s
		add(document.FieldStreetAddress)
	}
	if s := upperString(m, document.FieldCity); s != "" {
		data.City = s
		add(document.FieldCity)
	}
	if s := upperString(m, document.FieldProvinceState); s != "" {
		data.ProvinceState = s
		add(document.FieldProvinceState)
	}
	if s := upperString(m, document.FieldPostalCode); s != "" {
		data.PostalCode = s
		add(document.FieldPostalCode)
	}
	if lvl := intValue(m, document.FieldBEELevel); lvl >= 1 && lvl <= 8 {
		data.BEELevel = lvl
		add(document.FieldBEELevel)
	}
	if s := upperString(m, document.FieldBEEExpiryDate); s != "" {
		data.BEEExpiryDate = s
		add(document.FieldBEEExpiryDate)
	}
	if s := upperString(m, document.FieldVerificationAgency); s != "" {
		data.VerificationAgency = s
		add(document.FieldVerificationAgency)
	}

	return data, nil
}

func upperString(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

func intValue(m map[string]any, key string) int {
	switch t := m[key].(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	}
	return 0
}
