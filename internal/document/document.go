package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the closed set of registration documents the pipeline understands.
type Type string

const (
	TypeVAT          Type = "vat"
	TypeRegistration Type = "registration"
	TypeBEE          Type = "bee"
)

// ParseType maps a caller-supplied string onto a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeVAT:
		return TypeVAT, nil
	case TypeRegistration:
		return TypeRegistration, nil
	case TypeBEE:
		return TypeBEE, nil
	default:
		return "", fmt.Errorf("unknown document type: %q", s)
	}
}

// Canonical field names shared by expected and extracted records.
const (
	FieldVATNumber          = "vatNumber"
	FieldRegistrationNumber = "registrationNumber"
	FieldCompanyName        = "companyName"
	FieldStreetAddress      = "streetAddress"
	FieldCity               = "city"
	FieldProvinceState      = "provinceState"
	FieldPostalCode         = "postalCode"
	FieldBEELevel           = "beeLevel"
	FieldBEEExpiryDate      = "beeExpiryDate"
	FieldVerificationAgency = "verificationAgency"
)

// ExpectedCompanyData is the caller-supplied record to verify the document
// against. Empty strings and a zero BEELevel mean "not supplied"; absent
// fields are never compared.
type ExpectedCompanyData struct {
	VATNumber          string `json:"vatNumber,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	CompanyName        string `json:"companyName,omitempty"`
	StreetAddress      string `json:"streetAddress,omitempty"`
	City               string `json:"city,omitempty"`
	ProvinceState      string `json:"provinceState,omitempty"`
	PostalCode         string `json:"postalCode,omitempty"`
	BEELevel           int    `json:"beeLevel,omitempty" validate:"omitempty,min=1,max=8"`
}

// Field returns the expected value for a canonical field name and whether the
// caller supplied it.
func (e ExpectedCompanyData) Field(name string) (any, bool) {
	switch name {
	case FieldVATNumber:
		return e.VATNumber, e.VATNumber != ""
	case FieldRegistrationNumber:
		return e.RegistrationNumber, e.RegistrationNumber != ""
	case FieldCompanyName:
		return e.CompanyName, e.CompanyName != ""
	case FieldStreetAddress:
		return e.StreetAddress, e.StreetAddress != ""
	case FieldCity:
		return e.City, e.City != ""
	case FieldProvinceState:
		return e.ProvinceState, e.ProvinceState != ""
	case FieldPostalCode:
		return e.PostalCode, e.PostalCode != ""
	case FieldBEELevel:
		return e.BEELevel, e.BEELevel != 0
	}
	return nil, false
}

// Empty reports whether the caller supplied nothing to check against.
func (e ExpectedCompanyData) Empty() bool {
	return e == ExpectedCompanyData{}
}

// ExtractedRegistrationData is one extraction attempt's output. It is created
// fresh per attempt and never mutated after being returned.
type ExtractedRegistrationData struct {
	VATNumber          string   `json:"vatNumber,omitempty"`
	RegistrationNumber string   `json:"registrationNumber,omitempty"`
	CompanyName        string   `json:"companyName,omitempty"`
	StreetAddress      string   `json:"streetAddress,omitempty"`
	City               string   `json:"city,omitempty"`
	ProvinceState      string   `json:"provinceState,omitempty"`
	PostalCode         string   `json:"postalCode,omitempty"`
	BEELevel           int      `json:"beeLevel,omitempty"`
	BEEExpiryDate      string   `json:"beeExpiryDate,omitempty"`
	VerificationAgency string   `json:"verificationAgency,omitempty"`
	RawText            string   `json:"rawText,omitempty"`
	Confidence         float64  `json:"confidence"`
	FieldsExtracted    []string `json:"fieldsExtracted"`
}

// Field returns the extracted value for a canonical field name and whether it
// was populated.
func (x ExtractedRegistrationData) Field(name string) (any, bool) {
	switch name {
	case FieldVATNumber:
		return x.VATNumber, x.VATNumber != ""
	case FieldRegistrationNumber:
		return x.RegistrationNumber, x.RegistrationNumber != ""
	case FieldCompanyName:
		return x.CompanyName, x.CompanyName != ""
	case FieldStreetAddress:
		return x.StreetAddress, x.StreetAddress != ""
	case FieldCity:
		return x.City, x.City != ""
	case FieldProvinceState:
		return x.ProvinceState, x.ProvinceState != ""
	case FieldPostalCode:
		return x.PostalCode, x.PostalCode != ""
	case FieldBEELevel:
		return x.BEELevel, x.BEELevel != 0
	case FieldBEEExpiryDate:
		return x.BEEExpiryDate, x.BEEExpiryDate != ""
	case FieldVerificationAgency:
		return x.VerificationAgency, x.VerificationAgency != ""
	}
	return nil, false
}

// ValueString renders a field value (string or int) for normalization and
// reporting. Nil renders as the empty string.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// FieldVerificationResult is one row per compared field.
type FieldVerificationResult struct {
	Field            string `json:"field"`
	Expected         any    `json:"expected"`
	Extracted        any    `json:"extracted"`
	Match            bool   `json:"match"`
	Similarity       *int   `json:"similarity,omitempty"` // 0-100, fuzzy comparisons only
	AutoCorrectValue any    `json:"autoCorrectValue,omitempty"`
}

// AutoCorrection suggests a replacement value for a field the caller's input
// did not match or did not supply.
type AutoCorrection struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// RegistrationVerificationResult is the top-level outcome of one pipeline run.
type RegistrationVerificationResult struct {
	Success           bool                      `json:"success"`
	DocumentType      Type                      `json:"documentType"`
	ExtractedData     ExtractedRegistrationData `json:"extractedData"`
	FieldResults      []FieldVerificationResult `json:"fieldResults"`
	OverallConfidence float64                   `json:"overallConfidence"`
	AllFieldsMatch    bool                      `json:"allFieldsMatch"`
	AutoCorrections   []AutoCorrection          `json:"autoCorrections"`
	Warnings          []string                  `json:"warnings"`
	OCRMethod         string                    `json:"ocrMethod"` // pdf-parse | tesseract | ai | none
	ProcessingTimeMs  int64                     `json:"processingTimeMs"`
}
