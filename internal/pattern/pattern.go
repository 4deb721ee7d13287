// Package pattern is the deterministic extraction fallback: compiled regex
// recognizers for South African registration documents. It is always
// available and never fails; fields it cannot find are simply absent.
package pattern

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thabo-maseko/regverify/internal/document"
)

var (
	// SA VAT numbers are 10 digits and always start with 4.
	reVATNumber = regexp.MustCompile(`\b4\d{9}\b`)

	// CIPC registration numbers: YYYY/NNNNNN/NN.
	reRegistrationNumber = regexp.MustCompile(`\b\d{4}/\d{6}/\d{2}\b`)

	reFourDigits = regexp.MustCompile(`\b\d{4}\b`)

	reWhitespace = regexp.MustCompile(`\s+`)

	reCompanyLabel = regexp.MustCompile(`(?im)^\s*(?:company\s+name|trading\s+name|name)\s*:\s*(.+)$`)

	reAddressLabel = regexp.MustCompile(`(?i)^\s*(?:registered|physical|business|postal|street)\s+address\s*:?\s*(.*)$`)

	reBEELevel  = regexp.MustCompile(`(?i)\b(?:level|lvl)\s*:?\s*([1-8])\b`)
	reBEEExpiry = regexp.MustCompile(`(?i)(?:expir\w*|valid\s+until|valid\s+to)\s*:?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
)

// companySuffixPatterns is an ordered ladder of legal-entity suffixes; the
// first pattern that matches wins and the full span (prefix + suffix) is kept.
var companySuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\(PTY\)\s*LTD\b`),
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\(PTY\)\s*LIMITED\b`),
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\bLIMITED\b`),
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\(RF\)\s*NPC\b`),
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\bNPC\b`),
	regexp.MustCompile(`(?i)[A-Z0-9][A-Z0-9&'.\- ]{1,70}\bCC\b`),
}

var agencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)verified\s+by\s*:\s*([A-Za-z][A-Za-z ]+)`),
	regexp.MustCompile(`(?i)verification\s+agency\s*:\s*([A-Za-z][A-Za-z ]+)`),
	regexp.MustCompile(`(?i)issuing\s+body\s*:\s*([A-Za-z][A-Za-z ]+)`),
}

// Provinces holds the nine SA provinces, matched by substring membership.
var Provinces = []string{
	"EASTERN CAPE",
	"FREE STATE",
	"GAUTENG",
	"KWAZULU-NATAL",
	"LIMPOPO",
	"MPUMALANGA",
	"NORTH WEST",
	"NORTHERN CAPE",
	"WESTERN CAPE",
}

// Extract runs the per-document-type recognizers over already-acquired text.
// baseConfidence is the acquisition confidence, carried through unchanged.
func Extract(text string, docType document.Type, baseConfidence float64) document.ExtractedRegistrationData {
	data := document.ExtractedRegistrationData{
		RawText:    text,
		Confidence: baseConfidence,
	}
	add := func(field string) {
		data.FieldsExtracted = append(data.FieldsExtracted, field)
	}

	switch docType {
	case document.TypeVAT:
		if v := reVATNumber.FindString(text); v != "" {
			data.VATNumber = v
			add(document.FieldVATNumber)
		}
		if v := reRegistrationNumber.FindString(text); v != "" {
			data.RegistrationNumber = v
			add(document.FieldRegistrationNumber)
		}
		if v := matchCompanyName(text); v != "" {
			data.CompanyName = v
			add(document.FieldCompanyName)
		}

	case document.TypeRegistration:
		if v := reRegistrationNumber.FindString(text); v != "" {
			data.RegistrationNumber = v
			add(document.FieldRegistrationNumber)
		}
		if v := matchCompanyName(text); v != "" {
			data.CompanyName = v
			add(document.FieldCompanyName)
		}
		province := matchProvince(text)
		postal := matchPostalCode(text)
		block := matchAddressBlock(text)
		if len(block) > 0 {
			data.StreetAddress = block[0]
			add(document.FieldStreetAddress)
		}
		if city := deriveCity(block, postal, province); city != "" {
			data.City = city
			add(document.FieldCity)
		}
		if province != "" {
			data.ProvinceState = province
			add(document.FieldProvinceState)
		}
		if postal != "" {
			data.PostalCode = postal
			add(document.FieldPostalCode)
		}

	case document.TypeBEE:
		if v := matchCompanyName(text); v != "" {
			data.CompanyName = v
			add(document.FieldCompanyName)
		}
		if m := reBEELevel.FindStringSubmatch(text); m != nil {
			data.BEELevel, _ = strconv.Atoi(m[1])
			add(document.FieldBEELevel)
		}
		if m := reBEEExpiry.FindStringSubmatch(text); m != nil {
			data.BEEExpiryDate = m[1]
			add(document.FieldBEEExpiryDate)
		}
		if v := matchAgency(text); v != "" {
			data.VerificationAgency = v
			add(document.FieldVerificationAgency)
		}
	}

	return data
}

// matchCompanyName tries the legal-suffix ladder first, then the labeled-field
// fallback. The matched span is upper-cased with whitespace collapsed.
func matchCompanyName(text string) string {
	for _, re := range companySuffixPatterns {
		if m := re.FindString(text); m != "" {
			return collapse(strings.ToUpper(m))
		}
	}
	if m := reCompanyLabel.FindStringSubmatch(text); m != nil {
		return collapse(strings.ToUpper(m[1]))
	}
	return ""
}

func matchProvince(text string) string {
	upper := strings.ToUpper(text)
	for _, p := range Provinces {
		if strings.Contains(upper, p) {
			return p
		}
	}
	return ""
}

// matchPostalCode returns the last 4-digit token outside the reserved
// 1900-2099 range. The range is excluded because it collides with year-like
// tokens elsewhere in the document. When every candidate is year-like the
// last one is taken anyway; postal codes such as 2000 (Johannesburg) sit
// inside the reserved range. That fallback is document-order dependent: a
// code followed by a trailing year resolves to the year.
func matchPostalCode(text string) string {
	var last, lastAny string
	for _, tok := range reFourDigits.FindAllString(text, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		lastAny = tok
		if n >= 1900 && n <= 2099 {
			continue
		}
		last = tok
	}
	if last == "" {
		return lastAny
	}
	return last
}

// matchAddressBlock finds a labeled address line and captures it plus up to
// three following non-empty lines.
func matchAddressBlock(text string) []string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		m := reAddressLabel.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		var block []string
		if rest := strings.TrimSpace(m[1]); rest != "" {
			block = append(block, rest)
		}
		for j := i + 1; j < len(lines) && len(block) < 3; j++ {
			s := strings.TrimSpace(lines[j])
			if s == "" {
				break
			}
			block = append(block, s)
		}
		if len(block) > 0 {
			return block
		}
	}
	return nil
}

// deriveCity takes the second-to-last captured address line, strips any
// already-identified postal code and province substrings, and trims trailing
// commas.
func deriveCity(block []string, postal, province string) string {
	if len(block) < 2 {
		return ""
	}
	city := block[len(block)-2]
	if postal != "" {
		city = strings.ReplaceAll(city, postal, "")
	}
	if province != "" {
		city = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(province)).ReplaceAllString(city, "")
	}
	city = strings.TrimSpace(city)
	city = strings.TrimRight(city, ",")
	return collapse(city)
}

func matchAgency(text string) string {
	for _, re := range agencyPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
