package document

// MatchType selects the comparison strategy for a field.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

// FieldPolicy names one field to compare and how to compare it.
type FieldPolicy struct {
	Field     string
	Match     MatchType
	Threshold int // fuzzy similarity threshold, 0 means the 85 default
}

// comparisonPolicies is process-wide immutable configuration: which fields
// each document type compares, in order, and with which strategy.
var comparisonPolicies = map[Type][]FieldPolicy{
	TypeVAT: {
		{Field: FieldVATNumber, Match: MatchExact},
		{Field: FieldRegistrationNumber, Match: MatchExact},
		{Field: FieldCompanyName, Match: MatchFuzzy, Threshold: 85},
	},
	TypeRegistration: {
		{Field: FieldRegistrationNumber, Match: MatchExact},
		{Field: FieldCompanyName, Match: MatchFuzzy, Threshold: 85},
		{Field: FieldStreetAddress, Match: MatchFuzzy, Threshold: 70},
		{Field: FieldCity, Match: MatchFuzzy, Threshold: 80},
		{Field: FieldProvinceState, Match: MatchExact},
		{Field: FieldPostalCode, Match: MatchExact},
	},
	TypeBEE: {
		{Field: FieldBEELevel, Match: MatchExact},
		{Field: FieldCompanyName, Match: MatchFuzzy, Threshold: 85},
	},
}

// ComparisonPolicy returns the ordered field policy for a document type.
func ComparisonPolicy(t Type) []FieldPolicy {
	return comparisonPolicies[t]
}
