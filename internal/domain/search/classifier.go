package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Intent is the classified category of a free-text search query.
type Intent string

const (
	IntentCode     Intent = "code"
	IntentBrand    Intent = "brand"
	IntentCategory Intent = "category"
	IntentNumeric  Intent = "numeric"
	IntentText     Intent = "text"
)

// MaxCodeLength is the longest query (in runes) still considered a product
// code candidate.
const MaxCodeLength = 30

// codePattern matches strings built only from characters that appear in
// vendor article codes: letters, digits, and common separators.
var codePattern = regexp.MustCompile(`^[\p{L}\p{N}\-./_ ]+$`)

// numericPattern matches a bare number with an optional unit suffix
// (watts, amperes, volts, millimeters and their Cyrillic spellings).
var numericPattern = regexp.MustCompile(`(?i)^\d+[ \-]*(вт|ватт|квт|а|ампер|в|вольт|мм|см|м|mm|cm|m|w|kw|a|v)?$`)

var (
	hasDigit  = regexp.MustCompile(`\d`)
	hasLetter = regexp.MustCompile(`\p{L}`)
)

// knownBrands is the canonical brand list, including transliterated variants.
// Substring match, lowercase.
var knownBrands = []string{
	"schneider", "шнайдер", "шнейдер",
	"legrand", "легранд",
	"abb", "абб",
	"iek", "иэк", "иек",
	"ekf", "экф", "екф",
	"dkc", "дкс",
	"кэаз", "keaz",
	"контактор", "kontar",
}

// knownCategories is the canonical category keyword list. Substring match,
// lowercase.
var knownCategories = []string{
	"выключатель", "розетка", "кабель", "провод",
	"лампа", "светильник", "автомат", "щит",
	"удлинитель", "трансформатор", "стабилизатор",
}

// commonWords guards the code rule: "автомат 3P" fits the code charset but is
// an ordinary product query, not an article lookup.
var commonWords = []string{"выключатель", "розетка", "кабель", "лампа", "автомат"}

// Classify maps a raw user query to an Intent. It is a pure function: the
// same input always yields the same intent. The empty string classifies as
// IntentText; callers treat it as "no query" and skip the full-text clause.
//
// Rule order, first match wins: code, numeric, brand, category, text. A pure
// "number plus unit" query is never a code even though it fits the code
// charset ("220 В" is numeric, "ВА-1" is a code).
func Classify(query string) Intent {
	query = strings.TrimSpace(query)
	if query == "" {
		return IntentText
	}
	lower := strings.ToLower(query)

	numeric := numericPattern.MatchString(query)
	if !numeric && isCode(query, lower) {
		return IntentCode
	}
	if numeric {
		return IntentNumeric
	}
	if containsAny(lower, knownBrands) {
		return IntentBrand
	}
	if containsAny(lower, knownCategories) {
		return IntentCategory
	}
	return IntentText
}

func isCode(query, lower string) bool {
	if utf8.RuneCountInString(query) > MaxCodeLength || !codePattern.MatchString(query) {
		return false
	}
	if containsAny(lower, commonWords) {
		return false
	}
	// A code needs both a digit and a letter; "12345" alone is numeric,
	// "cable" alone is text.
	return hasDigit.MatchString(query) && hasLetter.MatchString(query)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
