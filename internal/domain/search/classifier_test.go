package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{"article code with digits and letters", "AB-123", IntentCode},
		{"cyrillic article code", "ВА-1", IntentCode},
		{"cyrillic-free sku", "NKU10-3x1.5", IntentCode},
		{"code with slash and spaces", "C60N 3/25A", IntentCode},
		{"digits only is not a code", "12345", IntentNumeric},
		{"letters only is not a code", "cable", IntentText},
		{"too long for a code", "A1-000000000000000000000000000001", IntentText},
		{"common word blocks code rule", "автомат 3P", IntentCategory},

		{"bare number", "220", IntentNumeric},
		{"number with cyrillic unit", "220 В", IntentNumeric},
		{"number with kw unit", "15квт", IntentNumeric},
		{"number with latin unit", "100 mm", IntentNumeric},

		{"brand latin", "schneider", IntentBrand},
		{"brand uppercase", "Schneider Electric", IntentBrand},
		{"brand transliterated", "шнайдер электрик", IntentBrand},
		{"brand short latin", "ekf", IntentBrand},
		{"brand within phrase", "розетки legrand", IntentBrand},

		{"category keyword", "автомат", IntentCategory},
		{"category within phrase", "двухклавишный выключатель", IntentCategory},

		{"free text", "что-нибудь недорогое", IntentText},
		{"empty string", "", IntentText},
		{"whitespace only", "   ", IntentText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	queries := []string{"ВА-1", "schneider", "автомат", "220 В", "", "AB-123"}
	for _, q := range queries {
		first := Classify(q)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Classify(q), "query %q", q)
		}
	}
}

func TestClassifyBrandBeatsCategory(t *testing.T) {
	// Both a brand and a category word present: brand wins, it is the more
	// specific signal.
	assert.Equal(t, IntentBrand, Classify("выключатель abb"))
}
