package search

// BoostTable holds the relative field weights used when assembling search
// requests. The values are ranking policy, not derived quantities; they are
// grouped here so a deployment can override them in one place instead of
// hunting for inlined numbers.
type BoostTable struct {
	// Code intent: exact identifier matches dominate everything else.
	CodeExternalIDExact float64
	CodeSKUExact        float64
	CodeCollapsedExact  float64
	CodeExternalPrefix  float64
	CodeSKUPrefix       float64
	CodeNgram           float64
	CodeNamePhrase      float64

	// Text intent clause ladder, strongest first.
	TextNamePhrase float64
	TextNameAll    float64
	TextNamePart   float64
	TextNameAuto   float64
	TextNameFuzzy  float64
	TextNameNgram  float64
	TextAttributes float64

	// Multi-field weights (the "field^N" suffixes).
	FieldName        float64
	FieldNameAuto    float64
	FieldDescription float64
	FieldBrandName   float64
	FieldBrandNgram  float64
	FieldSeriesName  float64
	FieldCategories  float64
	FieldExternalID  float64
	FieldSKU         float64
	FieldSearchText  float64
}

// DefaultBoosts returns the production ranking table.
func DefaultBoosts() BoostTable {
	return BoostTable{
		CodeExternalIDExact: 1000,
		CodeSKUExact:        900,
		CodeCollapsedExact:  800,
		CodeExternalPrefix:  500,
		CodeSKUPrefix:       400,
		CodeNgram:           100,
		CodeNamePhrase:      50,

		TextNamePhrase: 100,
		TextNameAll:    50,
		TextNamePart:   30,
		TextNameAuto:   25,
		TextNameFuzzy:  20,
		TextNameNgram:  15,
		TextAttributes: 5,

		FieldName:        10,
		FieldNameAuto:    5,
		FieldDescription: 5,
		FieldBrandName:   8,
		FieldBrandNgram:  5,
		FieldSeriesName:  6,
		FieldCategories:  4,
		FieldExternalID:  7,
		FieldSKU:         6,
		FieldSearchText:  2,
	}
}
