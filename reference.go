package currency

import "sort"

// ReferenceTable maps a currency code to its display metadata. It has no mutating
// methods, so a single instance can be shared by every run of a long lived process.
type ReferenceTable struct {
	metas map[string]CurrencyMeta
	codes []string
}

// Currencies is the set of currencies the job fetches and stores.
var Currencies = NewReferenceTable(
	CurrencyMeta{Code: "AUD", Symbol: "$", Name: "Australian Dollar", Precision: 2, RegionEmoji: "🇦🇺"},
	CurrencyMeta{Code: "CZK", Symbol: "Kč", Name: "Czech Koruna", Precision: 0, RegionEmoji: "🇨🇿"},
	CurrencyMeta{Code: "EUR", Symbol: "€", Name: "Euro", Precision: 2, RegionEmoji: "🇪🇺"},
	CurrencyMeta{Code: "GBP", Symbol: "£", Name: "Pound Sterling", Precision: 2, RegionEmoji: "🇬🇧"},
	CurrencyMeta{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Precision: 0, RegionEmoji: "🇯🇵"},
	CurrencyMeta{Code: "KRW", Symbol: "₩", Name: "South Korean Won", Precision: 0, RegionEmoji: "🇰🇷"},
	CurrencyMeta{Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", Precision: 2, RegionEmoji: "🇲🇾"},
	CurrencyMeta{Code: "SGD", Symbol: "$", Name: "Singapore Dollar", Precision: 2, RegionEmoji: "🇸🇬"},
	CurrencyMeta{Code: "TWD", Symbol: "$", Name: "New Taiwan Dollar", Precision: 2, RegionEmoji: "🇹🇼"},
	CurrencyMeta{Code: "USD", Symbol: "$", Name: "United States Dollar", Precision: 2, RegionEmoji: "🇺🇸"},
)

// NewReferenceTable copies metas into a new table. A later meta with the same code
// replaces an earlier one.
func NewReferenceTable(metas ...CurrencyMeta) *ReferenceTable {
	t := &ReferenceTable{
		metas: make(map[string]CurrencyMeta, len(metas)),
		codes: make([]string, 0, len(metas)),
	}

	for _, m := range metas {
		if _, exists := t.metas[m.Code]; !exists {
			t.codes = append(t.codes, m.Code)
		}

		t.metas[m.Code] = m
	}

	sort.Strings(t.codes)

	return t
}

func (t *ReferenceTable) Lookup(code string) (CurrencyMeta, bool) {
	m, ok := t.metas[code]
	return m, ok
}

// Codes returns the supported codes in alphabetical order. The slice is a copy.
func (t *ReferenceTable) Codes() []string {
	codes := make([]string, len(t.codes))
	copy(codes, t.codes)

	return codes
}

func (t *ReferenceTable) Len() int {
	return len(t.codes)
}
