package currency_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-rates"
)

func TestCurrencies(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	asserts.Equal(10, currency.Currencies.Len())
	asserts.Equal(
		[]string{"AUD", "CZK", "EUR", "GBP", "JPY", "KRW", "MYR", "SGD", "TWD", "USD"},
		currency.Currencies.Codes(),
	)

	jpy, ok := currency.Currencies.Lookup("JPY")
	asserts.True(ok)
	asserts.Equal(currency.CurrencyMeta{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Precision: 0, RegionEmoji: "🇯🇵"}, jpy)

	_, ok = currency.Currencies.Lookup("ZZZ")
	asserts.False(ok)
}

func TestReferenceTable_IsNotMutableThroughAccessors(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	metas := []currency.CurrencyMeta{
		{Code: "USD", Symbol: "$", Name: "United States Dollar", Precision: 2},
		{Code: "EUR", Symbol: "€", Name: "Euro", Precision: 2},
	}
	table := currency.NewReferenceTable(metas...)

	metas[0].Symbol = "X"
	codes := table.Codes()
	codes[0] = "ZZZ"

	usd, ok := table.Lookup("USD")
	asserts.True(ok)
	asserts.Equal("$", usd.Symbol)
	asserts.Equal([]string{"EUR", "USD"}, table.Codes())
}

func TestNewReferenceTable_DuplicateCodes(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	table := currency.NewReferenceTable(
		currency.CurrencyMeta{Code: "USD", Name: "first"},
		currency.CurrencyMeta{Code: "USD", Name: "second"},
	)

	asserts.Equal(1, table.Len())
	usd, _ := table.Lookup("USD")
	asserts.Equal("second", usd.Name)
}
