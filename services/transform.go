package services

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	currency "github.com/malusev998/currency-rates"
)

const TimeZone = "Asia/Singapore"

var location = mustLoadLocation(TimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading time zone %s: %v", name, err))
	}

	return loc
}

// rfc3339Micro is RFC 3339 with a fixed six digit fraction.
const rfc3339Micro = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp converts epoch seconds to an ISO-8601 string in TimeZone.
func FormatTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).In(location).Format(time.RFC3339)
}

// formatEpoch formats a JSON number of epoch seconds. A fractional part is kept
// to the microsecond, rounded half to even, and printed only when non zero.
func formatEpoch(raw string) (string, error) {
	epoch, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}

	seconds := epoch.IntPart()
	micros := epoch.Sub(decimal.NewFromInt(seconds)).Shift(6).RoundBank(0).IntPart()
	t := time.Unix(seconds, micros*int64(time.Microsecond)).In(location)

	if t.Nanosecond() == 0 {
		return t.Format(time.RFC3339), nil
	}

	return t.Format(rfc3339Micro), nil
}

func requireField(raw currency.RawResponse, name string) (gjson.Result, error) {
	field := raw.Get(name)

	if !field.Exists() {
		return field, &currency.MissingFieldError{Field: name}
	}

	return field, nil
}

// Transform merges the rates of raw with the metadata in table. Rates keep the
// order they have in the API response; codes missing from table are dropped.
func Transform(raw currency.RawResponse, table *currency.ReferenceTable) (currency.Snapshot, error) {
	timestamp, err := requireField(raw, "timestamp")
	if err != nil {
		return currency.Snapshot{}, err
	}

	base, err := requireField(raw, "base")
	if err != nil {
		return currency.Snapshot{}, err
	}

	rates, err := requireField(raw, "rates")
	if err != nil {
		return currency.Snapshot{}, err
	}

	if timestamp.Type != gjson.Number {
		return currency.Snapshot{}, &currency.MalformedResponseError{Reason: "timestamp is not a number"}
	}

	if base.Type != gjson.String {
		return currency.Snapshot{}, &currency.MalformedResponseError{Reason: "base is not a string"}
	}

	if !rates.IsObject() {
		return currency.Snapshot{}, &currency.MalformedResponseError{Reason: "rates is not an object"}
	}

	formatted, err := formatEpoch(timestamp.Raw)
	if err != nil {
		return currency.Snapshot{}, &currency.MalformedResponseError{Reason: "timestamp", Err: err}
	}

	data := make([]currency.Entry, 0, table.Len())
	// a repeated code keeps the position of its first occurrence and the last value
	seen := make(map[string]int, table.Len())

	rates.ForEach(func(code, value gjson.Result) bool {
		meta, ok := table.Lookup(code.String())

		if !ok {
			return true
		}

		if value.Type != gjson.Number {
			err = &currency.MalformedResponseError{Reason: fmt.Sprintf("rate of %s is not a number", code.String())}
			return false
		}

		var rate decimal.Decimal

		rate, err = decimal.NewFromString(value.Raw)
		if err != nil {
			err = &currency.MalformedResponseError{Reason: fmt.Sprintf("rate of %s", code.String()), Err: err}
			return false
		}

		entry := currency.Entry{CurrencyMeta: meta, ExchangeRate: rate}

		if i, dup := seen[meta.Code]; dup {
			data[i] = entry
			return true
		}

		seen[meta.Code] = len(data)
		data = append(data, entry)

		return true
	})

	if err != nil {
		return currency.Snapshot{}, err
	}

	return currency.Snapshot{
		Timestamp:    formatted,
		BaseCurrency: base.String(),
		Data:         data,
	}, nil
}
