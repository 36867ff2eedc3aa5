package currency

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LatestRatesID is the key of the record that always holds the most recent snapshot.
const LatestRatesID = "latest-rates"

type (
	CurrencyMeta struct {
		Code        string
		Symbol      string
		Name        string
		Precision   int
		RegionEmoji string
	}

	Entry struct {
		CurrencyMeta
		ExchangeRate decimal.Decimal
	}

	Snapshot struct {
		Timestamp    string
		BaseCurrency string
		Data         []Entry
	}

	// Record is a snapshot addressed by the key it is stored under.
	Record struct {
		RatesID string
		Snapshot
	}
)

func NewRecord(ratesID string, snapshot Snapshot) Record {
	return Record{RatesID: ratesID, Snapshot: snapshot}
}

type (
	jsonEntry struct {
		Code         string      `json:"code"`
		Symbol       string      `json:"symbol"`
		Name         string      `json:"name"`
		ExchangeRate json.Number `json:"exchange-rate"`
		Precision    int         `json:"precision"`
		RegionEmoji  string      `json:"region-emoji"`
	}

	jsonRecord struct {
		RatesID      string  `json:"rates-id"`
		Timestamp    string  `json:"timestamp"`
		BaseCurrency string  `json:"base-currency"`
		Data         []Entry `json:"data"`
	}
)

// MarshalJSON writes the entry with the store field names and the rate as a JSON number.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEntry{
		Code:         e.Code,
		Symbol:       e.Symbol,
		Name:         e.Name,
		ExchangeRate: json.Number(e.ExchangeRate.String()),
		Precision:    e.Precision,
		RegionEmoji:  e.RegionEmoji,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw jsonEntry

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rate, err := decimal.NewFromString(raw.ExchangeRate.String())
	if err != nil {
		return err
	}

	*e = Entry{
		CurrencyMeta: CurrencyMeta{
			Code:        raw.Code,
			Symbol:      raw.Symbol,
			Name:        raw.Name,
			Precision:   raw.Precision,
			RegionEmoji: raw.RegionEmoji,
		},
		ExchangeRate: rate,
	}

	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	data := r.Data
	if data == nil {
		data = []Entry{}
	}

	return json.Marshal(jsonRecord{
		RatesID:      r.RatesID,
		Timestamp:    r.Timestamp,
		BaseCurrency: r.BaseCurrency,
		Data:         data,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw jsonRecord

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{
		RatesID: raw.RatesID,
		Snapshot: Snapshot{
			Timestamp:    raw.Timestamp,
			BaseCurrency: raw.BaseCurrency,
			Data:         raw.Data,
		},
	}

	return nil
}
