package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-rates"
	"github.com/malusev998/currency-rates/metrics"
)

type recordingStorage struct {
	err     error
	failOn  string
	panics  bool
	records []currency.Record
	closed  bool
}

func (r *recordingStorage) Store(ctx context.Context, record currency.Record) error {
	if r.panics {
		panic("storage exploded")
	}

	if r.err != nil && (r.failOn == "" || r.failOn == record.RatesID) {
		return r.err
	}

	r.records = append(r.records, record)

	return nil
}

func (r *recordingStorage) GetStorageProviderName() string {
	return "RecordingStorage"
}

func (r *recordingStorage) Close() error {
	r.closed = true
	return nil
}

func apiServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestHandler(st *recordingStorage) (*Handler, *test.Hook) {
	logger, hook := test.NewNullLogger()

	return &Handler{
		Logger: logger,
		Table: currency.NewReferenceTable(
			currency.CurrencyMeta{Code: "USD", Symbol: "$", Name: "United States Dollar", Precision: 2, RegionEmoji: "🇺🇸"},
		),
		NewStorage: func(ctx context.Context, cfg *Config) (currency.Storage, error) {
			return st, nil
		},
	}, hook
}

func decodeFailure(t *testing.T, res Response) string {
	var message string
	require.Nil(t, json.Unmarshal([]byte(res.Body), &message))

	return message
}

func TestHandler_Handle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusOK, `{"timestamp": 1700000000, "base": "SGD", "rates": {"USD": 0.74, "ZZZ": 99.9}}`)
		defer server.Close()

		st := &recordingStorage{}
		h, _ := newTestHandler(st)
		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusOK, res.StatusCode)
		asserts.JSONEq(`{"message": "Data successfully processed and stored.", "itemId": "N/A"}`, res.Body)
		asserts.True(st.closed)
		asserts.Len(st.records, 2)
		asserts.Equal("2023-11-15T06:13:20+08:00", st.records[0].RatesID)
		asserts.Equal(currency.LatestRatesID, st.records[1].RatesID)

		for _, record := range st.records {
			asserts.Len(record.Data, 1)
			asserts.Equal("USD", record.Data[0].Code)
			asserts.Equal("0.74", record.Data[0].ExchangeRate.String())
		}
	})

	t.Run("MissingConfiguration", func(t *testing.T) {
		asserts := require.New(t)
		st := &recordingStorage{}
		h, _ := newTestHandler(st)
		v := validViper()
		v.Set(APIKey, "")

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Equal("Configuration error: Missing environment variable 'API_KEY'", decodeFailure(t, res))
		asserts.Empty(st.records)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusInternalServerError, `{"error": "down"}`)
		defer server.Close()

		st := &recordingStorage{}
		h, _ := newTestHandler(st)
		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Equal(`Processing failed: API call failed with status code 500: {"error": "down"}`, decodeFailure(t, res))
		asserts.Empty(st.records)
	})

	t.Run("MissingField", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusOK, `{"timestamp": 1700000000, "base": "SGD"}`)
		defer server.Close()

		h, _ := newTestHandler(&recordingStorage{})
		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Contains(decodeFailure(t, res), "rates")
	})

	t.Run("StoreWriteError", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusOK, `{"timestamp": 1700000000, "base": "SGD", "rates": {"USD": 0.74}}`)
		defer server.Close()

		h, _ := newTestHandler(&recordingStorage{err: &currency.StoreWriteError{
			Key:     "2023-11-15T06:13:20+08:00",
			Code:    "ProvisionedThroughputExceededException",
			Message: "Rate exceeded",
		}})
		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.True(strings.HasPrefix(decodeFailure(t, res), "Processing failed: "))
		asserts.Contains(decodeFailure(t, res), "ProvisionedThroughputExceededException")
	})

	t.Run("PartialWriteIsCounted", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusOK, `{"timestamp": 1700000000, "base": "SGD", "rates": {"USD": 0.74}}`)
		defer server.Close()

		st := &recordingStorage{failOn: currency.LatestRatesID, err: errors.New("connection reset")}
		h, _ := newTestHandler(st)

		var runMetrics *metrics.Metrics
		h.NewMetrics = func() *metrics.Metrics {
			runMetrics = metrics.New()
			return runMetrics
		}

		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Len(st.records, 1)
		asserts.Equal("2023-11-15T06:13:20+08:00", st.records[0].RatesID)

		expected := `
# HELP rates_ingest_records_written_total Total number of snapshots written, by key kind.
# TYPE rates_ingest_records_written_total counter
rates_ingest_records_written_total{key="timestamp"} 1
`
		asserts.Nil(testutil.GatherAndCompare(runMetrics.Registry, strings.NewReader(expected), "rates_ingest_records_written_total"))

		expectedRuns := `
# HELP rates_ingest_runs_total Total number of ingestion runs by outcome.
# TYPE rates_ingest_runs_total counter
rates_ingest_runs_total{status="store_write_error"} 1
`
		asserts.Nil(testutil.GatherAndCompare(runMetrics.Registry, strings.NewReader(expectedRuns), "rates_ingest_runs_total"))
	})

	t.Run("StorageUnavailable", func(t *testing.T) {
		asserts := require.New(t)
		h, _ := newTestHandler(nil)
		h.NewStorage = func(ctx context.Context, cfg *Config) (currency.Storage, error) {
			return nil, errors.New("no credentials")
		}

		res := h.Handle(ctx, validViper())

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Contains(decodeFailure(t, res), "StorageUnavailable")
	})

	t.Run("UnexpectedPanic", func(t *testing.T) {
		asserts := require.New(t)
		server := apiServer(http.StatusOK, `{"timestamp": 1700000000, "base": "SGD", "rates": {"USD": 0.74}}`)
		defer server.Close()

		st := &recordingStorage{panics: true}
		h, hook := newTestHandler(st)
		v := validViper()
		v.Set(APIBaseURL, server.URL)

		res := h.Handle(ctx, v)

		asserts.Equal(http.StatusInternalServerError, res.StatusCode)
		asserts.Equal("An unexpected error occurred during processing.", decodeFailure(t, res))
		asserts.True(st.closed)
		asserts.Equal(logrus.ErrorLevel, hook.LastEntry().Level)
		asserts.Equal("storage exploded", hook.LastEntry().Data["panic"])
	})
}

func TestHandler_DoesNotLogAPIKey(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	server := apiServer(http.StatusUnauthorized, `{"error": "invalid key"}`)
	defer server.Close()

	h, hook := newTestHandler(&recordingStorage{})
	v := validViper()
	v.Set(APIBaseURL, server.URL)
	v.Set(APIKey, "do-not-log-me")
	v.Set(LogLevel, "DEBUG")

	_ = h.Handle(context.Background(), v)

	asserts.NotEmpty(hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		line, err := entry.String()
		asserts.Nil(err)
		asserts.NotContains(line, "do-not-log-me")
		asserts.NotEmpty(entry.Data["run_id"])
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	asserts.Equal("success", Status(nil))
	asserts.Equal("configuration_error", Status(&currency.ConfigurationError{Variable: APIKey}))
	asserts.Equal("upstream_error", Status(&currency.UpstreamError{StatusCode: 404}))
	asserts.Equal("malformed_response", Status(&currency.MalformedResponseError{Reason: "x"}))
	asserts.Equal("missing_field", Status(&currency.MissingFieldError{Field: "rates"}))
	asserts.Equal("store_write_error", Status(&currency.StoreWriteError{Code: "x"}))
	asserts.Equal("unexpected_error", Status(errors.New("something else")))
}
