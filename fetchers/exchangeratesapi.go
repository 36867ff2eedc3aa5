package fetchers

import (
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/sirupsen/logrus"

	currency "github.com/malusev998/currency-rates"
)

type (
	// ExchangeRatesAPIFetcher reads the latest rates from an exchangeratesapi.io
	// compatible endpoint, restricted to the codes of Table.
	ExchangeRatesAPIFetcher struct {
		URL    string
		APIKey string
		Table  *currency.ReferenceTable
		Client *http.Client
		Logger logrus.FieldLogger
	}
)

func (e ExchangeRatesAPIFetcher) handleHTTPStatusCodeError(res *http.Response, body []byte) error {
	if res.StatusCode != http.StatusOK {
		return &currency.UpstreamError{
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}

	return nil
}

func (e ExchangeRatesAPIFetcher) Fetch(ctx context.Context) (currency.RawResponse, error) {
	url := strings.TrimRight(e.URL, "/")

	if url == "" {
		url = ExchangeRatesAPIURL
	}

	table := e.Table

	if table == nil {
		table = currency.Currencies
	}

	client := e.Client

	if client == nil {
		client = http.DefaultClient
	}

	logger := e.Logger

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := url + "/latest"

	req, symbols, err := getData(ctx, endpoint, table.Codes())

	if err != nil {
		return currency.RawResponse{}, err
	}

	// codes are plain ASCII letters, so the comma separated list is sent as is
	req.URL.RawQuery = "access_key=" + neturl.QueryEscape(e.APIKey) + "&symbols=" + symbols

	logger.Infof("Calling API endpoint: %s?symbols=%s", endpoint, symbols)

	res, err := client.Do(req)

	if err != nil {
		// *url.Error embeds the request URL, which carries the key
		err = &currency.UpstreamError{Err: redact(err, e.APIKey)}
		logger.WithError(err).Error("API call failed")

		return currency.RawResponse{}, err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)

	if err != nil {
		err = &currency.UpstreamError{StatusCode: res.StatusCode, Err: err}
		logger.WithError(err).Error("Failed to read API response")

		return currency.RawResponse{}, err
	}

	if err := e.handleHTTPStatusCodeError(res, body); err != nil {
		logger.WithError(err).Error("API call failed")
		return currency.RawResponse{}, err
	}

	data, err := currency.ParseRawResponse(body)

	if err != nil {
		logger.WithError(err).Error("Failed to decode JSON from API response")
		return currency.RawResponse{}, err
	}

	logger.Info("Successfully retrieved and parsed data from API.")
	logger.Debugf("Parsed data: %s", data)

	return data, nil
}

type redactedError struct {
	msg string
	err error
}

func (r redactedError) Error() string { return r.msg }

func (r redactedError) Unwrap() error { return r.err }

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}

	msg := err.Error()

	for _, s := range []string{secret, neturl.QueryEscape(secret)} {
		msg = strings.ReplaceAll(msg, s, "REDACTED")
	}

	if msg == err.Error() {
		return err
	}

	return redactedError{msg: msg, err: err}
}
