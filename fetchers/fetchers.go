package fetchers

import (
	"context"
	"net/http"
	"strings"
)

const ExchangeRatesAPIURL = "https://api.exchangeratesapi.io/v1"

func getData(ctx context.Context, url string, currencies []string) (*http.Request, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, "", err
	}

	req.Header.Add("Accept", "application/json")

	return req, strings.Join(currencies, ","), nil
}
