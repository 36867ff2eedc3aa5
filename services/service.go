package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	currency "github.com/malusev998/currency-rates"
)

// Service runs one fetch, transform and persist cycle.
type Service struct {
	Fetcher currency.Fetcher
	Storage currency.Storage
	Table   *currency.ReferenceTable
	Logger  logrus.FieldLogger
	OnWrite func(ratesID string)
}

func (f Service) Save(ctx context.Context) (currency.Snapshot, error) {
	logger := f.Logger

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	table := f.Table

	if table == nil {
		table = currency.Currencies
	}

	raw, err := f.Fetcher.Fetch(ctx)
	if err != nil {
		return currency.Snapshot{}, err
	}

	snapshot, err := Transform(raw, table)
	if err != nil {
		logger.WithError(err).Error("JSON reformatting failed")
		return currency.Snapshot{}, err
	}

	if item, err := json.Marshal(currency.NewRecord(snapshot.Timestamp, snapshot)); err == nil {
		logger.Debugf("Reformatted item: %s", item)
	}

	persister := Persister{Storage: f.Storage, Logger: logger, OnWrite: f.OnWrite}

	if err := persister.Persist(ctx, snapshot); err != nil {
		return currency.Snapshot{}, err
	}

	return snapshot, nil
}
