package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	currency "github.com/malusev998/currency-rates"
)

// Persister writes a snapshot under its timestamp and then under
// currency.LatestRatesID. The two writes are independent: when the second one
// fails the timestamped record is already stored and the latest record is stale.
type Persister struct {
	Storage currency.Storage
	Logger  logrus.FieldLogger
	// OnWrite, when set, is called with the rates id of every record stored.
	OnWrite func(ratesID string)
}

func (p Persister) Persist(ctx context.Context, snapshot currency.Snapshot) error {
	logger := p.Logger

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := p.store(ctx, currency.NewRecord(snapshot.Timestamp, snapshot)); err != nil {
		logger.WithError(err).Error("Error putting timestamped item into storage")
		return err
	}

	logger.Infof("Successfully ingested timestamped item into %s", p.Storage.GetStorageProviderName())

	if err := p.store(ctx, currency.NewRecord(currency.LatestRatesID, snapshot)); err != nil {
		logger.WithError(err).Errorf("Error updating '%s' item, timestamped item %s is already stored", currency.LatestRatesID, snapshot.Timestamp)
		return err
	}

	logger.Infof("Successfully updated '%s' item in %s", currency.LatestRatesID, p.Storage.GetStorageProviderName())

	return nil
}

func (p Persister) store(ctx context.Context, record currency.Record) error {
	err := p.Storage.Store(ctx, record)

	if err == nil {
		if p.OnWrite != nil {
			p.OnWrite(record.RatesID)
		}

		return nil
	}

	var storeErr *currency.StoreWriteError

	if errors.As(err, &storeErr) {
		return err
	}

	return &currency.StoreWriteError{
		Key:     record.RatesID,
		Code:    "Unknown",
		Message: err.Error(),
		Err:     err,
	}
}
