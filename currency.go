package currency

import "context"

type (
	Fetcher interface {
		Fetch(ctx context.Context) (RawResponse, error)
	}

	Storage interface {
		Store(ctx context.Context, record Record) error
		GetStorageProviderName() string
		Close() error
	}

	Service interface {
		Save(ctx context.Context) (Snapshot, error)
	}
)
