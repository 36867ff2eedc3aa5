package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-rates"
	"github.com/malusev998/currency-rates/storage"
)

type redisSetterStub struct {
	err    error
	keys   []string
	values [][]byte
}

func (r *redisSetterStub) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value.([]byte))

	if r.err != nil {
		return redis.NewStatusResult("", r.err)
	}

	return redis.NewStatusResult("OK", nil)
}

type redisServerError string

func (e redisServerError) Error() string { return string(e) }

func (e redisServerError) RedisError() {}

func TestRedisStorage_Store(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("SetsJSONDocument", func(t *testing.T) {
		asserts := require.New(t)
		stub := &redisSetterStub{}
		st := storage.NewRedisStorageWithClient(stub, "exchange-rates")
		record := testRecord(currency.LatestRatesID)

		asserts.Nil(st.Store(ctx, record))
		asserts.Equal([]string{"exchange-rates:latest-rates"}, stub.keys)

		var stored currency.Record
		asserts.Nil(json.Unmarshal(stub.values[0], &stored))
		asserts.Equal(record.RatesID, stored.RatesID)
		asserts.Equal(record.BaseCurrency, stored.BaseCurrency)
		asserts.Len(stored.Data, 2)
		asserts.Nil(st.Close())
	})

	t.Run("MapsServerError", func(t *testing.T) {
		asserts := require.New(t)
		stub := &redisSetterStub{err: redisServerError("NOAUTH Authentication required.")}
		st := storage.NewRedisStorageWithClient(stub, "exchange-rates")

		err := st.Store(ctx, testRecord(currency.LatestRatesID))

		var storeErr *currency.StoreWriteError
		asserts.True(errors.As(err, &storeErr))
		asserts.Equal("NOAUTH", storeErr.Code)
		asserts.Equal("Authentication required.", storeErr.Message)
	})

	t.Run("MapsNetworkError", func(t *testing.T) {
		asserts := require.New(t)
		stub := &redisSetterStub{err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")}
		st := storage.NewRedisStorageWithClient(stub, "exchange-rates")

		err := st.Store(ctx, testRecord("2023-11-15T06:13:20+08:00"))

		var storeErr *currency.StoreWriteError
		asserts.True(errors.As(err, &storeErr))
		asserts.Equal("Unknown", storeErr.Code)
		asserts.Equal("2023-11-15T06:13:20+08:00", storeErr.Key)
	})
}
