package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	currency "github.com/malusev998/currency-rates"
)

// RedisSetter is the part of a redis client the storage needs.
type RedisSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisStorage struct {
	client RedisSetter
	closer io.Closer
	prefix string
}

func NewRedisStorage(c RedisConfig) (currency.Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	return redisStorage{
		client: client,
		closer: client,
		prefix: c.TableName,
	}, nil
}

// NewRedisStorageWithClient stores records through an existing client. Keys are
// "<prefix>:<rates id>".
func NewRedisStorageWithClient(client RedisSetter, prefix string) currency.Storage {
	st := redisStorage{client: client, prefix: prefix}

	if closer, ok := client.(io.Closer); ok {
		st.closer = closer
	}

	return st
}

func (r redisStorage) Key(ratesID string) string {
	return r.prefix + ":" + ratesID
}

func (r redisStorage) Store(ctx context.Context, record currency.Record) error {
	payload, err := json.Marshal(record)

	if err == nil {
		err = r.client.Set(ctx, r.Key(record.RatesID), payload, 0).Err()
	}

	if err == nil {
		return nil
	}

	storeErr := &currency.StoreWriteError{
		Key:     record.RatesID,
		Code:    unknownErrorCode,
		Message: err.Error(),
		Err:     err,
	}

	// server replies start with an upper case code, e.g. "WRONGTYPE ..." or "NOAUTH ..."
	var redisErr redis.Error

	if errors.As(err, &redisErr) {
		if code, message, ok := strings.Cut(redisErr.Error(), " "); ok {
			storeErr.Code = code
			storeErr.Message = message
		}
	}

	return storeErr
}

func (r redisStorage) GetStorageProviderName() string {
	return "Redis keyspace " + r.prefix
}

func (r redisStorage) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}
