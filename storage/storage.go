package storage

import (
	"context"
	"errors"
	"fmt"

	currency "github.com/malusev998/currency-rates"
)

type (
	BaseConfig struct {
		Ctx       context.Context
		TableName string
	}
	DynamoDBConfig struct {
		BaseConfig
		Region   string
		Endpoint string
		Client   PutItemAPI
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		Migrate          bool
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
	}
	RedisConfig struct {
		BaseConfig
		Addr     string
		Password string
		DB       int
	}
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
	ErrInvalidConfig   = errors.New("storage config does not match provider")
)

const unknownErrorCode = "Unknown"

func NewStorage(provider currency.Provider, config interface{}) (currency.Storage, error) {
	switch provider {
	case currency.DynamoDBProvider:
		c, ok := config.(DynamoDBConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, provider)
		}
		return NewDynamoDBStorage(c)
	case currency.MySQLProvider:
		c, ok := config.(MySQLConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, provider)
		}
		return NewMySQLStorage(c)
	case currency.MongoDBProvider:
		c, ok := config.(MongoDBConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, provider)
		}
		return NewMongoStorage(c)
	case currency.RedisProvider:
		c, ok := config.(RedisConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, provider)
		}
		return NewRedisStorage(c)
	}

	return nil, ErrStorageNotFound
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}
