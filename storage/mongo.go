package storage

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	currency "github.com/malusev998/currency-rates"
)

type mongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStorage connects to c.ConnectionString and stores records in the
// collection named by c.TableName.
func NewMongoStorage(c MongoDBConfig) (currency.Storage, error) {
	ctx := contextOrBackground(c.Ctx)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.ConnectionString))

	if err != nil {
		return nil, err
	}

	return mongoStorage{
		client:     client,
		collection: client.Database(c.Database).Collection(c.TableName),
	}, nil
}

func (m mongoStorage) Store(ctx context.Context, record currency.Record) error {
	document, err := RecordToDocument(record)

	if err == nil {
		_, err = m.collection.ReplaceOne(
			ctx,
			bson.M{"_id": record.RatesID},
			document,
			options.Replace().SetUpsert(true),
		)
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

	var writeErr mongo.WriteException
	var commandErr mongo.CommandError

	switch {
	case errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0:
		storeErr.Code = strconv.Itoa(writeErr.WriteErrors[0].Code)
		storeErr.Message = writeErr.WriteErrors[0].Message
	case errors.As(err, &commandErr):
		storeErr.Code = strconv.Itoa(int(commandErr.Code))
		storeErr.Message = commandErr.Message
	}

	return storeErr
}

func (m mongoStorage) GetStorageProviderName() string {
	return "MongoDB collection " + m.collection.Name()
}

func (m mongoStorage) Close() error {
	return m.client.Disconnect(context.Background())
}

// RecordToDocument keys the document by the rates id and keeps rates as Decimal128.
func RecordToDocument(record currency.Record) (bson.D, error) {
	data := make(bson.A, 0, len(record.Data))

	for _, e := range record.Data {
		rate, err := primitive.ParseDecimal128(e.ExchangeRate.String())
		if err != nil {
			return nil, err
		}

		data = append(data, bson.D{
			{Key: "code", Value: e.Code},
			{Key: "symbol", Value: e.Symbol},
			{Key: "name", Value: e.Name},
			{Key: "exchange-rate", Value: rate},
			{Key: "precision", Value: int32(e.Precision)},
			{Key: "region-emoji", Value: e.RegionEmoji},
		})
	}

	return bson.D{
		{Key: "_id", Value: record.RatesID},
		{Key: "rates-id", Value: record.RatesID},
		{Key: "timestamp", Value: record.Timestamp},
		{Key: "base-currency", Value: record.BaseCurrency},
		{Key: "data", Value: data},
	}, nil
}
