package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	currency "github.com/malusev998/currency-rates"
)

// PutItemAPI is the part of *dynamodb.Client the storage needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type dynamoStorage struct {
	client    PutItemAPI
	tableName string
}

// NewDynamoDBStorage uses c.Client when set, otherwise a client built from the
// default AWS credential chain (the execution role when running in Lambda).
func NewDynamoDBStorage(c DynamoDBConfig) (currency.Storage, error) {
	client := c.Client

	if client == nil {
		opts := make([]func(*awsconfig.LoadOptions) error, 0, 1)

		if c.Region != "" {
			opts = append(opts, awsconfig.WithRegion(c.Region))
		}

		cfg, err := awsconfig.LoadDefaultConfig(contextOrBackground(c.Ctx), opts...)
		if err != nil {
			return nil, err
		}

		client = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if c.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.Endpoint)
			}
		})
	}

	return dynamoStorage{
		client:    client,
		tableName: c.TableName,
	}, nil
}

func (d dynamoStorage) Store(ctx context.Context, record currency.Record) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      RecordToItem(record),
	})

	if err == nil {
		return nil
	}

	storeErr := &currency.StoreWriteError{
		Key:     record.RatesID,
		Code:    unknownErrorCode,
		Message: err.Error(),
		Err:     err,
	}

	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		storeErr.Code = apiErr.ErrorCode()
		storeErr.Message = apiErr.ErrorMessage()
	}

	return storeErr
}

func (d dynamoStorage) GetStorageProviderName() string {
	return "DynamoDB table " + d.tableName
}

func (d dynamoStorage) Close() error {
	return nil
}

// RecordToItem lays a record out as a DynamoDB item: strings as S, numbers as N
// and the entries as a list of maps.
func RecordToItem(record currency.Record) map[string]types.AttributeValue {
	data := make([]types.AttributeValue, 0, len(record.Data))

	for _, e := range record.Data {
		data = append(data, &types.AttributeValueMemberM{
			Value: map[string]types.AttributeValue{
				"code":          &types.AttributeValueMemberS{Value: e.Code},
				"symbol":        &types.AttributeValueMemberS{Value: e.Symbol},
				"name":          &types.AttributeValueMemberS{Value: e.Name},
				"exchange-rate": &types.AttributeValueMemberN{Value: e.ExchangeRate.String()},
				"precision":     &types.AttributeValueMemberN{Value: strconv.Itoa(e.Precision)},
				"region-emoji":  &types.AttributeValueMemberS{Value: e.RegionEmoji},
			},
		})
	}

	return map[string]types.AttributeValue{
		"rates-id":      &types.AttributeValueMemberS{Value: record.RatesID},
		"timestamp":     &types.AttributeValueMemberS{Value: record.Timestamp},
		"base-currency": &types.AttributeValueMemberS{Value: record.BaseCurrency},
		"data":          &types.AttributeValueMemberL{Value: data},
	}
}
