package currency

import (
	"fmt"
	"strings"
)

// Provider names the storage backend the rates table lives in.
type Provider string

const (
	DynamoDBProvider Provider = "dynamodb"
	MongoDBProvider  Provider = "mongodb"
	MySQLProvider    Provider = "mysql"
	RedisProvider    Provider = "redis"
	EmptyProvider    Provider = ""
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "dynamodb", "dynamo":
		return DynamoDBProvider, nil
	case "mongodb", "mongo":
		return MongoDBProvider, nil
	case "mysql":
		return MySQLProvider, nil
	case "redis":
		return RedisProvider, nil
	}

	return EmptyProvider, fmt.Errorf("value %s is not valid Provider", str)
}

func (p Provider) String() string {
	return string(p)
}
