package handler

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-rates"
)

const (
	APIBaseURL = "API_BASE_URL"
	APIKey     = "API_KEY"
	TableName  = "TABLE_NAME"
	LogLevel   = "LOG_LEVEL"

	Storage          = "STORAGE"
	AWSRegion        = "AWS_REGION"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	MySQLDSN         = "MYSQL_DSN"
	MySQLMigrate     = "MYSQL_MIGRATE"
	MongoURI         = "MONGO_URI"
	MongoDatabase    = "MONGO_DATABASE"
	RedisAddr        = "REDIS_ADDR"
	RedisPassword    = "REDIS_PASSWORD"
	RedisDB          = "REDIS_DB"
	PushgatewayURL   = "PUSHGATEWAY_URL"
)

type Config struct {
	APIBaseURL string
	APIKey     string
	TableName  string
	LogLevel   logrus.Level

	Storage          currency.Provider
	AWSRegion        string
	DynamoDBEndpoint string
	MySQLDSN         string
	MySQLMigrate     bool
	MongoURI         string
	MongoDatabase    string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	PushgatewayURL   string
}

// NewViper returns a viper instance bound to the environment variables the job reads.
// DYNAMODB_TABLE is accepted as an alias of TABLE_NAME.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(Storage, string(currency.DynamoDBProvider))
	v.SetDefault(MongoDatabase, "currency")
	v.SetDefault(RedisDB, 0)
	v.SetDefault(MySQLMigrate, false)

	_ = v.BindEnv(TableName, TableName, "DYNAMODB_TABLE")

	for _, key := range []string{
		APIBaseURL, APIKey, LogLevel, Storage, AWSRegion, DynamoDBEndpoint, MySQLDSN, MySQLMigrate,
		MongoURI, MongoDatabase, RedisAddr, RedisPassword, RedisDB, PushgatewayURL,
	} {
		_ = v.BindEnv(key)
	}

	return v
}

func required(v *viper.Viper, key string) (string, error) {
	value := strings.TrimSpace(v.GetString(key))

	if value == "" {
		return "", &currency.ConfigurationError{Variable: key}
	}

	return value, nil
}

// ParseLogLevel accepts logrus level names and the Python logging ones
// (WARNING, CRITICAL) in any case.
func ParseLogLevel(str string) (logrus.Level, error) {
	if strings.EqualFold(str, "critical") {
		return logrus.FatalLevel, nil
	}

	return logrus.ParseLevel(strings.ToLower(str))
}

func LoadConfig(v *viper.Viper) (*Config, error) {
	apiBaseURL, err := required(v, APIBaseURL)
	if err != nil {
		return nil, err
	}

	apiKey, err := required(v, APIKey)
	if err != nil {
		return nil, err
	}

	tableName, err := required(v, TableName)
	if err != nil {
		return nil, err
	}

	logLevel, err := required(v, LogLevel)
	if err != nil {
		return nil, err
	}

	level, err := ParseLogLevel(logLevel)
	if err != nil {
		return nil, &currency.ConfigurationError{Variable: LogLevel, Reason: err.Error()}
	}

	provider, err := currency.ConvertToProviderFromString(v.GetString(Storage))
	if err != nil {
		return nil, &currency.ConfigurationError{Variable: Storage, Reason: err.Error()}
	}

	cfg := &Config{
		APIBaseURL:       apiBaseURL,
		APIKey:           apiKey,
		TableName:        tableName,
		LogLevel:         level,
		Storage:          provider,
		AWSRegion:        v.GetString(AWSRegion),
		DynamoDBEndpoint: v.GetString(DynamoDBEndpoint),
		MySQLDSN:         v.GetString(MySQLDSN),
		MySQLMigrate:     v.GetBool(MySQLMigrate),
		MongoURI:         v.GetString(MongoURI),
		MongoDatabase:    v.GetString(MongoDatabase),
		RedisAddr:        v.GetString(RedisAddr),
		RedisPassword:    v.GetString(RedisPassword),
		RedisDB:          v.GetInt(RedisDB),
		PushgatewayURL:   v.GetString(PushgatewayURL),
	}

	switch provider {
	case currency.MySQLProvider:
		if cfg.MySQLDSN == "" {
			return nil, &currency.ConfigurationError{Variable: MySQLDSN}
		}
	case currency.MongoDBProvider:
		if cfg.MongoURI == "" {
			return nil, &currency.ConfigurationError{Variable: MongoURI}
		}
	case currency.RedisProvider:
		if cfg.RedisAddr == "" {
			return nil, &currency.ConfigurationError{Variable: RedisAddr}
		}
	}

	return cfg, nil
}
