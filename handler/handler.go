package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-rates"
	"github.com/malusev998/currency-rates/fetchers"
	"github.com/malusev998/currency-rates/metrics"
	"github.com/malusev998/currency-rates/services"
	"github.com/malusev998/currency-rates/storage"
)

const (
	successMessage    = "Data successfully processed and stored."
	unexpectedMessage = "An unexpected error occurred during processing."
	notApplicable     = "N/A"

	// itemIDAttribute is the attribute the success response reports as the item
	// id. Stored items never carry it, so the response always says notApplicable.
	itemIDAttribute = "UserID"

	statusSuccess    = "success"
	statusConfig     = "configuration_error"
	statusUnexpected = "unexpected_error"
)

type (
	Response struct {
		StatusCode int    `json:"statusCode"`
		Body       string `json:"body"`
	}

	successBody struct {
		Message string `json:"message"`
		ItemID  string `json:"itemId"`
	}

	StorageFactory func(ctx context.Context, cfg *Config) (currency.Storage, error)

	// Handler runs one ingestion per Handle call. It keeps no state between runs
	// apart from its logger and the read only reference table.
	Handler struct {
		Logger     *logrus.Logger
		HTTPClient *http.Client
		Table      *currency.ReferenceTable
		NewStorage StorageFactory
		// NewMetrics builds the collectors of one run. Defaults to metrics.New.
		NewMetrics func() *metrics.Metrics
	}
)

func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	return logger
}

func New() *Handler {
	return &Handler{
		Logger:     NewLogger(),
		Table:      currency.Currencies,
		NewStorage: NewStorage,
	}
}

// NewStorage opens the backend selected by cfg.Storage.
func NewStorage(ctx context.Context, cfg *Config) (currency.Storage, error) {
	base := storage.BaseConfig{Ctx: ctx, TableName: cfg.TableName}

	var config interface{}

	switch cfg.Storage {
	case currency.DynamoDBProvider:
		config = storage.DynamoDBConfig{BaseConfig: base, Region: cfg.AWSRegion, Endpoint: cfg.DynamoDBEndpoint}
	case currency.MySQLProvider:
		config = storage.MySQLConfig{BaseConfig: base, ConnectionString: cfg.MySQLDSN, Migrate: cfg.MySQLMigrate}
	case currency.MongoDBProvider:
		config = storage.MongoDBConfig{BaseConfig: base, ConnectionString: cfg.MongoURI, Database: cfg.MongoDatabase}
	case currency.RedisProvider:
		config = storage.RedisConfig{BaseConfig: base, Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	}

	return storage.NewStorage(cfg.Storage, config)
}

func failure(message string) Response {
	body, _ := json.Marshal(message)

	return Response{StatusCode: http.StatusInternalServerError, Body: string(body)}
}

func success(itemID string) Response {
	body, _ := json.Marshal(successBody{Message: successMessage, ItemID: itemID})

	return Response{StatusCode: http.StatusOK, Body: string(body)}
}

func itemID(item map[string]types.AttributeValue) string {
	if id, ok := item[itemIDAttribute].(*types.AttributeValueMemberS); ok {
		return id.Value
	}

	return notApplicable
}

// Status names the error kind of err for logs and metrics.
func Status(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, currency.ErrConfiguration):
		return statusConfig
	case errors.Is(err, currency.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, currency.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, currency.ErrMissingField):
		return "missing_field"
	case errors.Is(err, currency.ErrStoreWrite):
		return "store_write_error"
	}

	return statusUnexpected
}

// Handle loads the configuration from v and runs fetch, transform and persist.
// Every outcome, including panics, is turned into a Response.
func (h *Handler) Handle(ctx context.Context, v *viper.Viper) (res Response) {
	if h.Logger == nil {
		h.Logger = NewLogger()
	}

	started := time.Now()
	newMetrics := h.NewMetrics

	if newMetrics == nil {
		newMetrics = metrics.New
	}

	runMetrics := newMetrics()
	status := statusUnexpected
	logger := h.Logger.WithField("run_id", uuid.NewString())

	var cfg *Config

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("An unexpected error occurred")
			status = statusUnexpected
			res = failure(unexpectedMessage)
		}

		runMetrics.RecordRun(status, started, time.Now())

		if cfg == nil || cfg.PushgatewayURL == "" {
			return
		}

		if err := runMetrics.Push(cfg.PushgatewayURL); err != nil {
			logger.WithError(err).Warn("Failed to push metrics")
		}
	}()

	var err error

	cfg, err = LoadConfig(v)

	if err != nil {
		status = Status(err)
		logger.WithError(err).Error("Error: missing or invalid configuration")

		if status == statusConfig {
			return failure("Configuration error: " + err.Error())
		}

		return failure(unexpectedMessage)
	}

	h.Logger.SetLevel(cfg.LogLevel)
	logger = logger.WithField("storage", cfg.Storage.String())

	snapshot, err := h.run(ctx, cfg, logger, runMetrics.RecordWrite)
	status = Status(err)

	if err != nil {
		if status == statusUnexpected {
			logger.WithError(err).Error("An unexpected error occurred")
			return failure(unexpectedMessage)
		}

		logger.WithError(err).WithField("kind", status).Error("Processing failed")

		return failure("Processing failed: " + err.Error())
	}

	logger.WithField("timestamp", snapshot.Timestamp).Info(successMessage)

	return success(itemID(storage.RecordToItem(currency.NewRecord(snapshot.Timestamp, snapshot))))
}

func (h *Handler) run(
	ctx context.Context,
	cfg *Config,
	logger logrus.FieldLogger,
	onWrite func(ratesID string),
) (currency.Snapshot, error) {
	newStorage := h.NewStorage

	if newStorage == nil {
		newStorage = NewStorage
	}

	st, err := newStorage(ctx, cfg)

	if err != nil {
		return currency.Snapshot{}, &currency.StoreWriteError{Code: "StorageUnavailable", Message: err.Error(), Err: err}
	}

	defer func() {
		if err := st.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}()

	service := services.Service{
		Fetcher: fetchers.ExchangeRatesAPIFetcher{
			URL:    cfg.APIBaseURL,
			APIKey: cfg.APIKey,
			Table:  h.Table,
			Client: h.HTTPClient,
			Logger: logger,
		},
		Storage: st,
		Table:   h.Table,
		Logger:  logger,
		OnWrite: onWrite,
	}

	return service.Save(ctx)
}
