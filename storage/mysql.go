package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"

	currency "github.com/malusev998/currency-rates"
)

type MySQLStorage struct {
	db        *sql.DB
	tableName string
}

func NewMySQLStorage(c MySQLConfig) (currency.Storage, error) {
	db, err := sql.Open("mysql", c.ConnectionString)

	if err != nil {
		return nil, err
	}

	st, err := NewSQLStorage(contextOrBackground(c.Ctx), db, c.TableName, c.Migrate)

	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

// NewSQLStorage wraps an open database. With migrate set the rates table is
// created when it does not exist yet.
func NewSQLStorage(ctx context.Context, db *sql.DB, tableName string, migrate bool) (*MySQLStorage, error) {
	st := &MySQLStorage{
		db:        db,
		tableName: tableName,
	}

	if migrate {
		if err := st.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (m *MySQLStorage) Migrate(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s(rates_id VARCHAR(64) NOT NULL PRIMARY KEY, timestamp VARCHAR(64) NOT NULL, base_currency VARCHAR(8) NOT NULL, data JSON NOT NULL);",
		m.tableName,
	))

	return err
}

func (m *MySQLStorage) Drop(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", m.tableName))

	return err
}

func (m *MySQLStorage) Store(ctx context.Context, record currency.Record) error {
	if err := m.store(ctx, record); err != nil {
		return mysqlStoreError(record.RatesID, err)
	}

	return nil
}

func (m *MySQLStorage) store(ctx context.Context, record currency.Record) error {
	data, err := json.Marshal(record.Data)

	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s(rates_id, timestamp, base_currency, data) VALUES (?,?,?,?) ON DUPLICATE KEY UPDATE timestamp = VALUES(timestamp), base_currency = VALUES(base_currency), data = VALUES(data);",
		m.tableName,
	))

	if err != nil {
		_ = tx.Rollback()
		return err
	}

	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, record.RatesID, record.Timestamp, record.BaseCurrency, string(data)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (m *MySQLStorage) GetStorageProviderName() string {
	return "MySQL table " + m.tableName
}

func (m *MySQLStorage) Close() error {
	return m.db.Close()
}

func mysqlStoreError(key string, err error) error {
	storeErr := &currency.StoreWriteError{
		Key:     key,
		Code:    unknownErrorCode,
		Message: err.Error(),
		Err:     err,
	}

	var mysqlErr *mysql.MySQLError

	if errors.As(err, &mysqlErr) {
		storeErr.Code = strconv.Itoa(int(mysqlErr.Number))
		storeErr.Message = mysqlErr.Message
	}

	return storeErr
}
