// Package database provides SQL and in-memory stores for fuel price records.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const selectColumns = `SELECT id, station_name, address, price, fuel_type, updated_at FROM fuel_prices`

// DB wraps a SQL database connection and provides operations for fuel prices.
type DB struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

// New creates a new database connection for the given driver and makes sure
// the fuel_prices table exists.
func New(driver, dsn string, logger zerolog.Logger) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	d := &DB{
		db:     db,
		driver: driver,
		logger: logger.With().Str("component", "database").Str("driver", driver).Logger(),
	}

	if err := d.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) ensureSchema(ctx context.Context) error {
	content, err := schemaFS.ReadFile("schema/" + d.driver + ".sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	for _, stmt := range strings.Split(string(content), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	d.logger.Debug().Msg("schema ready")
	return nil
}

// Driver returns the name of the underlying driver.
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks if the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Insert stores a new price record and returns its id. The record's ID is ignored.
func (d *DB) Insert(ctx context.Context, p models.PriceRecord) (int64, error) {
	query := d.rebind(`
		INSERT INTO fuel_prices (station_name, address, price, fuel_type, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := d.db.QueryRowContext(ctx, query,
		p.StationName,
		p.Address,
		p.Price,
		p.FuelType,
		toMicros(p.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting price: %w", err)
	}

	d.logger.Debug().
		Int64("id", id).
		Str("station", p.StationName).
		Str("fuel_type", p.FuelType).
		Float64("price", p.Price).
		Msg("inserted price record")

	return id, nil
}

// Get returns the price record with the given id or models.ErrNotFound.
func (d *DB) Get(ctx context.Context, id int64) (models.PriceRecord, error) {
	row := d.db.QueryRowContext(ctx, d.rebind(selectColumns+` WHERE id = ?`), id)
	p, err := scanPrice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceRecord{}, models.ErrNotFound
	}
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("getting price %d: %w", id, err)
	}
	return p, nil
}

// List returns all price records ordered by ascending price.
func (d *DB) List(ctx context.Context) ([]models.PriceRecord, error) {
	rows, err := d.db.QueryContext(ctx, selectColumns+` ORDER BY price ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

// ListByFuelType returns the price records of one fuel type ordered by ascending price.
func (d *DB) ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		d.rebind(selectColumns+` WHERE fuel_type = ? ORDER BY price ASC, id ASC`),
		fuelType,
	)
	if err != nil {
		return nil, fmt.Errorf("listing prices for %q: %w", fuelType, err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

// Update overwrites the mutable fields of an existing record in one transaction.
func (d *DB) Update(ctx context.Context, p models.PriceRecord) error {
	query := d.rebind(`
		UPDATE fuel_prices
		SET station_name = ?, address = ?, price = ?, fuel_type = ?, updated_at = ?
		WHERE id = ?
	`)

	err := d.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			p.StationName,
			p.Address,
			p.Price,
			p.FuelType,
			toMicros(p.UpdatedAt),
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("updating price %d: %w", p.ID, err)
		}
		return expectOneRow(res)
	})
	if err != nil {
		return err
	}

	d.logger.Debug().Int64("id", p.ID).Float64("price", p.Price).Msg("updated price record")
	return nil
}

// Delete removes a record permanently.
func (d *DB) Delete(ctx context.Context, id int64) error {
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, d.rebind(`DELETE FROM fuel_prices WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("deleting price %d: %w", id, err)
		}
		return expectOneRow(res)
	})
	if err != nil {
		return err
	}

	d.logger.Debug().Int64("id", id).Msg("deleted price record")
	return nil
}

// Count returns the total number of price records in the database.
func (d *DB) Count(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_prices").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting prices: %w", err)
	}
	return count, nil
}

// InsertAll stores all records in a single transaction. Either every record
// is written or none is.
func (d *DB) InsertAll(ctx context.Context, records []models.PriceRecord) (int, error) {
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		return d.insertRecords(ctx, tx, records)
	})
	if err != nil {
		return 0, err
	}

	d.logger.Info().Int("count", len(records)).Msg("inserted price records")
	return len(records), nil
}

// ReplaceAll deletes every record and inserts the given ones in a single
// transaction. UpdatedAt values are kept as supplied.
func (d *DB) ReplaceAll(ctx context.Context, records []models.PriceRecord) (int, error) {
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fuel_prices`); err != nil {
			return fmt.Errorf("clearing prices: %w", err)
		}
		return d.insertRecords(ctx, tx, records)
	})
	if err != nil {
		return 0, err
	}

	d.logger.Info().Int("count", len(records)).Msg("replaced all price records")
	return len(records), nil
}

func (d *DB) insertRecords(ctx context.Context, tx *sql.Tx, records []models.PriceRecord) error {
	stmt, err := tx.PrepareContext(ctx, d.rebind(`
		INSERT INTO fuel_prices (station_name, address, price, fuel_type, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range records {
		if _, err := stmt.ExecContext(ctx, p.StationName, p.Address, p.Price, p.FuelType, toMicros(p.UpdatedAt)); err != nil {
			return fmt.Errorf("inserting price for %q: %w", p.StationName, err)
		}
	}
	return nil
}

func (d *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanPrice(row scannable) (models.PriceRecord, error) {
	var (
		p         models.PriceRecord
		updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.StationName, &p.Address, &p.Price, &p.FuelType, &updatedAt); err != nil {
		return models.PriceRecord{}, err
	}
	p.UpdatedAt = fromMicros(updatedAt)
	return p, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectPrices(rows rowsIter) ([]models.PriceRecord, error) {
	out := []models.PriceRecord{}
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prices: %w", err)
	}
	return out, nil
}
