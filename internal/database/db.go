package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/RevenueIntel/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT NOT NULL,
			order_date TIMESTAMP NOT NULL,
			product_name TEXT NOT NULL,
			category TEXT NOT NULL,
			region TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			revenue DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (order_id, product_name)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS model_states (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			trained_at TIMESTAMP NOT NULL,
			mae DOUBLE PRECISION NOT NULL,
			state JSONB NOT NULL
		)
	`)
	return err
}

// SaveOrders upserts a batch of orders in one transaction.
func (db *DB) SaveOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (
			order_id, order_date, product_name, category, region, quantity, unit_price, revenue
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id, product_name)
		DO UPDATE SET
			order_date = EXCLUDED.order_date,
			category = EXCLUDED.category,
			region = EXCLUDED.region,
			quantity = EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price,
			revenue = EXCLUDED.revenue
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx,
			o.OrderID, o.OrderDate, o.ProductName, o.Category, o.Region,
			o.Quantity, o.UnitPrice, o.Revenue,
		); err != nil {
			return fmt.Errorf("inserting order %s: %w", o.OrderID, err)
		}
	}

	return tx.Commit()
}

// GetOrders loads the full order history, oldest first. Implements
// models.OrderSource.
func (db *DB) GetOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT order_id, order_date, product_name, category, region, quantity, unit_price, revenue
		FROM orders
		ORDER BY order_date, order_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.OrderID, &o.OrderDate, &o.ProductName, &o.Category, &o.Region,
			&o.Quantity, &o.UnitPrice, &o.Revenue,
		); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveModelState stores an exported forecast model blob under a name.
func (db *DB) SaveModelState(ctx context.Context, name string, mae float64, state []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO model_states (name, trained_at, mae, state)
		VALUES ($1, $2, $3, $4)
	`, name, time.Now().UTC(), mae, state)
	if err != nil {
		return fmt.Errorf("saving model state %s: %w", name, err)
	}
	return nil
}

// LoadModelState returns the most recently trained blob stored under a name.
func (db *DB) LoadModelState(ctx context.Context, name string) ([]byte, error) {
	var state []byte
	err := db.QueryRowContext(ctx, `
		SELECT state FROM model_states
		WHERE name = $1
		ORDER BY trained_at DESC
		LIMIT 1
	`, name).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no stored model named %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading model state %s: %w", name, err)
	}
	return state, nil
}
