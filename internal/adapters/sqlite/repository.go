package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.PositionStore, ports.TransactionLog and
// ports.BudgetStore on a single SQLite database. Every mutation runs as
// one SQL statement inside SQLite's transactional write path, which
// gives the all-or-nothing persist discipline the ledger requires.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the database and verifies the schema.
// An unreadable database is reported as ErrStoreCorrupted; the caller
// must treat that as fatal at startup.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trader.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrStoreCorrupted, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrStoreCorrupted, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite serializes writers internally; the Go driver behaves best
	// with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to initialize database schema: %v", ports.ErrStoreCorrupted, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS positions (
		symbol TEXT PRIMARY KEY,
		entry_price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TIMESTAMP NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		profit_pct REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS daily_budget (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		profit_pct REAL NOT NULL,
		day TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions (ts);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PositionStore Implementation ---

// Insert saves a new open position. The symbol primary key doubles as a
// storage-level guard against duplicate positions.
func (r *Repository) Insert(ctx context.Context, pos *domain.Position) error {
	const query = `
	INSERT INTO positions (symbol, entry_price, quantity, entry_time, stop_loss, take_profit)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		pos.Symbol, pos.EntryPrice, pos.Quantity, pos.EntryTime.UTC(), pos.StopLoss, pos.TakeProfit)
	if err != nil {
		return fmt.Errorf("failed to insert position for symbol %s: %w", pos.Symbol, err)
	}
	r.logger.Debug(ctx, "Position persisted", map[string]interface{}{"symbol": pos.Symbol})
	return nil
}

// Delete removes the position for a symbol.
func (r *Repository) Delete(ctx context.Context, symbol string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position for symbol %s: %w", symbol, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete of %s: %w", symbol, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("position for %s not found in store: %w", symbol, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Persisted position removed", map[string]interface{}{"symbol": symbol})
	return nil
}

// LoadAll reconstructs all open positions. An empty table yields an
// empty slice.
func (r *Repository) LoadAll(ctx context.Context) ([]*domain.Position, error) {
	const query = `
	SELECT symbol, entry_price, quantity, entry_time, stop_loss, take_profit
	FROM positions ORDER BY entry_time ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		p := &domain.Position{}
		if err := rows.Scan(&p.Symbol, &p.EntryPrice, &p.Quantity, &p.EntryTime, &p.StopLoss, &p.TakeProfit); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}

// --- TransactionLog Implementation ---

// Append writes one audit record and returns its assigned ID.
func (r *Repository) Append(ctx context.Context, rec *domain.TransactionRecord) (int64, error) {
	const query = `
	INSERT INTO transactions (ts, symbol, action, price, quantity, profit_pct)
	VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		rec.Timestamp.UTC(), rec.Symbol, rec.Action, rec.Price, rec.Quantity, rec.ProfitPct)
	if err != nil {
		return 0, fmt.Errorf("failed to append transaction for symbol %s: %w", rec.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for transaction %s: %w", rec.Symbol, err)
	}
	rec.ID = id
	r.logger.Debug(ctx, "Transaction recorded", map[string]interface{}{"transactionID": id, "symbol": rec.Symbol, "action": rec.Action})
	return id, nil
}

// FindSince retrieves all records with ts >= from, oldest first.
func (r *Repository) FindSince(ctx context.Context, from time.Time) ([]*domain.TransactionRecord, error) {
	const query = `
	SELECT id, ts, symbol, action, price, quantity, profit_pct
	FROM transactions WHERE ts >= ? ORDER BY ts ASC`
	return r.queryTransactions(ctx, query, from.UTC())
}

// FindAll retrieves every record, oldest first.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.TransactionRecord, error) {
	const query = `
	SELECT id, ts, symbol, action, price, quantity, profit_pct
	FROM transactions ORDER BY ts ASC`
	return r.queryTransactions(ctx, query)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]*domain.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.TransactionRecord, 0)
	for rows.Next() {
		rec := &domain.TransactionRecord{}
		var action string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Symbol, &action, &rec.Price, &rec.Quantity, &rec.ProfitPct); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		rec.Action = domain.OrderDirection(action)
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return records, nil
}

// --- BudgetStore Implementation ---

// Save replaces the single budget snapshot row.
func (r *Repository) Save(ctx context.Context, profitPct float64, day time.Time) error {
	const query = `
	INSERT INTO daily_budget (id, profit_pct, day) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET profit_pct = excluded.profit_pct, day = excluded.day`

	if _, err := r.db.ExecContext(ctx, query, profitPct, day.UTC()); err != nil {
		return fmt.Errorf("failed to save budget snapshot: %w", err)
	}
	return nil
}

// Load retrieves the budget snapshot. ok is false when none was saved yet.
func (r *Repository) Load(ctx context.Context) (float64, time.Time, bool, error) {
	var profitPct float64
	var day time.Time
	err := r.db.QueryRowContext(ctx, `SELECT profit_pct, day FROM daily_budget WHERE id = 1`).Scan(&profitPct, &day)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("failed to load budget snapshot: %w", err)
	}
	return profitPct, day, true, nil
}
