package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// ErrNotFound is returned when a requested transaction is not stored.
var ErrNotFound = errors.New("transaction not found in database")

// CorpusDB stores the analysis artifacts in a single SQLite file.
//
// Design decision: one database file per data directory rather than one per
// scan run. The corpus is accumulated across find runs and analyzed as a
// whole, so the artifacts belong together.
type CorpusDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CorpusDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CorpusDB in the given directory.
func Open(dbDir string, opts Options) (*CorpusDB, error) {
	dbPath := filepath.Join(dbDir, "joinscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CorpusDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CorpusDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CorpusDB) createTables() error {
	schema := `
	-- The paired coinjoin corpus. rowid preserves first-seen order.
	CREATE TABLE IF NOT EXISTS join_transactions (
		txid TEXT PRIMARY KEY,
		num_parties INTEGER NOT NULL,
		mix_value INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_join_parties ON join_transactions(num_parties);

	-- Per-transaction marking results of the latest analysis run.
	-- unmix_level is NULL when the level is undefined (no taker candidate).
	CREATE TABLE IF NOT EXISTS marked_transactions (
		txid TEXT PRIMARY KEY,
		maker_addresses TEXT NOT NULL,
		unmix_level REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- The corpus-wide maker address set.
	CREATE TABLE IF NOT EXISTS maker_addresses (
		address TEXT PRIMARY KEY
	);
	`
	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveJoinTx inserts or updates a paired transaction. The UPSERT keeps the
// existing rowid, so a re-found transaction retains its first-seen position.
func (cdb *CorpusDB) SaveJoinTx(ctx context.Context, tx *model.CoinJoinTx) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to serialize transaction %s: %w", tx.ID, err)
	}

	query := `
	INSERT INTO join_transactions (txid, num_parties, mix_value, data)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(txid) DO UPDATE SET
		num_parties = excluded.num_parties,
		mix_value = excluded.mix_value,
		data = excluded.data
	`
	if _, err := cdb.db.ExecContext(ctx, query,
		tx.ID, tx.NumParties(), int64(tx.MixValue()), string(data)); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// LoadCorpus reads the whole paired corpus in first-seen order.
func (cdb *CorpusDB) LoadCorpus(ctx context.Context) (*linkage.Corpus, error) {
	rows, err := cdb.db.QueryContext(ctx,
		"SELECT data FROM join_transactions ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	corpus := linkage.NewCorpus()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		var tx model.CoinJoinTx
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
		}
		corpus.Add(&tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corpus: %w", err)
	}
	return corpus, nil
}

// GetJoinTx loads a single paired transaction by id.
func (cdb *CorpusDB) GetJoinTx(ctx context.Context, txid string) (*model.CoinJoinTx, error) {
	var data string
	err := cdb.db.QueryRowContext(ctx,
		"SELECT data FROM join_transactions WHERE txid = ?", txid).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", txid, err)
	}
	var tx model.CoinJoinTx
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction %s: %w", txid, err)
	}
	return &tx, nil
}

// SaveAnalysis replaces the stored marking results and maker address set
// with those of a completed analysis run, atomically.
func (cdb *CorpusDB) SaveAnalysis(ctx context.Context, result *linkage.Result) error {
	dbtx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = dbtx.Rollback() }()

	if _, err := dbtx.ExecContext(ctx, "DELETE FROM marked_transactions"); err != nil {
		return fmt.Errorf("failed to clear marked transactions: %w", err)
	}
	if _, err := dbtx.ExecContext(ctx, "DELETE FROM maker_addresses"); err != nil {
		return fmt.Errorf("failed to clear maker addresses: %w", err)
	}

	for i, marked := range result.Marked {
		addrs, err := json.Marshal(marked.MakerAddresses)
		if err != nil {
			return fmt.Errorf("failed to serialize maker addresses of %s: %w", marked.ID, err)
		}
		var level any
		if result.Scores[i].Defined {
			level = result.Scores[i].Level
		}
		if _, err := dbtx.ExecContext(ctx,
			"INSERT INTO marked_transactions (txid, maker_addresses, unmix_level) VALUES (?, ?, ?)",
			marked.ID, string(addrs), level); err != nil {
			return fmt.Errorf("failed to save marked transaction %s: %w", marked.ID, err)
		}
	}

	for _, addr := range result.MakerAddresses.Sorted() {
		if _, err := dbtx.ExecContext(ctx,
			"INSERT INTO maker_addresses (address) VALUES (?)", addr); err != nil {
			return fmt.Errorf("failed to save maker address: %w", err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// LoadMakerAddresses reads the stored maker address set.
func (cdb *CorpusDB) LoadMakerAddresses(ctx context.Context) (model.AddressSet, error) {
	rows, err := cdb.db.QueryContext(ctx, "SELECT address FROM maker_addresses")
	if err != nil {
		return nil, fmt.Errorf("failed to load maker addresses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := model.NewAddressSet()
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan maker address: %w", err)
		}
		set.Add(addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maker addresses: %w", err)
	}
	return set, nil
}

// GetMarked loads one marked transaction and its score, reconstructed from
// the stored corpus entry plus the marking row.
func (cdb *CorpusDB) GetMarked(ctx context.Context, txid string) (*model.MarkedCoinJoinTx, linkage.UnmixScore, error) {
	tx, err := cdb.GetJoinTx(ctx, txid)
	if err != nil {
		return nil, linkage.UnmixScore{}, err
	}

	var (
		addrsJSON string
		level     sql.NullFloat64
	)
	err = cdb.db.QueryRowContext(ctx,
		"SELECT maker_addresses, unmix_level FROM marked_transactions WHERE txid = ?",
		txid).Scan(&addrsJSON, &level)
	if err == sql.ErrNoRows {
		return nil, linkage.UnmixScore{}, ErrNotFound
	}
	if err != nil {
		return nil, linkage.UnmixScore{}, fmt.Errorf("failed to get marking of %s: %w", txid, err)
	}

	marked := model.NewMarkedCoinJoinTx(tx)
	var addrs model.AddressSet
	if err := json.Unmarshal([]byte(addrsJSON), &addrs); err != nil {
		return nil, linkage.UnmixScore{}, fmt.Errorf("failed to deserialize maker addresses of %s: %w", txid, err)
	}
	marked.MakerAddresses = addrs

	score := linkage.UnmixScore{Level: level.Float64, Defined: level.Valid}
	return marked, score, nil
}
