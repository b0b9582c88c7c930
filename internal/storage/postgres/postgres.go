package postgres

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"courtside/internal/schema"
	"courtside/internal/storage"
	"courtside/internal/types"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	storage.RegisterFactory("postgres", New)
}

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func New(ctx context.Context, opts storage.Options) (storage.Destination, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Initialized Postgres storage", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)

	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (s *PostgresStorage) Migrate(ctx context.Context) error {
	s.logger.Debug("Running database migrations")

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.logger.Debug("Migrations completed successfully")
	return nil
}

func qualified(table schema.Table) string {
	if table.Schema == "" {
		return storage.QuoteIdent(table.Name)
	}
	return storage.QuoteIdent(table.Schema) + "." + storage.QuoteIdent(table.Name)
}

func (s *PostgresStorage) CompletedSources(ctx context.Context, table schema.Table) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %[1]s IS NOT NULL`,
		storage.QuoteIdent(types.ProvenanceColumn), qualified(table))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed sources from %s: %w", table.QualifiedName(), err)
	}

	sources, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect sources: %w", err)
	}
	return sources, nil
}

// InsertIgnore inserts a single batch.
func (s *PostgresStorage) InsertIgnore(ctx context.Context, table schema.Table, columns []string, rows [][]interface{}) (int64, error) {
	return s.InsertBatches(ctx, table, columns, [][][]interface{}{rows})
}

// InsertBatches sends each batch as one pgx batch, all inside a single
// transaction.
func (s *PostgresStorage) InsertBatches(ctx context.Context, table schema.Table, columns []string, batches [][][]interface{}) (int64, error) {
	total := 0
	for _, rows := range batches {
		total += len(rows)
	}
	if total == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
		qualified(table),
		strings.Join(storage.QuoteIdents(columns), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(storage.QuoteIdents(table.PrimaryKey()), ", "),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, rows := range batches {
		n, err := sendBatch(ctx, tx, query, columns, rows)
		if err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", table.QualifiedName(), err)
		}
		inserted += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("Inserted rows", "table", table.QualifiedName(), "rows", total, "batches", len(batches), "inserted", inserted)
	return inserted, nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, query string, columns []string, rows [][]interface{}) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row has %d values for %d columns", len(row), len(columns))
		}
		b.Queue(query, row...)
	}

	br := tx.SendBatch(ctx, b)
	var inserted int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, err
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStorage) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
