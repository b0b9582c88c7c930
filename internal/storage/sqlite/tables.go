package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"courtside/internal/schema"
	"courtside/internal/storage"
	"courtside/internal/types"
)

func (s *SQLiteStorage) CompletedSources(ctx context.Context, table schema.Table) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s`,
		storage.QuoteIdent(types.ProvenanceColumn), storage.QuoteIdent(table.Name))

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed sources from %s: %w", table.Name, err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src sql.NullString
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if src.Valid {
			sources = append(sources, src.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}

	return sources, nil
}

// InsertIgnore inserts a single batch.
func (s *SQLiteStorage) InsertIgnore(ctx context.Context, table schema.Table, columns []string, rows [][]interface{}) (int64, error) {
	return s.InsertBatches(ctx, table, columns, [][][]interface{}{rows})
}

func (s *SQLiteStorage) InsertBatches(ctx context.Context, table schema.Table, columns []string, batches [][][]interface{}) (int64, error) {
	total := 0
	for _, rows := range batches {
		total += len(rows)
	}
	if total == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
		storage.QuoteIdent(table.Name),
		strings.Join(storage.QuoteIdents(columns), ", "),
		placeholders,
		strings.Join(storage.QuoteIdents(table.PrimaryKey()), ", "),
	)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	var inserted int64
	for _, rows := range batches {
		for _, row := range rows {
			if len(row) != len(columns) {
				return 0, fmt.Errorf("row has %d values for %d columns", len(row), len(columns))
			}
			res, err := stmt.ExecContext(ctx, row...)
			if err != nil {
				return 0, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, fmt.Errorf("failed to read rows affected: %w", err)
			}
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("Inserted rows", "table", table.Name, "rows", total, "batches", len(batches), "inserted", inserted)
	return inserted, nil
}
