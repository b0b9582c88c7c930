package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"courtside/internal/schema"
	"courtside/internal/storage"
	"courtside/internal/types"
)

const DefaultBatchSize = 1000

type Loader struct {
	dest      storage.DestinationTable
	batchSize int
	logger    *slog.Logger
}

func New(dest storage.DestinationTable, batchSize int, logger *slog.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dest: dest, batchSize: batchSize, logger: logger}
}

type Result struct {
	Rows     int
	Inserted int64
	Rejected int
}

func (r *Result) Add(o Result) {
	r.Rows += o.Rows
	r.Inserted += o.Inserted
	r.Rejected += o.Rejected
}

// PrepareRow lays a record out in the table's column order. Keys are matched
// case-insensitively, undeclared keys are dropped and absent columns are NULL.
func PrepareRow(table schema.Table, rec types.Record) ([]interface{}, error) {
	lower := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		lower[strings.ToLower(k)] = v
	}

	row := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		v, err := Coerce(col.Name, col.Type, lower[col.Name])
		if err != nil {
			return nil, err
		}
		if v == nil && col.NotNull {
			return nil, &types.CoercionError{Column: col.Name, Value: nil, Type: string(col.Type), Err: fmt.Errorf("column is not nullable")}
		}
		row[i] = v
	}
	return row, nil
}

// Load coerces records and inserts them in batches of batchSize. All
// batches of one call commit together, so a payload is never left half
// loaded. A record that fails coercion is logged and skipped. Destination
// errors abort the load.
func (l *Loader) Load(ctx context.Context, table schema.Table, records []types.Record) (Result, error) {
	res := Result{Rows: len(records)}
	columns := table.ColumnNames()

	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		row, err := PrepareRow(table, rec)
		if err != nil {
			res.Rejected++
			l.logger.Warn("Skipping row",
				"table", table.Name,
				"source", rec[types.ProvenanceColumn],
				"error", err)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return res, nil
	}

	var batches [][][]interface{}
	for start := 0; start < len(rows); start += l.batchSize {
		end := start + l.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	inserted, err := l.dest.InsertBatches(ctx, table, columns, batches)
	if err != nil {
		return res, fmt.Errorf("failed to load %s: %w", table.Name, err)
	}
	res.Inserted = inserted

	return res, nil
}
