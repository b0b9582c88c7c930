package storage

import (
	"context"

	"courtside/internal/schema"
)

// DestinationTable is the capability the load stages need from a database.
type DestinationTable interface {
	// CompletedSources lists the distinct provenance values already loaded
	// into table.
	CompletedSources(ctx context.Context, table schema.Table) ([]string, error)

	// InsertBatches inserts every batch in one transaction, skipping rows
	// whose primary key already exists. Either all batches commit or none
	// do. It returns the number of rows inserted.
	InsertBatches(ctx context.Context, table schema.Table, columns []string, batches [][][]interface{}) (int64, error)
}

type Destination interface {
	DestinationTable
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
