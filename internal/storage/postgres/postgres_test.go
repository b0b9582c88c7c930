package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courtside/internal/schema"
	"courtside/internal/storage"
)

func newTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("COURTSIDE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("COURTSIDE_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	dest, err := storage.New(ctx, storage.Options{
		Type:   "postgres",
		DSN:    dsn,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { dest.Close(ctx) })

	require.NoError(t, dest.Migrate(ctx))
	return dest.(*PostgresStorage)
}

func TestInsertIgnoreIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reg, err := schema.Default()
	require.NoError(t, err)
	tbl, err := reg.Table("tbl_game_info")
	require.NoError(t, err)

	gameID := "test-" + time.Now().Format("150405.000000")
	source := "2023-10-24-" + gameID
	t.Cleanup(func() {
		s.pool.Exec(ctx, `DELETE FROM nba_com_stage.tbl_game_info WHERE game_id = $1`, gameID)
	})

	columns := []string{"game_id", "game_date", "attendance", "sellout", "source_file"}
	rows := [][]interface{}{{gameID, time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC), int64(18203), true, source}}

	inserted, err := s.InsertIgnore(ctx, tbl, columns, rows)
	require.NoError(t, err)
	require.Equal(t, int64(1), inserted)

	inserted, err = s.InsertIgnore(ctx, tbl, columns, rows)
	require.NoError(t, err)
	require.Equal(t, int64(0), inserted)

	sources, err := s.CompletedSources(ctx, tbl)
	require.NoError(t, err)
	require.Contains(t, sources, source)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), storage.Options{})
	require.Error(t, err)
}
