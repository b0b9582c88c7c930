package rawstore

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"courtside/internal/types"
)

func newStore(t *testing.T, naming Naming) *DirStore {
	t.Helper()
	s, err := NewDirStore(filepath.Join(t.TempDir(), "stage"), naming, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestNaming(t *testing.T) {
	n := Naming{Prefix: "nba_com_", Extension: ".json"}
	require.Equal(t, "nba_com_2023-10-24.json", n.FileName("2023-10-24"))

	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{"nba_com_2023-10-24.json", "2023-10-24", true},
		{"2023-10-24.json", "", false},
		{"nba_com_2023-10-24.html", "", false},
		{"nba_com_.json", "", false},
	}
	for _, tt := range tests {
		id, ok := n.ID(tt.name)
		require.Equal(t, tt.ok, ok, tt.name)
		require.Equal(t, tt.id, id, tt.name)
	}
}

func TestWriteOnce(t *testing.T) {
	s := newStore(t, Naming{Extension: ".html"})

	exists, err := s.Exists("1999-00_NBA_season")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.Write("1999-00_NBA_season", []byte("<html>first</html>")))

	err = s.Write("1999-00_NBA_season", []byte("<html>second</html>"))
	require.True(t, errors.Is(err, types.ErrPayloadExists))

	data, err := s.Read("1999-00_NBA_season")
	require.NoError(t, err)
	require.Equal(t, "<html>first</html>", string(data))

	exists, err = s.Exists("1999-00_NBA_season")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestListSkipsForeignAndTempFiles(t *testing.T) {
	s := newStore(t, Naming{Prefix: "nba_com_", Extension: ".json"})

	require.NoError(t, s.Write("2023-10-25", []byte("{}")))
	require.NoError(t, s.Write("2023-10-24", []byte("{}")))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".tmp-123"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "nba_com_dir.json"), 0o755))

	ids, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"2023-10-24", "2023-10-25"}, ids)
}

func TestListMissingDirectory(t *testing.T) {
	s := newStore(t, Naming{Extension: ".json"})
	require.NoError(t, os.RemoveAll(s.Dir()))

	_, err := s.List()
	require.Error(t, err)
}

func TestCopyTo(t *testing.T) {
	s := newStore(t, Naming{Extension: ".json"})
	require.NoError(t, s.Write("bad", []byte("{")))

	errDir := filepath.Join(t.TempDir(), "errors")
	require.NoError(t, s.CopyTo("bad", errDir))

	ids, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"bad"}, ids)

	data, err := os.ReadFile(filepath.Join(errDir, "bad.json"))
	require.NoError(t, err)
	require.Equal(t, "{", string(data))

	require.Error(t, s.CopyTo("missing", errDir))
}
