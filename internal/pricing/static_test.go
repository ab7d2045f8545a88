package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func TestPriceStatic(t *testing.T) {
	tbl := DefaultTable()
	tests := []struct {
		name     string
		bt       domain.BetType
		min, max *int64
		want     float64
	}{
		{"match winner", domain.MatchWinner, nil, nil, 1.9},
		{"player of match", domain.PlayerOfMatch, nil, nil, 4.0},
		{"unknown type uses neutral base", "MOST_SIXES", nil, nil, DefaultBase},
		{"range widens odds", domain.PlayerRuns, ptr(50), ptr(60), 3.0},
		{"zero width range", domain.PlayerWickets, ptr(2), ptr(2), 2.5},
		{"wide range", domain.Extras, ptr(0), ptr(25), 4.7},
		{"one bound ignored", domain.PlayerRuns, ptr(50), nil, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.PriceStatic(tt.bt, tt.min, tt.max))
		})
	}
}

func TestLoadTable(t *testing.T) {
	tbl, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), tbl)

	dir := t.TempDir()
	path := filepath.Join(dir, "odds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match_winner: 1.75\nMOST_SIXES: 3.3\n"), 0o644))

	tbl, err = LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 1.75, tbl.Base(domain.MatchWinner))
	assert.Equal(t, 3.3, tbl.Base("MOST_SIXES"))
	assert.Equal(t, 4.0, tbl.Base(domain.PlayerOfMatch))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("MATCH_WINNER: -1\n"), 0o644))
	_, err = LoadTable(bad)
	require.Error(t, err)

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
