package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/internal/pricing"
	"github.com/radieske/cricket-bet-ledger/internal/shared/config"
	"github.com/radieske/cricket-bet-ledger/internal/shared/db"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		StorageDriver:   "sqlite",
		SQLitePath:      filepath.Join(t.TempDir(), "ledger.db"),
		MinStake:        100,
		StartingBalance: 10000,
		MinOdds:         1.2,
		MaxOdds:         5.0,
		DynamicBetTypes: []string{"MATCH_WINNER"},
	}
}

func TestRun_Price(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), zap.NewNop(), testConfig(t), "price", []string{"-type", "player_runs", "-min", "50", "-max", "60"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "PLAYER_RUNS static odds: 3.00\n", out.String())

	err = run(context.Background(), zap.NewNop(), testConfig(t), "price", nil, &out)
	require.Error(t, err)

	err = run(context.Background(), zap.NewNop(), testConfig(t), "price", []string{"-type", "player_runs", "-min", "60", "-max", "50"}, &out)
	require.ErrorIs(t, err, domain.ErrInvalidBet)
}

func TestRun_Errors(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	err := run(context.Background(), zap.NewNop(), cfg, "bogus", nil, &out)
	require.ErrorContains(t, err, "unknown command")

	err = run(context.Background(), zap.NewNop(), cfg, "settle", []string{"-match", "m1"}, &out)
	require.ErrorContains(t, err, "-outcome required")

	err = run(context.Background(), zap.NewNop(), cfg, "participant", []string{"-id", "ghost"}, &out)
	require.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestRun_SettleFromFile(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	// prepara o banco com uma aposta numa partida fechada
	var out bytes.Buffer
	require.NoError(t, run(ctx, zap.NewNop(), cfg, "flags", []string{"-match", "m1"}, &out))
	assert.Contains(t, out.String(), "no bets waiting")
	seed(t, cfg)

	path := filepath.Join(t.TempDir(), "outcome.yaml")
	require.NoError(t, os.WriteFile(path, []byte("winners:\n  MATCH_WINNER: TeamA\n"), 0o644))

	out.Reset()
	require.NoError(t, run(ctx, zap.NewNop(), cfg, "settle", []string{"-match", "m1", "-outcome", path}, &out))
	assert.Contains(t, out.String(), "won=1 lost=0")
	assert.Contains(t, out.String(), "completed=true")

	out.Reset()
	require.NoError(t, run(ctx, zap.NewNop(), cfg, "participant", []string{"-id", "alice"}, &out))
	assert.Contains(t, out.String(), "alice balance=10450 net_winnings=450")

	out.Reset()
	require.NoError(t, run(ctx, zap.NewNop(), cfg, "quotes", []string{"-match", "m1", "-type", "MATCH_WINNER"}, &out))
	assert.Contains(t, out.String(), "TeamA")
	assert.Contains(t, out.String(), "2.00")

	err := run(ctx, zap.NewNop(), cfg, "settle", []string{"-match", "m1", "-outcome", path}, &out)
	require.ErrorIs(t, err, domain.ErrDuplicateSettlement)
}

func seed(t *testing.T, cfg config.Config) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.ConnectSQLite(cfg.SQLitePath)
	require.NoError(t, err)
	defer conn.Close()
	store := repo.New(conn, repo.SQLite)
	require.NoError(t, store.Migrate(ctx))
	engine := pricing.NewEngine(zap.NewNop(), store, pricing.Options{Dynamic: domain.ParseBetTypes(cfg.DynamicBetTypes)})
	svc := ledger.New(zap.NewNop(), store, engine, ledger.Options{MinStake: cfg.MinStake, StartingBalance: cfg.StartingBalance})

	_, err = svc.RegisterParticipant(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.CreateMatch(ctx, domain.Match{ID: "m1", TeamA: "TeamA", TeamB: "TeamB"})
	require.NoError(t, err)
	_, err = svc.PlaceBet(ctx, "alice", "m1", domain.BetSpec{BetType: domain.MatchWinner, Selection: "TeamA", Stake: 500})
	require.NoError(t, err)
	require.NoError(t, svc.SetMatchStatus(ctx, "m1", domain.MatchBettingClosed))
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, ledger.Report{
		MatchID: "m1",
		Bets: []ledger.BetOutcome{
			{BetID: "b1", ParticipantID: "alice", BetType: domain.MatchWinner, Selection: "TeamA", Result: domain.ResultWin, Payout: 950},
			{BetID: "b2", ParticipantID: "bob", BetType: domain.PlayerRuns, Selection: "Kohli", Result: domain.ResultPending, Flagged: true, Error: "outcome lacks data"},
		},
		Won: 1, Flagged: 1, TotalPayout: 950,
	})
	s := out.String()
	assert.Contains(t, s, "settlement m1 (all bet types)")
	assert.Contains(t, s, "950")
	assert.Contains(t, s, "outcome lacks data")

	out.Reset()
	printFlags(&out, []repo.Flag{{BetID: "b2", Reason: "UNRESOLVABLE_BET", FlaggedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}})
	assert.Contains(t, out.String(), "2026-01-02 03:04:05")
}
