package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/dto"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/internal/pricing"
	"github.com/radieske/cricket-bet-ledger/internal/shared/config"
	"github.com/radieske/cricket-bet-ledger/internal/shared/db"
	"github.com/radieske/cricket-bet-ledger/internal/shared/logger"
)

const usage = `ledgerctl <command> [flags]

commands:
  settle       -match ID -outcome file.yaml [-type BET_TYPE]
  quotes       -match ID -type BET_TYPE
  price        -type BET_TYPE [-min N -max N]
  flags        -match ID
  participant  -id ID
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load("ledgerctl")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, log, cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, cfg config.Config, cmd string, args []string, out io.Writer) error {
	table, err := pricing.LoadTable(cfg.OddsTablePath)
	if err != nil {
		return err
	}

	// price não precisa de banco
	if cmd == "price" {
		fs := flag.NewFlagSet("price", flag.ContinueOnError)
		bt := fs.String("type", "", "bet type")
		minB := fs.Int64("min", -1, "min bound (range bets)")
		maxB := fs.Int64("max", -1, "max bound (range bets)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *bt == "" {
			return fmt.Errorf("-type required")
		}
		var lo, hi *int64
		if *minB >= 0 && *maxB >= 0 {
			lo, hi = minB, maxB
		}
		if err := domain.ValidateRange(lo, hi); err != nil {
			return err
		}
		t := domain.ParseBetType(*bt)
		printPrice(out, t, table.PriceStatic(t, lo, hi))
		return nil
	}

	conn, err := db.Connect(cfg.StorageDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()
	dialect, _ := repo.ParseDialect(cfg.StorageDriver)
	store := repo.New(conn, dialect)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	engine := pricing.NewEngine(log, store, pricing.Options{
		Table:   table,
		Bounds:  pricing.Bounds{Min: cfg.MinOdds, Max: cfg.MaxOdds},
		Dynamic: domain.ParseBetTypes(cfg.DynamicBetTypes),
	})
	svc := ledger.New(log, store, engine, ledger.Options{
		MinStake:        cfg.MinStake,
		StartingBalance: cfg.StartingBalance,
		LockTTL:         cfg.SettlementLockTTL,
	})

	switch cmd {
	case "settle":
		fs := flag.NewFlagSet("settle", flag.ContinueOnError)
		matchID := fs.String("match", "", "match id")
		path := fs.String("outcome", "", "outcome YAML file")
		bt := fs.String("type", "", "settle only this bet type pool")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *matchID == "" || *path == "" {
			return fmt.Errorf("-match and -outcome required")
		}
		outcome, err := dto.LoadOutcomeFile(*path)
		if err != nil {
			return err
		}
		var rep ledger.Report
		if *bt != "" {
			rep, err = svc.SettleBetTypePool(ctx, *matchID, domain.ParseBetType(*bt), outcome)
		} else {
			rep, err = svc.SettleMatch(ctx, *matchID, outcome)
		}
		if err != nil {
			return err
		}
		printReport(out, rep)

	case "quotes":
		fs := flag.NewFlagSet("quotes", flag.ContinueOnError)
		matchID := fs.String("match", "", "match id")
		bt := fs.String("type", "", "bet type")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *matchID == "" || *bt == "" {
			return fmt.Errorf("-match and -type required")
		}
		q, err := engine.Quotes(ctx, domain.PoolKey{MatchID: *matchID, BetType: domain.ParseBetType(*bt)})
		if err != nil {
			return err
		}
		printQuotes(out, q)

	case "flags":
		fs := flag.NewFlagSet("flags", flag.ContinueOnError)
		matchID := fs.String("match", "", "match id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		f, err := svc.Flags(ctx, *matchID)
		if err != nil {
			return err
		}
		printFlags(out, f)

	case "participant":
		fs := flag.NewFlagSet("participant", flag.ContinueOnError)
		id := fs.String("id", "", "participant id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		p, err := svc.Participant(ctx, *id)
		if err != nil {
			return err
		}
		bets, err := svc.BetsForParticipant(ctx, *id)
		if err != nil {
			return err
		}
		printParticipant(out, p, bets)

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}
