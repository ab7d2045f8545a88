package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// PoolSnapshot lê stake por seleção e a versão do pool numa única consulta,
// então os dois valores vêm do mesmo estado.
func (s *Store) PoolSnapshot(ctx context.Context, key domain.PoolKey) (map[string]int64, int64, error) {
	rows, err := s.query(ctx, `
		SELECT selection, SUM(stake), COUNT(*)
		FROM bets WHERE match_id=$1 AND bet_type=$2
		GROUP BY selection`, key.MatchID, string(key.BetType))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	stakes := make(map[string]int64)
	var version int64
	for rows.Next() {
		var (
			sel      string
			sum, cnt int64
		)
		if err := rows.Scan(&sel, &sum, &cnt); err != nil {
			return nil, 0, err
		}
		stakes[sel] = sum
		version += cnt
	}
	return stakes, version, rows.Err()
}

// ReplaceQuotes substitui as cotações do pool se version for mais nova que a gravada
func (s *Store) ReplaceQuotes(ctx context.Context, key domain.PoolKey, version int64, odds map[string]float64, at time.Time) (bool, error) {
	applied := false
	err := s.InTx(ctx, func(tx *Tx) error {
		var current sql.NullInt64
		err := tx.queryRow(ctx, `
			SELECT MAX(version) FROM odds_quotes WHERE match_id=$1 AND bet_type=$2`,
			key.MatchID, string(key.BetType)).Scan(&current)
		if err != nil {
			return err
		}
		if current.Valid && current.Int64 >= version {
			return nil
		}

		for sel, o := range odds {
			_, err := tx.exec(ctx, `
				INSERT INTO odds_quotes (match_id, bet_type, selection, odds, version, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6)
				ON CONFLICT (match_id, bet_type, selection) DO UPDATE
				SET odds=excluded.odds, version=excluded.version, updated_at=excluded.updated_at
				WHERE odds_quotes.version < excluded.version`,
				key.MatchID, string(key.BetType), sel, o, version, at)
			if err != nil {
				return err
			}
		}
		if _, err := tx.exec(ctx, `
			DELETE FROM odds_quotes WHERE match_id=$1 AND bet_type=$2 AND version < $3`,
			key.MatchID, string(key.BetType), version); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// Quotes lista as cotações gravadas do pool
func (s *Store) Quotes(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, error) {
	rows, err := s.query(ctx, `
		SELECT selection, odds, version, updated_at
		FROM odds_quotes WHERE match_id=$1 AND bet_type=$2
		ORDER BY selection`, key.MatchID, string(key.BetType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OddsQuote
	for rows.Next() {
		q := domain.OddsQuote{MatchID: key.MatchID, BetType: key.BetType}
		if err := rows.Scan(&q.Selection, &q.Odds, &q.Version, &q.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// QuoteOdds retorna a odd dinâmica corrente de uma seleção, lida na
// transação de aceitação da aposta. ok=false se ainda não há cotação.
func (t *Tx) QuoteOdds(ctx context.Context, key domain.PoolKey, selection string) (float64, bool, error) {
	var odds float64
	err := t.queryRow(ctx, `
		SELECT odds FROM odds_quotes
		WHERE match_id=$1 AND bet_type=$2 AND selection=$3`,
		key.MatchID, string(key.BetType), selection).Scan(&odds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return odds, true, nil
}
