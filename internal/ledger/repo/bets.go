package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

const betColumns = `id, participant_id, match_id, bet_type, selection, min_bound, max_bound,
	stake, odds, phase, result, payout, placed_at, settled_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(sc scanner) (domain.Bet, error) {
	var (
		b                  domain.Bet
		betType, result    string
		minBound, maxBound sql.NullInt64
		settledAt          sql.NullTime
	)
	err := sc.Scan(&b.ID, &b.ParticipantID, &b.MatchID, &betType, &b.Selection, &minBound, &maxBound,
		&b.Stake, &b.Odds, &b.Phase, &result, &b.Payout, &b.PlacedAt, &settledAt)
	if err != nil {
		return domain.Bet{}, err
	}
	b.BetType = domain.BetType(betType)
	b.Result = domain.Result(result)
	if minBound.Valid {
		v := minBound.Int64
		b.MinBound = &v
	}
	if maxBound.Valid {
		v := maxBound.Int64
		b.MaxBound = &v
	}
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	return b, nil
}

func collectBets(rows *sql.Rows) ([]domain.Bet, error) {
	defer rows.Close()
	var out []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullable(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// InsertBet grava a aposta aceita com as odds travadas
func (t *Tx) InsertBet(ctx context.Context, b domain.Bet) error {
	_, err := t.exec(ctx, `
		INSERT INTO bets (id, participant_id, match_id, bet_type, selection, min_bound, max_bound,
		                  stake, odds, phase, result, payout, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'PENDING',0,$11)`,
		b.ID, b.ParticipantID, b.MatchID, string(b.BetType), b.Selection,
		nullable(b.MinBound), nullable(b.MaxBound), b.Stake, b.Odds, b.Phase, b.PlacedAt)
	return err
}

// MarkSettled grava o resultado apenas se a aposta ainda estiver PENDING.
// Retorna false quando outra liquidação já a resolveu.
func (t *Tx) MarkSettled(ctx context.Context, betID string, result domain.Result, payout int64, at time.Time) (bool, error) {
	res, err := t.exec(ctx, `
		UPDATE bets SET result=$1, payout=$2, settled_at=$3
		WHERE id=$4 AND result='PENDING'`, string(result), payout, at, betID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ClearFlag remove a marcação de aposta não resolvida (se houver)
func (t *Tx) ClearFlag(ctx context.Context, betID string) error {
	_, err := t.exec(ctx, `DELETE FROM settlement_flags WHERE bet_id=$1`, betID)
	return err
}

// Bet retorna uma aposta pelo id
func (s *Store) Bet(ctx context.Context, id string) (domain.Bet, error) {
	b, err := scanBet(s.queryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, domain.ErrBetNotFound
	}
	return b, err
}

// BetsForParticipant lista as apostas do participante, mais recentes primeiro
func (s *Store) BetsForParticipant(ctx context.Context, participantID string) ([]domain.Bet, error) {
	rows, err := s.query(ctx, `SELECT `+betColumns+` FROM bets
		WHERE participant_id=$1 ORDER BY placed_at DESC, id`, participantID)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// PendingBets lista as apostas PENDING da partida. betType vazio = todos os tipos.
func (s *Store) PendingBets(ctx context.Context, matchID string, betType domain.BetType) ([]domain.Bet, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if betType == "" {
		rows, err = s.query(ctx, `SELECT `+betColumns+` FROM bets
			WHERE match_id=$1 AND result='PENDING' ORDER BY placed_at, id`, matchID)
	} else {
		rows, err = s.query(ctx, `SELECT `+betColumns+` FROM bets
			WHERE match_id=$1 AND bet_type=$2 AND result='PENDING' ORDER BY placed_at, id`, matchID, string(betType))
	}
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// CountPending conta apostas ainda não liquidadas da partida
func (s *Store) CountPending(ctx context.Context, matchID string) (int64, error) {
	var n int64
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM bets WHERE match_id=$1 AND result='PENDING'`, matchID).Scan(&n)
	return n, err
}

// Flag é uma aposta que a liquidação não conseguiu resolver
type Flag struct {
	BetID     string    `json:"betId"`
	MatchID   string    `json:"matchId"`
	Reason    string    `json:"reason"`
	FlaggedAt time.Time `json:"flaggedAt"`
}

// FlagBet marca a aposta para revisão manual (idempotente)
func (s *Store) FlagBet(ctx context.Context, betID, reason string, at time.Time) error {
	_, err := s.exec(ctx, `
		INSERT INTO settlement_flags (bet_id, reason, flagged_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (bet_id) DO UPDATE SET reason=excluded.reason, flagged_at=excluded.flagged_at`,
		betID, reason, at)
	return err
}

// Flags lista as apostas marcadas da partida
func (s *Store) Flags(ctx context.Context, matchID string) ([]Flag, error) {
	rows, err := s.query(ctx, `
		SELECT f.bet_id, b.match_id, f.reason, f.flagged_at
		FROM settlement_flags f JOIN bets b ON b.id = f.bet_id
		WHERE b.match_id=$1 ORDER BY f.flagged_at, f.bet_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Flag
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.BetID, &f.MatchID, &f.Reason, &f.FlaggedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
