package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// CreateMatch registra a partida com status OPEN
func (s *Store) CreateMatch(ctx context.Context, m domain.Match) (domain.Match, error) {
	m.Status = domain.MatchOpen
	m.CreatedAt = time.Now().UTC()
	_, err := s.exec(ctx, `
		INSERT INTO matches (id, team_a, team_b, overs, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.TeamA, m.TeamB, m.Overs, string(m.Status), m.CreatedAt)
	if err != nil {
		return domain.Match{}, err
	}
	return m, nil
}

// Match retorna a partida pelo id
func (s *Store) Match(ctx context.Context, id string) (domain.Match, error) {
	var m domain.Match
	var status string
	err := s.queryRow(ctx, `SELECT id, team_a, team_b, overs, status, created_at FROM matches WHERE id=$1`, id).
		Scan(&m.ID, &m.TeamA, &m.TeamB, &m.Overs, &status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	m.Status = domain.MatchStatus(status)
	return m, err
}

// SetMatchStatus abre/fecha apostas. Partida COMPLETED não volta atrás.
func (s *Store) SetMatchStatus(ctx context.Context, id string, status domain.MatchStatus) error {
	res, err := s.exec(ctx, `
		UPDATE matches SET status=$1
		WHERE id=$2 AND status <> 'COMPLETED'`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		m, err := s.Match(ctx, id)
		if err != nil {
			return err
		}
		if m.Status == domain.MatchCompleted {
			return domain.ErrDuplicateSettlement
		}
	}
	return nil
}

// MarkCompleted sinaliza que a liquidação terminou.
// Retorna false se a partida já estava COMPLETED.
func (s *Store) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.exec(ctx, `
		UPDATE matches SET status='COMPLETED', completed_at=$1
		WHERE id=$2 AND status <> 'COMPLETED'`, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MatchStatus lê o status dentro da transação de aceitação da aposta
func (t *Tx) MatchStatus(ctx context.Context, id string) (domain.MatchStatus, error) {
	var status string
	err := t.queryRow(ctx, `SELECT status FROM matches WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrMatchNotFound
	}
	return domain.MatchStatus(status), err
}
