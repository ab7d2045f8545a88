package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// RegisterParticipant cria o participante com saldo inicial
// Retorna domain.ErrParticipantExists se o id já existir
func (s *Store) RegisterParticipant(ctx context.Context, id string, balance int64) (domain.Participant, error) {
	now := time.Now().UTC()
	res, err := s.exec(ctx, `
		INSERT INTO participants (id, balance, net_winnings, created_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (id) DO NOTHING`, id, balance, now)
	if err != nil {
		return domain.Participant{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Participant{}, err
	} else if n == 0 {
		return domain.Participant{}, domain.ErrParticipantExists
	}
	return domain.Participant{ID: id, Balance: balance, CreatedAt: now}, nil
}

// Participant retorna saldo e ganhos acumulados
func (s *Store) Participant(ctx context.Context, id string) (domain.Participant, error) {
	var p domain.Participant
	err := s.queryRow(ctx, `SELECT id, balance, net_winnings, created_at FROM participants WHERE id=$1`, id).
		Scan(&p.ID, &p.Balance, &p.NetWinnings, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, err
}

// Debit debita amount apenas se houver saldo (update condicional atômico).
// Sem linha afetada: participante inexistente ou saldo insuficiente.
func (t *Tx) Debit(ctx context.Context, participantID string, amount int64) error {
	res, err := t.exec(ctx, `
		UPDATE participants SET balance = balance - $1
		WHERE id = $2 AND balance >= $1`, amount, participantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var one int
	err = t.queryRow(ctx, `SELECT 1 FROM participants WHERE id=$1`, participantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrParticipantNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrInsufficientFunds
}

// Credit soma o pagamento ao saldo e netDelta aos ganhos acumulados
func (t *Tx) Credit(ctx context.Context, participantID string, amount, netDelta int64) error {
	res, err := t.exec(ctx, `
		UPDATE participants SET balance = balance + $1, net_winnings = net_winnings + $2
		WHERE id = $3`, amount, netDelta, participantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

// Entry é um lançamento da trilha de auditoria
type Entry struct {
	ID            string
	ParticipantID string
	BetID         string
	Kind          string // STAKE | PAYOUT
	Amount        int64
	CreatedAt     time.Time
}

const (
	EntryStake  = "STAKE"
	EntryPayout = "PAYOUT"
)

// InsertEntry registra o lançamento na mesma transação do débito/crédito
func (t *Tx) InsertEntry(ctx context.Context, e Entry) error {
	_, err := t.exec(ctx, `
		INSERT INTO ledger_entries (id, participant_id, bet_id, kind, amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.ParticipantID, e.BetID, e.Kind, e.Amount, e.CreatedAt)
	return err
}

// Entries lista os lançamentos de um participante (auditoria)
func (s *Store) Entries(ctx context.Context, participantID string) ([]Entry, error) {
	rows, err := s.query(ctx, `
		SELECT id, participant_id, bet_id, kind, amount, created_at
		FROM ledger_entries WHERE participant_id=$1
		ORDER BY created_at, id`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.BetID, &e.Kind, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
