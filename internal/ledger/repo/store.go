package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect seleciona o estilo de placeholder do driver.
type Dialect int

const (
	Postgres Dialect = iota // lib/pq: $1, $2, ...
	SQLite                  // modernc.org/sqlite: ?
)

// ParseDialect converte o STORAGE_DRIVER da config.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	}
	return 0, fmt.Errorf("unknown storage driver %q", driver)
}

// Store implementa a persistência do ledger (participantes, partidas, apostas,
// cotações, lançamentos) sobre database/sql. As consultas são escritas com $N
// e reescritas para ? quando o dialeto é SQLite.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New retorna o repositório do ledger
func New(db *sql.DB, d Dialect) *Store { return &Store{db: db, dialect: d} }

// DB expõe a conexão (health checks)
func (s *Store) DB() *sql.DB { return s.db }

// Migrate aplica o schema (idempotente)
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repo.Migrate: %w", err)
	}
	return nil
}

// Tx é uma unidade de trabalho: tudo nela é confirmado ou desfeito junto.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// InTx executa fn numa transação; erro de fn (ou panic) desfaz tudo.
func (s *Store) InTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	q, args = rebind(s.dialect, q, args)
	return s.db.ExecContext(ctx, q, args...)
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	q, args = rebind(s.dialect, q, args)
	return s.db.QueryContext(ctx, q, args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	q, args = rebind(s.dialect, q, args)
	return s.db.QueryRowContext(ctx, q, args...)
}

func (t *Tx) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	q, args = rebind(t.dialect, q, args)
	return t.tx.ExecContext(ctx, q, args...)
}

func (t *Tx) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	q, args = rebind(t.dialect, q, args)
	return t.tx.QueryContext(ctx, q, args...)
}

func (t *Tx) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	q, args = rebind(t.dialect, q, args)
	return t.tx.QueryRowContext(ctx, q, args...)
}

// rebind troca $N por ? para o SQLite, reordenando os argumentos na ordem
// de ocorrência (assim $1 pode aparecer mais de uma vez).
func rebind(d Dialect, q string, args []any) (string, []any) {
	if d != SQLite || !strings.Contains(q, "$") {
		return q, args
	}
	var sb strings.Builder
	out := make([]any, 0, len(args))
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c != '$' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(q) && q[j] >= '0' && q[j] <= '9' {
			j++
		}
		if j == i+1 {
			sb.WriteByte(c)
			continue
		}
		n, _ := strconv.Atoi(q[i+1 : j])
		if n >= 1 && n <= len(args) {
			out = append(out, args[n-1])
		}
		sb.WriteByte('?')
		i = j - 1
	}
	return sb.String(), out
}
