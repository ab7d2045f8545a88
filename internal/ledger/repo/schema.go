package repo

// schema compatível com Postgres e SQLite.
//
//   - participants: saldo nunca negativo (CHECK) além do débito condicional.
//   - bets: odds gravadas uma vez na aceitação; só result/payout/settled_at mudam.
//   - odds_quotes: cotação dinâmica por seleção; version = nº de apostas do pool no snapshot.
//   - ledger_entries: trilha de auditoria; UNIQUE(bet_id, kind) impede dois pagamentos da mesma aposta.
//   - settlement_flags: apostas deixadas PENDING por falta de dados no resultado.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
    id           TEXT PRIMARY KEY,
    balance      BIGINT    NOT NULL CHECK (balance >= 0),
    net_winnings BIGINT    NOT NULL DEFAULT 0,
    created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
    id           TEXT PRIMARY KEY,
    team_a       TEXT      NOT NULL,
    team_b       TEXT      NOT NULL,
    overs        INTEGER   NOT NULL DEFAULT 0,
    status       TEXT      NOT NULL,
    created_at   TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NULL
);

CREATE TABLE IF NOT EXISTS bets (
    id             TEXT PRIMARY KEY,
    participant_id TEXT             NOT NULL REFERENCES participants(id),
    match_id       TEXT             NOT NULL REFERENCES matches(id),
    bet_type       TEXT             NOT NULL,
    selection      TEXT             NOT NULL,
    min_bound      BIGINT           NULL,
    max_bound      BIGINT           NULL,
    stake          BIGINT           NOT NULL CHECK (stake > 0),
    odds           DOUBLE PRECISION NOT NULL,
    phase          TEXT             NOT NULL DEFAULT '',
    result         TEXT             NOT NULL DEFAULT 'PENDING',
    payout         BIGINT           NOT NULL DEFAULT 0,
    placed_at      TIMESTAMP        NOT NULL,
    settled_at     TIMESTAMP        NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_match_result ON bets(match_id, result);
CREATE INDEX IF NOT EXISTS idx_bets_pool         ON bets(match_id, bet_type, selection);
CREATE INDEX IF NOT EXISTS idx_bets_participant  ON bets(participant_id);

CREATE TABLE IF NOT EXISTS odds_quotes (
    match_id   TEXT             NOT NULL,
    bet_type   TEXT             NOT NULL,
    selection  TEXT             NOT NULL,
    odds       DOUBLE PRECISION NOT NULL,
    version    BIGINT           NOT NULL,
    updated_at TIMESTAMP        NOT NULL,
    PRIMARY KEY (match_id, bet_type, selection)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id             TEXT PRIMARY KEY,
    participant_id TEXT      NOT NULL,
    bet_id         TEXT      NOT NULL,
    kind           TEXT      NOT NULL,
    amount         BIGINT    NOT NULL,
    created_at     TIMESTAMP NOT NULL,
    UNIQUE (bet_id, kind)
);

CREATE TABLE IF NOT EXISTS settlement_flags (
    bet_id     TEXT PRIMARY KEY,
    reason     TEXT      NOT NULL,
    flagged_at TIMESTAMP NOT NULL
);
`
