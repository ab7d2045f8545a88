package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func ConnectPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite abre o banco embarcado (arquivo ou ":memory:").
// SQLite é single-writer: uma conexão só, o que também serializa as transações.
func ConnectSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // ":memory:" vive enquanto a conexão viver

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Connect abre o banco conforme o STORAGE_DRIVER ("postgres" | "sqlite")
func Connect(driver, postgresDSN, sqlitePath string) (*sql.DB, error) {
	switch driver {
	case "postgres":
		return ConnectPostgres(postgresDSN)
	case "sqlite":
		return ConnectSQLite(sqlitePath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
