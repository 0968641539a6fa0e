package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(
	host, port, name, user, password string,
	maxOpen, maxIdle int,
) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, name, user, password,
	)

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)

	if err := database.Ping(); err != nil {
		return nil, err
	}

	return database, nil
}

// URL builds the postgres:// DSN form used by the migration runner.
func URL(host, port, name, user, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, name,
	)
}
