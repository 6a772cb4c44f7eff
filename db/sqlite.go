package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

type Config struct {
	Driver string
	Path   string
}

// Database opens a fresh connection for every operation and closes it
// before returning, so no handle outlives a single call.
type Database struct {
	driver string
	path   string
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitDatabase
// Creates any missing table. Existing tables are left untouched.
func InitDatabase(config Config) (*Database, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	d := &Database{
		driver: driver,
		path:   config.Path,
	}

	conn, err := d.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	for _, table := range []string{games_table, streams_table, info_table} {
		statement, err := conn.Prepare(table)
		if err != nil {
			log.Println("Prepared statement for table failed: ", err)
			return nil, fmt.Errorf("prepare schema: %w", err)
		}
		_, err = statement.Exec()
		_ = statement.Close()
		if err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return d, nil
}

// Path of the sqlite file backing this database
func (d *Database) Path() string {
	return d.path
}

func (d *Database) open() (*sql.DB, error) {
	conn, err := sql.Open(d.driver, d.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// Both drivers wait up to 5s on a locked database and take the write lock
// when a transaction begins, so concurrent callers queue instead of failing
// with SQLITE_BUSY. modernc writes time.Time values with t.String() unless
// told otherwise, which would not sort alongside values written by mattn.
func (d *Database) dsn() string {
	params := "_txlock=immediate&_busy_timeout=5000"
	if d.driver == DriverPureGo {
		params = "_txlock=immediate&_pragma=busy_timeout(5000)&_time_format=sqlite"
	}
	sep := "?"
	if strings.Contains(d.path, "?") {
		sep = "&"
	}
	return d.path + sep + params
}

// withConn runs fn against a short-lived connection.
func (d *Database) withConn(fn func(conn *sql.DB) error) error {
	conn, err := d.open()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(conn)
}

// withTx runs fn inside a transaction on a short-lived connection and
// commits when fn returns nil.
func (d *Database) withTx(fn func(tx *sql.Tx) error) error {
	return d.withConn(func(conn *sql.DB) error {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}
