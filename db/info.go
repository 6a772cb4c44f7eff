package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

const CURRENT_GAME_KEY = "CurrentGame"

// CurrentGame is the typed view of the CurrentGame Info row.
type CurrentGame struct {
	GameID   int
	GameName string
}

// EnsureInfoKey inserts an empty Info row for key if none exists.
func (d *Database) EnsureInfoKey(key string) error {
	return d.withConn(func(conn *sql.DB) error {
		return ensureInfoKey(conn, key)
	})
}

// SetCurrentGame
// Only the CurrentGame row is written; other Info rows are never touched.
func (d *Database) SetCurrentGame(game Game) error {
	return d.withTx(func(tx *sql.Tx) error {
		if err := ensureInfoKey(tx, CURRENT_GAME_KEY); err != nil {
			return err
		}
		_, err := tx.Exec(UPDATE_INFO_BY_KEY, game.Name, game.ID, CURRENT_GAME_KEY)
		if err != nil {
			log.Printf("Error updating current game to %s: %v\n", game.Name, err)
			return fmt.Errorf("set current game: %w", err)
		}
		return nil
	})
}

// FindCurrentGame
// Returns nil when no current game has been set.
func (d *Database) FindCurrentGame() (*CurrentGame, error) {
	var current *CurrentGame
	err := d.withConn(func(conn *sql.DB) error {
		var strval sql.NullString
		var intval sql.NullInt64
		err := conn.QueryRow(FIND_INFO_BY_KEY, CURRENT_GAME_KEY).Scan(&strval, &intval)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find current game: %w", err)
		}
		if !intval.Valid {
			return nil
		}
		current = &CurrentGame{
			GameID:   int(intval.Int64),
			GameName: strval.String,
		}
		return nil
	})
	return current, err
}

// SetInfoString stores value under key, creating the row if needed.
func (d *Database) SetInfoString(key string, value string) error {
	return d.withTx(func(tx *sql.Tx) error {
		if err := ensureInfoKey(tx, key); err != nil {
			return err
		}
		if _, err := tx.Exec(UPDATE_INFO_STRVAL_BY_KEY, value, key); err != nil {
			return fmt.Errorf("set info %s: %w", key, err)
		}
		return nil
	})
}

// FindInfoString
func (d *Database) FindInfoString(key string) (string, bool, error) {
	var value string
	var found bool
	err := d.withConn(func(conn *sql.DB) error {
		var strval sql.NullString
		var intval sql.NullInt64
		err := conn.QueryRow(FIND_INFO_BY_KEY, key).Scan(&strval, &intval)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find info %s: %w", key, err)
		}
		value, found = strval.String, strval.Valid
		return nil
	})
	return value, found, err
}

func ensureInfoKey(q querier, key string) error {
	if _, err := q.Exec(ENSURE_INFO_KEY, key, key); err != nil {
		log.Println("Error ensuring info key: ", key, err)
		return fmt.Errorf("ensure info %s: %w", key, err)
	}
	return nil
}
