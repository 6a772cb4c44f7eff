package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

type Game struct {
	ID   int
	Name string
}

// AddResult reports whether AddGame created a row.
type AddResult int

const (
	Inserted AddResult = iota
	AlreadyExists
)

func (r AddResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already-exists"
	default:
		return "unknown"
	}
}

// AddGame
// Inserts the game unless one with the exact same name is already tracked,
// in which case the existing row is returned.
func (d *Database) AddGame(name string) (AddResult, *Game, error) {
	var result AddResult
	var game *Game

	err := d.withTx(func(tx *sql.Tx) error {
		existing, err := findGameByName(tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			result, game = AlreadyExists, existing
			return nil
		}

		res, err := tx.Exec(INSERT_GAME, name)
		if err != nil {
			log.Println("Error inserting game: ", err)
			return fmt.Errorf("insert game %q: %w", name, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert game %q: %w", name, err)
		}

		result, game = Inserted, &Game{ID: int(newID), Name: name}
		return nil
	})
	if err != nil {
		return result, nil, err
	}

	return result, game, nil
}

// FindGameByName
// Returns nil when no game has exactly that name.
func (d *Database) FindGameByName(name string) (*Game, error) {
	var game *Game
	err := d.withConn(func(conn *sql.DB) error {
		var err error
		game, err = findGameByName(conn, name)
		return err
	})
	return game, err
}

// FindAllGames
func (d *Database) FindAllGames() ([]Game, error) {
	var games []Game
	err := d.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query(FIND_ALL_GAMES)
		if err != nil {
			log.Println("Error finding all games: ", err)
			return fmt.Errorf("find games: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var game Game
			if err := rows.Scan(&game.ID, &game.Name); err != nil {
				return fmt.Errorf("scan game: %w", err)
			}
			games = append(games, game)
		}
		return rows.Err()
	})
	return games, err
}

func findGameByName(q querier, name string) (*Game, error) {
	var game Game
	err := q.QueryRow(FIND_GAME_BY_NAME, name).Scan(&game.ID, &game.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game %q: %w", name, err)
	}
	return &game, nil
}
