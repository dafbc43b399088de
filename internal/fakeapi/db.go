package fakeapi

import (
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrshanahan/core-notes/pkg/todos"
)

var (
	//go:embed files/create_todos_table.sql
	CREATE_TODOS_TABLE_SQL string
)

const todoColumns = "id, title, description, favorited, color, created_at"

// OpenDB opens a sqlite database at path (":memory:" for a throwaway one)
// and creates the todos table.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = tx.Exec(CREATE_TODOS_TABLE_SQL)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewTodo(db *sql.DB, draft todos.Draft) (*todos.Todo, error) {
	stmt, err := db.Prepare("INSERT INTO todos (title, description, favorited, color, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	result, err := stmt.Exec(draft.Title, draft.Description, draft.Favorited, draft.Color, formatTime(time.Now().UTC()))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetTodo(db, id)
}

// InsertTodo stores a todo with its own id and createdAt.
func InsertTodo(db *sql.DB, todo todos.Todo) error {
	createdAt := todo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.Exec("INSERT INTO todos ("+todoColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		todo.ID, todo.Title, todo.Description, todo.Favorited, todo.Color, formatTime(createdAt))
	return err
}

func GetTodos(db *sql.DB, favorited *bool) ([]*todos.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos"
	args := []any{}
	if favorited != nil {
		query += " WHERE favorited = ?"
		args = append(args, *favorited)
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*todos.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, todo)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetTodo returns nil without an error when no todo has the id.
func GetTodo(db *sql.DB, id int64) (*todos.Todo, error) {
	row := db.QueryRow("SELECT "+todoColumns+" FROM todos WHERE id = ?", id)

	todo, err := scanTodo(row)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return todo, nil
}

func UpdateTodo(db *sql.DB, id int64, patch todos.Patch) error {
	set := []string{}
	args := []any{}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.Favorited != nil {
		set = append(set, "favorited = ?")
		args = append(args, *patch.Favorited)
	}
	if len(set) == 0 {
		return nil
	}

	query := "UPDATE todos SET " + set[0]
	for _, s := range set[1:] {
		query += ", " + s
	}
	query += " WHERE id = ?"
	args = append(args, id)

	_, err := db.Exec(query, args...)
	return err
}

func ToggleFavorite(db *sql.DB, id int64) error {
	_, err := db.Exec("UPDATE todos SET favorited = NOT favorited WHERE id = ?", id)
	return err
}

func DeleteTodo(db *sql.DB, id int64) error {
	_, err := db.Exec("DELETE FROM todos WHERE id = ?", id)
	return err
}

// Private

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*todos.Todo, error) {
	todo := &todos.Todo{}
	var createdAt string
	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Favorited, &todo.Color, &createdAt)
	if err != nil {
		return nil, err
	}
	todo.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
