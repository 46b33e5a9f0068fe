package database

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// StoreFileName is the name of the database file kept inside every opened folder.
const StoreFileName = "photos.db"

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// StorePath returns the database location for a photo folder
func StorePath(folder string) string {
	return filepath.Join(folder, StoreFileName)
}

// IsStoreFile reports whether a file name belongs to the database itself
// (main file, WAL, shared memory or rollback journal).
func IsStoreFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), StoreFileName)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS photos (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		is_duplicate INTEGER NOT NULL DEFAULT 0,
		rating INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		video INTEGER NOT NULL DEFAULT 0,
		group_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		raw INTEGER NOT NULL DEFAULT 0,
		hide_thumbnail INTEGER NOT NULL DEFAULT 0,
		photographer TEXT NOT NULL DEFAULT '',
		camera TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_photos_group_id ON photos(group_id);`,
	`CREATE TABLE IF NOT EXISTS photo_tags (
		photo_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (photo_id, tag)
	);`,
	`CREATE TABLE IF NOT EXISTS photo_people (
		photo_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (photo_id, person_id)
	);`,
	`CREATE TABLE IF NOT EXISTS tags (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS tag_relations (
		tag TEXT NOT NULL,
		kind TEXT NOT NULL,
		target TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (tag, kind, target)
	);`,
	`CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		photo TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS cameras (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL DEFAULT 0,
		lng REAL NOT NULL DEFAULT 0,
		layer TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		shape TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);`,
}

// InitDB opens the SQLite store and creates the core tables when missing.
// Pass-through record tables are created by AutoMigrateModels.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable write-ahead Logging for better concurrency
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	for _, stmt := range schema {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("database initialized successfully at", dataSourceName)
	return db, nil
}

// EscapeLike escapes LIKE wildcards so a user string only matches literally.
// Use with `ESCAPE '\'`.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
