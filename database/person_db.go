package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

type PersonRecord struct {
	ID       string
	Name     string
	Photo    string
	Notes    string
	Category string
}

// settable person columns
const (
	PersonColumnName     = "name"
	PersonColumnPhoto    = "photo"
	PersonColumnNotes    = "notes"
	PersonColumnCategory = "category"
)

func CreatePerson(db Querier, p PersonRecord) error {
	queryBuilder := psql.Insert("people").
		Columns("id", "name", "photo", "notes", "category").
		Values(p.ID, p.Name, p.Photo, p.Notes, p.Category)
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for CreatePerson: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute CreatePerson query for %s: %w", p.Name, err)
	}
	return nil
}

func ListPeople(db Querier) ([]PersonRecord, error) {
	queryBuilder := psql.Select("id", "name", "photo", "notes", "category").
		From("people").
		OrderBy("name ASC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListPeople: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListPeople query: %w", err)
	}
	defer rows.Close()
	people := []PersonRecord{}
	for rows.Next() {
		var p PersonRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Photo, &p.Notes, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		people = append(people, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}
	return people, nil
}

// UpdatePersonColumn sets one of the PersonColumn* columns.
func UpdatePersonColumn(db Querier, id, column, value string) error {
	sqlStr, args, err := psql.Update("people").Set(column, value).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for UpdatePersonColumn: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s for person %s: %w", column, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
