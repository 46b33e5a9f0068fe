package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

type CameraRecord struct {
	ID   string
	Name string
}

type PlaceRecord struct {
	ID       string
	Name     string
	Lat      float64
	Lng      float64
	Layer    string
	Category string
	Shape    string
	Tags     string
	Notes    string
}

// settable place columns
const (
	PlaceColumnName     = "name"
	PlaceColumnLayer    = "layer"
	PlaceColumnCategory = "category"
	PlaceColumnShape    = "shape"
	PlaceColumnTags     = "tags"
	PlaceColumnNotes    = "notes"
)

func CreateCamera(db Querier, c CameraRecord) error {
	sqlStr, args, err := psql.Insert("cameras").Columns("id", "name").Values(c.ID, c.Name).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for CreateCamera: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute CreateCamera query for %s: %w", c.Name, err)
	}
	return nil
}

func ListCameras(db Querier) ([]CameraRecord, error) {
	sqlStr, args, err := psql.Select("id", "name").From("cameras").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListCameras: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListCameras query: %w", err)
	}
	defer rows.Close()
	cameras := []CameraRecord{}
	for rows.Next() {
		var c CameraRecord
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan camera row: %w", err)
		}
		cameras = append(cameras, c)
	}
	return cameras, rows.Err()
}

func CreatePlace(db Querier, p PlaceRecord) error {
	sqlStr, args, err := psql.Insert("places").
		Columns("id", "name", "lat", "lng", "layer", "category", "shape", "tags", "notes").
		Values(p.ID, p.Name, p.Lat, p.Lng, p.Layer, p.Category, p.Shape, p.Tags, p.Notes).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for CreatePlace: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute CreatePlace query for %s: %w", p.Name, err)
	}
	return nil
}

func ListPlaces(db Querier) ([]PlaceRecord, error) {
	sqlStr, args, err := psql.Select("id", "name", "lat", "lng", "layer", "category", "shape", "tags", "notes").
		From("places").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListPlaces: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListPlaces query: %w", err)
	}
	defer rows.Close()
	places := []PlaceRecord{}
	for rows.Next() {
		var p PlaceRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lng, &p.Layer, &p.Category, &p.Shape, &p.Tags, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// UpdatePlace applies a column map to a place row. Keys must be place column names.
func UpdatePlace(db Querier, id string, values map[string]any) error {
	sqlStr, args, err := psql.Update("places").SetMap(values).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for UpdatePlace: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update place %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeletePlace(db Querier, id string) error {
	sqlStr, args, err := psql.Delete("places").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for DeletePlace: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to delete place %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
