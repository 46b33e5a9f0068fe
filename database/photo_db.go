package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// PhotoRecord is a photo row together with its ordered tag and people lists.
type PhotoRecord struct {
	ID            string
	Name          string
	Path          string
	Title         string
	Description   string
	IsDuplicate   bool
	Rating        int
	Location      string
	Thumbnail     string
	Video         bool
	Group         string
	Date          string
	Raw           bool
	HideThumbnail bool
	Photographer  string
	Camera        string
	Tags          []string
	People        []string
}

// settable scalar columns of the photos table
const (
	ColumnTitle         = "title"
	ColumnDescription   = "description"
	ColumnRating        = "rating"
	ColumnIsDuplicate   = "is_duplicate"
	ColumnHideThumbnail = "hide_thumbnail"
	ColumnThumbnail     = "thumbnail"
)

var photoColumns = []string{
	"id", "name", "path", "title", "description", "is_duplicate", "rating", "location",
	"thumbnail", "video", "group_id", "date", "raw", "hide_thumbnail", "photographer", "camera",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (PhotoRecord, error) {
	var p PhotoRecord
	var isDup, video, raw, hide int
	err := row.Scan(&p.ID, &p.Name, &p.Path, &p.Title, &p.Description, &isDup, &p.Rating, &p.Location,
		&p.Thumbnail, &video, &p.Group, &p.Date, &raw, &hide, &p.Photographer, &p.Camera)
	if err != nil {
		return PhotoRecord{}, err
	}
	p.IsDuplicate = isDup != 0
	p.Video = video != 0
	p.Raw = raw != 0
	p.HideThumbnail = hide != 0
	return p, nil
}

// ListPhotos returns every stored photo with associations loaded. Rows that
// fail to scan are returned in badRows instead of aborting the listing.
func ListPhotos(db Querier) (photos []PhotoRecord, badRows []error, err error) {
	sqlStr, args, err := psql.Select(photoColumns...).From("photos").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build SQL query for ListPhotos: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute ListPhotos query: %w", err)
	}
	for rows.Next() {
		p, scanErr := scanPhoto(rows)
		if scanErr != nil {
			badRows = append(badRows, fmt.Errorf("failed to scan photo row: %w", scanErr))
			continue
		}
		photos = append(photos, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("error iterating photo rows: %w", err)
	}

	if err := attachAssociations(db, photos, nil); err != nil {
		return nil, nil, err
	}
	return photos, badRows, nil
}

// GetPhoto loads one photo by id. Returns sql.ErrNoRows when missing.
func GetPhoto(db Querier, id string) (PhotoRecord, error) {
	sqlStr, args, err := psql.Select(photoColumns...).From("photos").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("failed to build SQL query for GetPhoto: %w", err)
	}

	p, err := scanPhoto(db.QueryRow(sqlStr, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return PhotoRecord{}, sql.ErrNoRows
		}
		return PhotoRecord{}, fmt.Errorf("failed to query or scan photo %s: %w", id, err)
	}

	list := []PhotoRecord{p}
	if err := attachAssociations(db, list, []string{id}); err != nil {
		return PhotoRecord{}, err
	}
	return list[0], nil
}

// GetPhotosByIDs loads the requested photos; unknown ids are silently absent.
func GetPhotosByIDs(db Querier, ids []string) ([]PhotoRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sqlStr, args, err := psql.Select(photoColumns...).From("photos").Where(sq.Eq{"id": ids}).OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetPhotosByIDs: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetPhotosByIDs query: %w", err)
	}
	var photos []PhotoRecord
	for rows.Next() {
		p, scanErr := scanPhoto(rows)
		if scanErr != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan photo row: %w", scanErr)
		}
		photos = append(photos, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating photo rows: %w", err)
	}

	if err := attachAssociations(db, photos, ids); err != nil {
		return nil, err
	}
	return photos, nil
}

// attachAssociations fills Tags and People. A nil ids slice loads every association.
func attachAssociations(db Querier, photos []PhotoRecord, ids []string) error {
	if len(photos) == 0 {
		return nil
	}
	index := make(map[string]int, len(photos))
	for i := range photos {
		index[photos[i].ID] = i
		photos[i].Tags = []string{}
		photos[i].People = []string{}
	}

	load := func(table, column string, assign func(p *PhotoRecord, v string)) error {
		qb := psql.Select("photo_id", column).From(table).OrderBy("photo_id", "position ASC")
		if ids != nil {
			qb = qb.Where(sq.Eq{"photo_id": ids})
		}
		sqlStr, args, err := qb.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL query for %s: %w", table, err)
		}
		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var photoID, value string
			if err := rows.Scan(&photoID, &value); err != nil {
				return fmt.Errorf("failed to scan %s row: %w", table, err)
			}
			if i, ok := index[photoID]; ok {
				assign(&photos[i], value)
			}
		}
		return rows.Err()
	}

	if err := load("photo_tags", "tag", func(p *PhotoRecord, v string) { p.Tags = append(p.Tags, v) }); err != nil {
		return err
	}
	return load("photo_people", "person_id", func(p *PhotoRecord, v string) { p.People = append(p.People, v) })
}

// InsertPhoto stores a new photo row and its associations.
func InsertPhoto(db Querier, p PhotoRecord) error {
	sqlStr, args, err := psql.Insert("photos").
		Columns(photoColumns...).
		Values(p.ID, p.Name, p.Path, p.Title, p.Description, boolToInt(p.IsDuplicate), p.Rating, p.Location,
			p.Thumbnail, boolToInt(p.Video), p.Group, p.Date, boolToInt(p.Raw), boolToInt(p.HideThumbnail),
			p.Photographer, p.Camera).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for InsertPhoto: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert photo %s: %w", p.Name, err)
	}
	return replaceAssociations(db, p)
}

// UpdatePhoto rewrites every mutable column and both association lists of an existing photo.
func UpdatePhoto(db Querier, p PhotoRecord) error {
	sqlStr, args, err := psql.Update("photos").
		SetMap(map[string]any{
			"title":          p.Title,
			"description":    p.Description,
			"is_duplicate":   boolToInt(p.IsDuplicate),
			"rating":         p.Rating,
			"location":       p.Location,
			"thumbnail":      p.Thumbnail,
			"group_id":       p.Group,
			"date":           p.Date,
			"hide_thumbnail": boolToInt(p.HideThumbnail),
			"photographer":   p.Photographer,
			"camera":         p.Camera,
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for UpdatePhoto: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update photo %s: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return replaceAssociations(db, p)
}

// SetPhotoColumn updates a single scalar column. column must be one of the Column* constants.
func SetPhotoColumn(db Querier, id, column string, value any) error {
	sqlStr, args, err := psql.Update("photos").Set(column, value).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for SetPhotoColumn: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to set %s for photo %s: %w", column, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func replaceAssociations(db Querier, p PhotoRecord) error {
	write := func(table, column string, values []string) error {
		sqlStr, args, err := psql.Delete(table).Where(sq.Eq{"photo_id": p.ID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL query for clearing %s: %w", table, err)
		}
		if _, err = db.Exec(sqlStr, args...); err != nil {
			return fmt.Errorf("failed to clear %s for photo %s: %w", table, p.ID, err)
		}
		if len(values) == 0 {
			return nil
		}
		ins := psql.Insert(table).Columns("photo_id", column, "position").Options("OR IGNORE")
		for i, v := range values {
			ins = ins.Values(p.ID, v, i)
		}
		sqlStr, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL query for writing %s: %w", table, err)
		}
		if _, err = db.Exec(sqlStr, args...); err != nil {
			return fmt.Errorf("failed to write %s for photo %s: %w", table, p.ID, err)
		}
		return nil
	}

	if err := write("photo_tags", "tag", p.Tags); err != nil {
		return err
	}
	return write("photo_people", "person_id", p.People)
}

// DeletePhotosByName removes photo rows (and their associations) by file name
// and returns the thumbnails the removed rows referenced.
func DeletePhotosByName(db *sql.DB, names []string) (thumbnails []string, deleted int64, err error) {
	if len(names) == 0 {
		return nil, 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction for DeletePhotosByName: %w", err)
	}
	defer tx.Rollback()

	sqlStr, args, err := psql.Select("id", "thumbnail").From("photos").Where(sq.Eq{"name": names}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build SQL query for deleted photo ids: %w", err)
	}
	rows, err := tx.Query(sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query deleted photo ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id, thumbnail string
		if err := rows.Scan(&id, &thumbnail); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan photo id: %w", err)
		}
		ids = append(ids, id)
		if thumbnail != "" {
			thumbnails = append(thumbnails, thumbnail)
		}
	}
	rows.Close()

	if len(ids) > 0 {
		for _, table := range []string{"photo_tags", "photo_people"} {
			sqlStr, args, err := psql.Delete(table).Where(sq.Eq{"photo_id": ids}).ToSql()
			if err != nil {
				return nil, 0, fmt.Errorf("failed to build SQL query for clearing %s: %w", table, err)
			}
			if _, err = tx.Exec(sqlStr, args...); err != nil {
				return nil, 0, fmt.Errorf("failed to clear %s for deleted photos: %w", table, err)
			}
		}
	}

	sqlStr, args, err = psql.Delete("photos").Where(sq.Eq{"name": names}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build SQL query for DeletePhotosByName: %w", err)
	}
	res, err := tx.Exec(sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to delete photos: %w", err)
	}
	deleted, _ = res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit photo deletion: %w", err)
	}
	return thumbnails, deleted, nil
}

// SearchPhotoIDs returns ids of non-duplicate photos matching every filter.
func SearchPhotoIDs(db Querier, filters ...sq.Sqlizer) ([]string, error) {
	qb := psql.Select("id").From("photos").Where(sq.Eq{"is_duplicate": 0})
	for _, f := range filters {
		qb = qb.Where(f)
	}
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for SearchPhotoIDs: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute photo search: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan photo id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
