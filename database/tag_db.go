package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// RelationKind names one of the tag rule lists kept in tag_relations.
type RelationKind string

const (
	RelationPrereq       RelationKind = "prereq"
	RelationCoreq        RelationKind = "coreq"
	RelationIncompatible RelationKind = "incompatible"
)

type TagRecord struct {
	ID           string
	Name         string
	Color        string
	Prereqs      []string
	Coreqs       []string
	Incompatible []string
}

// ListTags returns every tag with its relation lists, ordered by name.
func ListTags(db Querier) ([]TagRecord, error) {
	sqlStr, args, err := psql.Select("id", "name", "color").From("tags").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListTags: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListTags query: %w", err)
	}
	tags := []TagRecord{}
	index := map[string]int{}
	for rows.Next() {
		var t TagRecord
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		t.Prereqs, t.Coreqs, t.Incompatible = []string{}, []string{}, []string{}
		index[t.Name] = len(tags)
		tags = append(tags, t)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	sqlStr, args, err = psql.Select("tag", "kind", "target").From("tag_relations").OrderBy("tag", "kind", "position ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for tag relations: %w", err)
	}
	rows, err = db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag relations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag, kind, target string
		if err := rows.Scan(&tag, &kind, &target); err != nil {
			return nil, fmt.Errorf("failed to scan tag relation row: %w", err)
		}
		i, ok := index[tag]
		if !ok {
			continue
		}
		switch RelationKind(kind) {
		case RelationPrereq:
			tags[i].Prereqs = append(tags[i].Prereqs, target)
		case RelationCoreq:
			tags[i].Coreqs = append(tags[i].Coreqs, target)
		case RelationIncompatible:
			tags[i].Incompatible = append(tags[i].Incompatible, target)
		}
	}
	return tags, rows.Err()
}

func InsertTag(db Querier, t TagRecord) error {
	sqlStr, args, err := psql.Insert("tags").Columns("id", "name", "color").Values(t.ID, t.Name, t.Color).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for InsertTag: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert tag %s: %w", t.Name, err)
	}
	for kind, targets := range map[RelationKind][]string{
		RelationPrereq:       t.Prereqs,
		RelationCoreq:        t.Coreqs,
		RelationIncompatible: t.Incompatible,
	} {
		if err := SetTagRelations(db, t.Name, kind, targets); err != nil {
			return err
		}
	}
	return nil
}

func SetTagColor(db Querier, name, color string) error {
	sqlStr, args, err := psql.Update("tags").Set("color", color).Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for SetTagColor: %w", err)
	}
	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to set color for tag %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTagRelations replaces one relation list of a tag.
func SetTagRelations(db Querier, name string, kind RelationKind, targets []string) error {
	sqlStr, args, err := psql.Delete("tag_relations").Where(sq.Eq{"tag": name, "kind": string(kind)}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for clearing tag relations: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to clear %s relations of tag %s: %w", kind, name, err)
	}
	if len(targets) == 0 {
		return nil
	}

	ins := psql.Insert("tag_relations").Columns("tag", "kind", "target", "position").Options("OR IGNORE")
	for i, target := range targets {
		ins = ins.Values(name, string(kind), target, i)
	}
	sqlStr, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for writing tag relations: %w", err)
	}
	if _, err = db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to write %s relations of tag %s: %w", kind, name, err)
	}
	return nil
}
