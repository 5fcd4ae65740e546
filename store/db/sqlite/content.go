package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectern/lectern/store"
)

// Tags live in a TEXT column as a JSON array so the schema stays flat.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal tags")
	}
	return string(raw), nil
}

func unmarshalTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tags")
	}
	return tags, nil
}

func (d *DB) CreateContent(ctx context.Context, create *store.Content) (*store.Content, error) {
	tags, err := marshalTags(create.Tags)
	if err != nil {
		return nil, err
	}

	fields := []string{"id", "title", "description", "category", "topic", "week", "tags", "content_type", "file_path", "file_name", "created_ts", "updated_ts"}
	args := []any{create.ID, create.Title, create.Description, string(create.Category), create.Topic, create.Week, tags, string(create.ContentType), create.FilePath, create.FileName, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO content (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create content")
	}

	return create, nil
}

func (d *DB) ListContents(ctx context.Context, find *store.FindContent) ([]*store.Content, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Category != nil {
		where, args = append(where, "category = "+placeholder(len(args)+1)), append(args, string(*find.Category))
	}

	query := `SELECT id, title, description, category, topic, week, tags, content_type, file_path, file_name, created_ts, updated_ts FROM content WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY week ASC, created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contents")
	}
	defer rows.Close()

	list := make([]*store.Content, 0)
	for rows.Next() {
		c := &store.Content{}
		var category, contentType, tags string
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &category, &c.Topic, &c.Week, &tags, &contentType, &c.FilePath, &c.FileName, &c.CreatedTs, &c.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan content")
		}
		c.Category = store.ContentCategory(category)
		c.ContentType = store.ContentType(contentType)
		if c.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate contents")
	}

	return list, nil
}

func (d *DB) UpdateContent(ctx context.Context, update *store.UpdateContent) (*store.Content, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Category != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, string(*update.Category))
	}
	if update.Topic != nil {
		set, args = append(set, "topic = "+placeholder(len(args)+1)), append(args, *update.Topic)
	}
	if update.Week != nil {
		set, args = append(set, "week = "+placeholder(len(args)+1)), append(args, *update.Week)
	}
	if update.Tags != nil {
		tags, err := marshalTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, tags)
	}
	if update.ContentType != nil {
		set, args = append(set, "content_type = "+placeholder(len(args)+1)), append(args, string(*update.ContentType))
	}
	if update.FilePath != nil {
		set, args = append(set, "file_path = "+placeholder(len(args)+1)), append(args, *update.FilePath)
	}
	if update.FileName != nil {
		set, args = append(set, "file_name = "+placeholder(len(args)+1)), append(args, *update.FileName)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE content SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, title, description, category, topic, week, tags, content_type, file_path, file_name, created_ts, updated_ts`
	result := &store.Content{}
	var category, contentType, tags string
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.Title, &result.Description, &category, &result.Topic, &result.Week, &tags, &contentType, &result.FilePath, &result.FileName, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("content not found")
		}
		return nil, errors.Wrap(err, "failed to update content")
	}
	result.Category = store.ContentCategory(category)
	result.ContentType = store.ContentType(contentType)
	if result.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}

	return result, nil
}

func (d *DB) DeleteContent(ctx context.Context, delete *store.DeleteContent) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM content WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete content")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("content not found")
	}

	return nil
}
