package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectern/lectern/store"
)

func (d *DB) CreateTag(ctx context.Context, create *store.Tag) (*store.Tag, error) {
	fields := []string{"id", "title", "slug", "description", "is_published", "color", "created_ts", "updated_ts"}
	args := []any{create.ID, create.Title, create.Slug, create.Description, create.IsPublished, create.Color, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO tag (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create tag")
	}

	return create, nil
}

func (d *DB) ListTags(ctx context.Context, find *store.FindTag) ([]*store.Tag, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Slug != nil {
		where, args = append(where, "slug = "+placeholder(len(args)+1)), append(args, *find.Slug)
	}
	if find.IsPublished != nil {
		where, args = append(where, "is_published = "+placeholder(len(args)+1)), append(args, *find.IsPublished)
	}

	query := `SELECT id, title, slug, description, is_published, color, created_ts, updated_ts FROM tag WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY title ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	defer rows.Close()

	list := make([]*store.Tag, 0)
	for rows.Next() {
		t := &store.Tag{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.IsPublished, &t.Color, &t.CreatedTs, &t.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan tag")
		}
		list = append(list, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate tags")
	}

	return list, nil
}

func (d *DB) UpdateTag(ctx context.Context, update *store.UpdateTag) (*store.Tag, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.Slug != nil {
		set, args = append(set, "slug = "+placeholder(len(args)+1)), append(args, *update.Slug)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.IsPublished != nil {
		set, args = append(set, "is_published = "+placeholder(len(args)+1)), append(args, *update.IsPublished)
	}
	if update.Color != nil {
		set, args = append(set, "color = "+placeholder(len(args)+1)), append(args, *update.Color)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE tag SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, title, slug, description, is_published, color, created_ts, updated_ts`
	result := &store.Tag{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.Title, &result.Slug, &result.Description, &result.IsPublished, &result.Color, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("tag not found")
		}
		return nil, errors.Wrap(err, "failed to update tag")
	}

	return result, nil
}

func (d *DB) DeleteTag(ctx context.Context, delete *store.DeleteTag) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM tag WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete tag")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("tag not found")
	}

	return nil
}
