package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectern/lectern/store"
)

func (d *DB) CreateCategory(ctx context.Context, create *store.Category) (*store.Category, error) {
	fields := []string{"id", "title", "slug", "description", "is_published", "parent_id", "position", "created_ts", "updated_ts"}
	args := []any{create.ID, create.Title, create.Slug, create.Description, create.IsPublished, create.ParentID, create.Position, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO category (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}

	return create, nil
}

func (d *DB) ListCategories(ctx context.Context, find *store.FindCategory) ([]*store.Category, error) {
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
	if find.ParentID != nil {
		where, args = append(where, "parent_id = "+placeholder(len(args)+1)), append(args, *find.ParentID)
	}

	query := `SELECT id, title, slug, description, is_published, parent_id, position, created_ts, updated_ts FROM category WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY position ASC, created_ts ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	defer rows.Close()

	list := make([]*store.Category, 0)
	for rows.Next() {
		c := &store.Category{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.ParentID, &c.Position, &c.CreatedTs, &c.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate categories")
	}

	return list, nil
}

func (d *DB) UpdateCategory(ctx context.Context, update *store.UpdateCategory) (*store.Category, error) {
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
	if update.ParentID != nil {
		set, args = append(set, "parent_id = "+placeholder(len(args)+1)), append(args, *update.ParentID)
	}
	if update.Position != nil {
		set, args = append(set, "position = "+placeholder(len(args)+1)), append(args, *update.Position)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE category SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, title, slug, description, is_published, parent_id, position, created_ts, updated_ts`
	result := &store.Category{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.Title, &result.Slug, &result.Description, &result.IsPublished, &result.ParentID, &result.Position, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("category not found")
		}
		return nil, errors.Wrap(err, "failed to update category")
	}

	return result, nil
}

func (d *DB) DeleteCategory(ctx context.Context, delete *store.DeleteCategory) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM category WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("category not found")
	}

	return nil
}
