package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectern/lectern/store"
)

func (d *DB) CreateChatSession(ctx context.Context, create *store.ChatSession) (*store.ChatSession, error) {
	fields := []string{"id", "user_id", "title", "created_ts", "updated_ts"}
	args := []any{create.ID, create.UserID, create.Title, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO chat_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create chat_session")
	}

	return create, nil
}

func (d *DB) ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}

	query := `SELECT id, user_id, title, created_ts, updated_ts FROM chat_session WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat_sessions")
	}
	defer rows.Close()

	list := make([]*store.ChatSession, 0)
	for rows.Next() {
		s := &store.ChatSession{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedTs, &s.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat_session")
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat_sessions")
	}

	return list, nil
}

func (d *DB) UpdateChatSession(ctx context.Context, update *store.UpdateChatSession) (*store.ChatSession, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE chat_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, user_id, title, created_ts, updated_ts`
	result := &store.ChatSession{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.UserID, &result.Title, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("chat_session not found")
		}
		return nil, errors.Wrap(err, "failed to update chat_session")
	}

	return result, nil
}

func (d *DB) DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error {
	where, args := []string{"id = " + placeholder(1)}, []any{delete.ID}
	if delete.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *delete.UserID)
	}

	result, err := d.db.ExecContext(ctx, `DELETE FROM chat_session WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return errors.Wrap(err, "failed to delete chat_session")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("chat_session not found")
	}

	// Messages are owned by the session; remove them with it.
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chat_message WHERE session_id = `+placeholder(1), delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete chat_messages")
	}

	return nil
}

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	fields := []string{"id", "session_id", "role", "content", "created_ts"}
	args := []any{create.ID, create.SessionID, string(create.Role), create.Content, create.CreatedTs}

	stmt := `INSERT INTO chat_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING seq`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.Seq); err != nil {
		return nil, errors.Wrap(err, "failed to create chat_message")
	}

	return create, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *find.SessionID)
	}

	query := `SELECT seq, id, session_id, role, content, created_ts FROM chat_message WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY seq ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat_messages")
	}
	defer rows.Close()

	list := make([]*store.ChatMessage, 0)
	for rows.Next() {
		m := &store.ChatMessage{}
		var role string
		if err := rows.Scan(&m.Seq, &m.ID, &m.SessionID, &role, &m.Content, &m.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat_message")
		}
		m.Role = store.ChatMessageRole(role)
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat_messages")
	}

	return list, nil
}

func (d *DB) DeleteChatMessage(ctx context.Context, delete *store.DeleteChatMessage) error {
	where, args := []string{}, []any{}

	if delete.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *delete.SessionID)
	}

	if len(where) == 0 {
		return errors.New("no condition to delete")
	}

	stmt := `DELETE FROM chat_message WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to delete chat_message")
	}

	return nil
}
