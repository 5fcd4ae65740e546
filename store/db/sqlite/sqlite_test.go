package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lectern/lectern/internal/profile"
	"github.com/lectern/lectern/store"
	"github.com/lectern/lectern/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "prod",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "lectern_test.db"),
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func stringPtr(s string) *string { return &s }

func TestChatSessionCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	created, err := s.CreateChatSession(ctx, &store.ChatSession{
		ID:        "sess-1",
		UserID:    "user-1",
		Title:     "New Chat",
		CreatedTs: now,
		UpdatedTs: now,
	})
	require.NoError(t, err)
	require.Equal(t, "sess-1", created.ID)

	got, err := s.GetChatSession(ctx, &store.FindChatSession{ID: stringPtr("sess-1")})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "New Chat", got.Title)

	// Scoping by another user must not find the session.
	got, err = s.GetChatSession(ctx, &store.FindChatSession{
		ID:     stringPtr("sess-1"),
		UserID: stringPtr("user-2"),
	})
	require.NoError(t, err)
	require.Nil(t, got)

	title := "Renamed"
	ts := now + 5
	updated, err := s.UpdateChatSession(ctx, &store.UpdateChatSession{
		ID:        "sess-1",
		Title:     &title,
		UpdatedTs: &ts,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, ts, updated.UpdatedTs)

	err = s.DeleteChatSession(ctx, &store.DeleteChatSession{ID: "sess-1"})
	require.NoError(t, err)

	err = s.DeleteChatSession(ctx, &store.DeleteChatSession{ID: "sess-1"})
	require.Error(t, err)
}

func TestListChatSessionsOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, id := range []string{"a", "b", "c"} {
		_, err := s.CreateChatSession(ctx, &store.ChatSession{
			ID:        id,
			UserID:    "user-1",
			Title:     "New Chat",
			CreatedTs: int64(100 + i),
			UpdatedTs: int64(100 + i),
		})
		require.NoError(t, err)
	}

	list, err := s.ListChatSessions(ctx, &store.FindChatSession{UserID: stringPtr("user-1")})
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Most recently updated first.
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, "a", list[2].ID)
}

func TestChatMessageAppendAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateChatSession(ctx, &store.ChatSession{
		ID: "sess-1", UserID: "user-1", Title: "New Chat", CreatedTs: now, UpdatedTs: now,
	})
	require.NoError(t, err)

	// Identical timestamps; seq must still keep insertion order.
	for i, content := range []string{"first", "second", "third"} {
		role := store.ChatMessageRoleUser
		if i%2 == 1 {
			role = store.ChatMessageRoleAssistant
		}
		_, err := s.CreateChatMessage(ctx, &store.ChatMessage{
			ID:        content,
			SessionID: "sess-1",
			Role:      role,
			Content:   content,
			CreatedTs: now,
		})
		require.NoError(t, err)
	}

	msgs, err := s.ListChatMessages(ctx, &store.FindChatMessage{SessionID: stringPtr("sess-1")})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "second", msgs[1].Content)
	require.Equal(t, "third", msgs[2].Content)
	require.Equal(t, store.ChatMessageRoleAssistant, msgs[1].Role)
	require.Less(t, msgs[0].Seq, msgs[1].Seq)
}

func TestDeleteChatSessionRemovesMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateChatSession(ctx, &store.ChatSession{
		ID: "sess-1", UserID: "user-1", Title: "New Chat", CreatedTs: now, UpdatedTs: now,
	})
	require.NoError(t, err)
	_, err = s.CreateChatMessage(ctx, &store.ChatMessage{
		ID: "msg-1", SessionID: "sess-1", Role: store.ChatMessageRoleUser, Content: "hello", CreatedTs: now,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteChatSession(ctx, &store.DeleteChatSession{ID: "sess-1"}))

	msgs, err := s.ListChatMessages(ctx, &store.FindChatMessage{SessionID: stringPtr("sess-1")})
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestDeleteChatSessionScopedByUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateChatSession(ctx, &store.ChatSession{
		ID: "sess-1", UserID: "user-1", Title: "New Chat", CreatedTs: now, UpdatedTs: now,
	})
	require.NoError(t, err)

	err = s.DeleteChatSession(ctx, &store.DeleteChatSession{ID: "sess-1", UserID: stringPtr("user-2")})
	require.Error(t, err)

	got, err := s.GetChatSession(ctx, &store.FindChatSession{ID: stringPtr("sess-1")})
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateUser(ctx, &store.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Alice",
		Role:         store.RoleInstructor,
		CreatedTs:    now,
		UpdatedTs:    now,
	})
	require.NoError(t, err)

	got, err := s.GetUser(ctx, &store.FindUser{Email: stringPtr("alice@example.com")})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, store.RoleInstructor, got.Role)

	// Duplicate email must be rejected by the unique index.
	_, err = s.CreateUser(ctx, &store.User{
		ID: "user-2", Email: "alice@example.com", PasswordHash: "x", CreatedTs: now, UpdatedTs: now,
	})
	require.Error(t, err)

	name := "Alice B."
	updated, err := s.UpdateUser(ctx, &store.UpdateUser{ID: "user-1", FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice B.", updated.FullName)

	require.NoError(t, s.DeleteUser(ctx, &store.DeleteUser{ID: "user-1"}))
	got, err = s.GetUser(ctx, &store.FindUser{Email: stringPtr("alice@example.com")})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateCategory(ctx, &store.Category{
		ID:        "cat-1",
		Title:     "Operating Systems",
		Slug:      "operating-systems",
		Position:  2,
		CreatedTs: now,
		UpdatedTs: now,
	})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, &store.Category{
		ID:        "cat-2",
		Title:     "Networks",
		Slug:      "networks",
		Position:  1,
		CreatedTs: now,
		UpdatedTs: now,
	})
	require.NoError(t, err)

	list, err := s.ListCategories(ctx, &store.FindCategory{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "cat-2", list[0].ID) // lower position first

	published := true
	updated, err := s.UpdateCategory(ctx, &store.UpdateCategory{ID: "cat-1", IsPublished: &published})
	require.NoError(t, err)
	require.True(t, updated.IsPublished)

	list, err = s.ListCategories(ctx, &store.FindCategory{IsPublished: &published})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteCategory(ctx, &store.DeleteCategory{ID: "cat-2"}))
	require.Error(t, s.DeleteCategory(ctx, &store.DeleteCategory{ID: "cat-2"}))
}

func TestContentTagsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateContent(ctx, &store.Content{
		ID:          "content-1",
		Title:       "Week 3 slides",
		Category:    store.ContentCategoryTheory,
		Topic:       "Scheduling",
		Week:        3,
		Tags:        []string{"scheduling", "processes"},
		ContentType: store.ContentTypeSlides,
		CreatedTs:   now,
		UpdatedTs:   now,
	})
	require.NoError(t, err)

	list, err := s.ListContents(ctx, &store.FindContent{ID: stringPtr("content-1")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, []string{"scheduling", "processes"}, list[0].Tags)

	tags := []string{"scheduling"}
	updated, err := s.UpdateContent(ctx, &store.UpdateContent{ID: "content-1", Tags: &tags})
	require.NoError(t, err)
	require.Equal(t, []string{"scheduling"}, updated.Tags)

	category := store.ContentCategoryLab
	list, err = s.ListContents(ctx, &store.FindContent{Category: &category})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestTagCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	_, err := s.CreateTag(ctx, &store.Tag{
		ID:        "tag-1",
		Title:     "Concurrency",
		Slug:      "concurrency",
		Color:     store.DefaultTagColor,
		CreatedTs: now,
		UpdatedTs: now,
	})
	require.NoError(t, err)

	list, err := s.ListTags(ctx, &store.FindTag{Slug: stringPtr("concurrency")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, store.DefaultTagColor, list[0].Color)

	color := "#ff0000"
	updated, err := s.UpdateTag(ctx, &store.UpdateTag{ID: "tag-1", Color: &color})
	require.NoError(t, err)
	require.Equal(t, "#ff0000", updated.Color)

	require.NoError(t, s.DeleteTag(ctx, &store.DeleteTag{ID: "tag-1"}))
}
