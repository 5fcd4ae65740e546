package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ChatSession model related methods.
	CreateChatSession(ctx context.Context, create *ChatSession) (*ChatSession, error)
	ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error)
	UpdateChatSession(ctx context.Context, update *UpdateChatSession) (*ChatSession, error)
	DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	DeleteChatMessage(ctx context.Context, delete *DeleteChatMessage) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// Category model related methods.
	CreateCategory(ctx context.Context, create *Category) (*Category, error)
	ListCategories(ctx context.Context, find *FindCategory) ([]*Category, error)
	UpdateCategory(ctx context.Context, update *UpdateCategory) (*Category, error)
	DeleteCategory(ctx context.Context, delete *DeleteCategory) error

	// Tag model related methods.
	CreateTag(ctx context.Context, create *Tag) (*Tag, error)
	ListTags(ctx context.Context, find *FindTag) ([]*Tag, error)
	UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error)
	DeleteTag(ctx context.Context, delete *DeleteTag) error

	// Content model related methods.
	CreateContent(ctx context.Context, create *Content) (*Content, error)
	ListContents(ctx context.Context, find *FindContent) ([]*Content, error)
	UpdateContent(ctx context.Context, update *UpdateContent) (*Content, error)
	DeleteContent(ctx context.Context, delete *DeleteContent) error
}
