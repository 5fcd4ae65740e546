package store

import (
	"context"
	"time"

	"github.com/lectern/lectern/internal/profile"
	"github.com/lectern/lectern/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	sessionCache *cache.Cache // cache for chat sessions
	userCache    *cache.Cache // cache for users
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:       driver,
		profile:      profile,
		cacheConfig:  cacheConfig,
		sessionCache: cache.New(cacheConfig),
		userCache:    cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Ping verifies that the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.GetDB().PingContext(ctx)
}

func (s *Store) Close() error {
	s.sessionCache.Close()
	s.userCache.Close()

	return s.driver.Close()
}

func (s *Store) CreateChatSession(ctx context.Context, create *ChatSession) (*ChatSession, error) {
	session, err := s.driver.CreateChatSession(ctx, create)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(ctx, session.ID, session)
	return session, nil
}

func (s *Store) ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx, find)
}

// GetChatSession returns the single session matching find, or nil when none
// matches.
func (s *Store) GetChatSession(ctx context.Context, find *FindChatSession) (*ChatSession, error) {
	if find.ID != nil && find.UserID == nil {
		if cached, ok := s.sessionCache.Get(ctx, *find.ID); ok {
			if session, ok := cached.(*ChatSession); ok {
				return session, nil
			}
		}
	}

	list, err := s.driver.ListChatSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	session := list[0]
	s.sessionCache.Set(ctx, session.ID, session)
	return session, nil
}

func (s *Store) UpdateChatSession(ctx context.Context, update *UpdateChatSession) (*ChatSession, error) {
	session, err := s.driver.UpdateChatSession(ctx, update)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(ctx, session.ID, session)
	return session, nil
}

func (s *Store) DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error {
	if err := s.driver.DeleteChatSession(ctx, delete); err != nil {
		return err
	}
	s.sessionCache.Delete(ctx, delete.ID)
	return nil
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) DeleteChatMessage(ctx context.Context, delete *DeleteChatMessage) error {
	return s.driver.DeleteChatMessage(ctx, delete)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil && find.Role == nil {
		if cached, ok := s.userCache.Get(ctx, *find.ID); ok {
			if user, ok := cached.(*User); ok {
				return user, nil
			}
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	user := list[0]
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	if err := s.driver.DeleteUser(ctx, delete); err != nil {
		return err
	}
	s.userCache.Delete(ctx, delete.ID)
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, create *Category) (*Category, error) {
	return s.driver.CreateCategory(ctx, create)
}

func (s *Store) ListCategories(ctx context.Context, find *FindCategory) ([]*Category, error) {
	return s.driver.ListCategories(ctx, find)
}

func (s *Store) UpdateCategory(ctx context.Context, update *UpdateCategory) (*Category, error) {
	return s.driver.UpdateCategory(ctx, update)
}

func (s *Store) DeleteCategory(ctx context.Context, delete *DeleteCategory) error {
	return s.driver.DeleteCategory(ctx, delete)
}

func (s *Store) CreateTag(ctx context.Context, create *Tag) (*Tag, error) {
	return s.driver.CreateTag(ctx, create)
}

func (s *Store) ListTags(ctx context.Context, find *FindTag) ([]*Tag, error) {
	return s.driver.ListTags(ctx, find)
}

func (s *Store) UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error) {
	return s.driver.UpdateTag(ctx, update)
}

func (s *Store) DeleteTag(ctx context.Context, delete *DeleteTag) error {
	return s.driver.DeleteTag(ctx, delete)
}

func (s *Store) CreateContent(ctx context.Context, create *Content) (*Content, error) {
	return s.driver.CreateContent(ctx, create)
}

func (s *Store) ListContents(ctx context.Context, find *FindContent) ([]*Content, error) {
	return s.driver.ListContents(ctx, find)
}

func (s *Store) UpdateContent(ctx context.Context, update *UpdateContent) (*Content, error) {
	return s.driver.UpdateContent(ctx, update)
}

func (s *Store) DeleteContent(ctx context.Context, delete *DeleteContent) error {
	return s.driver.DeleteContent(ctx, delete)
}
