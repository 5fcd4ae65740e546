// Package chat orchestrates conversation turns: it persists the user's
// message, asks the generation backend for a reply, and degrades to a
// canned reply when the backend is unavailable.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/lectern/lectern/plugin/generator"
	apierrors "github.com/lectern/lectern/server/internal/errors"
	"github.com/lectern/lectern/server/internal/observability"
	"github.com/lectern/lectern/store"
)

const (
	// DefaultTitle is assigned to sessions created without one.
	DefaultTitle = "New Chat"
	// DefaultFallbackReply is returned as the assistant message when the
	// generation backend fails or times out.
	DefaultFallbackReply = "I'm sorry, I couldn't connect to the AI service."

	// contextWindow caps how many recent messages are sent to the backend.
	contextWindow = 5
)

// SessionStore is the slice of the store the orchestrator needs. It is
// satisfied by *store.Store and by the package mock.
type SessionStore interface {
	CreateChatSession(ctx context.Context, create *store.ChatSession) (*store.ChatSession, error)
	GetChatSession(ctx context.Context, find *store.FindChatSession) (*store.ChatSession, error)
	ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error)
	UpdateChatSession(ctx context.Context, update *store.UpdateChatSession) (*store.ChatSession, error)
	DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error
	CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error)
	ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error)
}

// SessionDetail is a session snapshot with its messages in order.
type SessionDetail struct {
	Session  *store.ChatSession
	Messages []*store.ChatMessage
}

// Turn is the result of one SendMessage call.
type Turn struct {
	Message *store.ChatMessage
	Session *SessionDetail
}

// Config tunes the orchestrator. Zero values fall back to defaults.
type Config struct {
	// FallbackReply replaces the assistant message when generation fails.
	FallbackReply string
	// GenerationTimeout bounds one generation call.
	GenerationTimeout time.Duration
	Logger            *slog.Logger
}

// Orchestrator drives chat turns against the store and the generator.
type Orchestrator struct {
	store     SessionStore
	generator generator.Service

	fallbackReply     string
	generationTimeout time.Duration
	logger            *slog.Logger

	locks *keyedMutex
}

func NewOrchestrator(sessionStore SessionStore, gen generator.Service, config Config) *Orchestrator {
	if config.FallbackReply == "" {
		config.FallbackReply = DefaultFallbackReply
	}
	if config.GenerationTimeout <= 0 {
		config.GenerationTimeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Orchestrator{
		store:             sessionStore,
		generator:         gen,
		fallbackReply:     config.FallbackReply,
		generationTimeout: config.GenerationTimeout,
		logger:            config.Logger,
		locks:             newKeyedMutex(),
	}
}

// SendMessage runs one conversation turn. The user message is persisted as
// soon as the session is resolved; a generation failure substitutes the
// fallback reply and is never surfaced as an operation error. Turns on the
// same session are serialized.
func (o *Orchestrator) SendMessage(ctx context.Context, sessionID, userID, content string) (*Turn, error) {
	if sessionID == "" || content == "" {
		return nil, apierrors.InvalidArgument("sessionId and message are required")
	}

	unlock := o.locks.lock(sessionID)
	defer unlock()

	reqCtx := observability.NewRequestContext(o.logger, "chat.SendMessage", userID)

	session, err := o.store.GetChatSession(ctx, &store.FindChatSession{ID: &sessionID, UserID: &userID})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to load session", err)
	}
	if session == nil {
		return nil, apierrors.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	now := time.Now().Unix()
	userMessage := &store.ChatMessage{
		ID:        shortuuid.New(),
		SessionID: session.ID,
		Role:      store.ChatMessageRoleUser,
		Content:   content,
		CreatedTs: now,
	}
	if _, err := o.store.CreateChatMessage(ctx, userMessage); err != nil {
		return nil, apierrors.PersistenceFailed("failed to save user message", err)
	}

	messages, err := o.store.ListChatMessages(ctx, &store.FindChatMessage{SessionID: &session.ID})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to load messages", err)
	}

	reply := o.generate(ctx, reqCtx, content, messages)

	assistantMessage := &store.ChatMessage{
		ID:        shortuuid.New(),
		SessionID: session.ID,
		Role:      store.ChatMessageRoleAssistant,
		Content:   reply,
		CreatedTs: time.Now().Unix(),
	}
	if _, err := o.store.CreateChatMessage(ctx, assistantMessage); err != nil {
		return nil, apierrors.PersistenceFailed("failed to save assistant message", err)
	}
	messages = append(messages, assistantMessage)

	update := &store.UpdateChatSession{ID: session.ID}
	updatedTs := time.Now().Unix()
	update.UpdatedTs = &updatedTs
	// The first turn names the session after its opening message.
	if len(messages) <= 2 {
		title := deriveTitle(content)
		update.Title = &title
	}
	session, err = o.store.UpdateChatSession(ctx, update)
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to update session", err)
	}

	reqCtx.Info("chat turn completed",
		slog.String(observability.LogFieldSessionID, session.ID),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		slog.Int("message_count", len(messages)),
	)

	return &Turn{
		Message: assistantMessage,
		Session: &SessionDetail{Session: session, Messages: messages},
	}, nil
}

// generate calls the backend with the trailing conversation window and
// returns the fallback reply on any failure.
func (o *Orchestrator) generate(ctx context.Context, reqCtx *observability.RequestContext, prompt string, messages []*store.ChatMessage) string {
	window := messages
	if len(window) > contextWindow {
		window = window[len(window)-contextWindow:]
	}
	turnContext := make([]string, 0, len(window))
	for _, m := range window {
		turnContext = append(turnContext, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}

	genCtx, cancel := context.WithTimeout(ctx, o.generationTimeout)
	defer cancel()

	result, err := o.generator.Generate(genCtx, &generator.Request{
		Prompt:  prompt,
		Kind:    generator.KindExplanation,
		Context: turnContext,
	})
	if err != nil {
		reqCtx.Warn("generation failed, using fallback reply",
			slog.String("error", err.Error()),
		)
		return o.fallbackReply
	}
	return result.Content
}

// CreateSession creates a session owned by userID. An empty title gets the
// default.
func (o *Orchestrator) CreateSession(ctx context.Context, userID, title string) (*store.ChatSession, error) {
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now().Unix()
	session, err := o.store.CreateChatSession(ctx, &store.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to create session", err)
	}
	return session, nil
}

// GetSession returns the session and its messages, or a NOT_FOUND error
// when it does not exist or belongs to another user.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID, userID string) (*SessionDetail, error) {
	session, err := o.store.GetChatSession(ctx, &store.FindChatSession{ID: &sessionID, UserID: &userID})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to load session", err)
	}
	if session == nil {
		return nil, apierrors.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	messages, err := o.store.ListChatMessages(ctx, &store.FindChatMessage{SessionID: &session.ID})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to load messages", err)
	}

	return &SessionDetail{Session: session, Messages: messages}, nil
}

// ListSessions returns the user's sessions, most recently updated first.
func (o *Orchestrator) ListSessions(ctx context.Context, userID string) ([]*store.ChatSession, error) {
	sessions, err := o.store.ListChatSessions(ctx, &store.FindChatSession{UserID: &userID})
	if err != nil {
		return nil, apierrors.PersistenceFailed("failed to list sessions", err)
	}
	return sessions, nil
}

// DeleteSession removes the session and its messages. It reports false
// when no session with that id belongs to userID.
func (o *Orchestrator) DeleteSession(ctx context.Context, sessionID, userID string) (bool, error) {
	session, err := o.store.GetChatSession(ctx, &store.FindChatSession{ID: &sessionID, UserID: &userID})
	if err != nil {
		return false, apierrors.PersistenceFailed("failed to load session", err)
	}
	if session == nil {
		return false, nil
	}

	if err := o.store.DeleteChatSession(ctx, &store.DeleteChatSession{ID: sessionID, UserID: &userID}); err != nil {
		return false, apierrors.PersistenceFailed("failed to delete session", err)
	}
	return true, nil
}
