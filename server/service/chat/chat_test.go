package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lectern/lectern/plugin/generator"
	apierrors "github.com/lectern/lectern/server/internal/errors"
	"github.com/lectern/lectern/store"
)

type stubGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	delay    time.Duration
	requests []*generator.Request
}

func (g *stubGenerator) Generate(ctx context.Context, request *generator.Request) (*generator.Result, error) {
	g.mu.Lock()
	g.requests = append(g.requests, request)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &generator.Result{Content: g.reply}, nil
}

func (g *stubGenerator) lastRequest() *generator.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

func newTestOrchestrator(gen generator.Service) (*Orchestrator, *MockSessionStore) {
	mock := NewMockSessionStore()
	return NewOrchestrator(mock, gen, Config{GenerationTimeout: time.Second}), mock
}

func TestSendMessageAppendsTwoMessagesPerTurn(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "generated answer"}
	o, mock := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	var previous []*store.ChatMessage
	for i, prompt := range []string{"first question", "second question", "third question"} {
		turn, err := o.SendMessage(ctx, session.ID, "alice", prompt)
		require.NoError(t, err)
		require.Equal(t, (i+1)*2, len(turn.Session.Messages))
		require.Equal(t, (i+1)*2, mock.MessageCount(session.ID))

		// Prior messages keep their identity and order.
		for j, msg := range previous {
			require.Equal(t, msg.ID, turn.Session.Messages[j].ID)
			require.Equal(t, msg.Content, turn.Session.Messages[j].Content)
		}
		previous = turn.Session.Messages

		userMsg := turn.Session.Messages[i*2]
		require.Equal(t, store.ChatMessageRoleUser, userMsg.Role)
		require.Equal(t, prompt, userMsg.Content)
		require.Equal(t, store.ChatMessageRoleAssistant, turn.Message.Role)
		require.Equal(t, "generated answer", turn.Message.Content)
	}
}

func TestSendMessageFallsBackWhenGenerationFails(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: context.DeadlineExceeded}
	o, mock := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	turn, err := o.SendMessage(ctx, session.ID, "alice", "hello?")
	require.NoError(t, err)
	require.Equal(t, DefaultFallbackReply, turn.Message.Content)

	// The user message survives the failure.
	require.Equal(t, 2, mock.MessageCount(session.ID))
	require.Equal(t, "hello?", turn.Session.Messages[0].Content)
}

func TestSendMessageFallsBackOnSlowBackend(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "too late", delay: 500 * time.Millisecond}
	mock := NewMockSessionStore()
	o := NewOrchestrator(mock, gen, Config{GenerationTimeout: 50 * time.Millisecond})

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	start := time.Now()
	turn, err := o.SendMessage(ctx, session.ID, "alice", "hello?")
	require.NoError(t, err)
	require.Equal(t, DefaultFallbackReply, turn.Message.Content)
	require.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestSendMessageCustomFallbackReply(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: context.DeadlineExceeded}
	mock := NewMockSessionStore()
	o := NewOrchestrator(mock, gen, Config{FallbackReply: "try again later"})

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	turn, err := o.SendMessage(ctx, session.ID, "alice", "hello?")
	require.NoError(t, err)
	require.Equal(t, "try again later", turn.Message.Content)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short verbatim", "What is a linked list?", "What is a linked list?"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"truncated", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"long sentence", "Explain the difference between processes and threads", "Explain the difference between..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, deriveTitle(tt.content))
		})
	}
}

func TestTitleSetOnFirstTurnOnly(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, DefaultTitle, session.Title)

	turn, err := o.SendMessage(ctx, session.ID, "alice", "What is a linked list?")
	require.NoError(t, err)
	require.Equal(t, "What is a linked list?", turn.Session.Session.Title)

	turn, err = o.SendMessage(ctx, session.ID, "alice", "And a doubly linked one with a much longer question text?")
	require.NoError(t, err)
	require.Equal(t, "What is a linked list?", turn.Session.Session.Title)
}

func TestSendMessageSessionNotFound(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, mock := newTestOrchestrator(gen)

	_, err := o.SendMessage(ctx, "missing", "alice", "hello")
	require.Error(t, err)
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeNotFound))

	// No side effects.
	require.Equal(t, 0, mock.MessageCount("missing"))
	sessions, err := o.ListSessions(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, sessions)
	require.Empty(t, gen.requests)
}

func TestSendMessageEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	_, err = o.SendMessage(ctx, session.ID, "mallory", "hello")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeNotFound))
}

func TestSendMessageInvalidArguments(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	_, err := o.SendMessage(ctx, "", "alice", "hello")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument))

	_, err = o.SendMessage(ctx, "some-id", "alice", "")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument))
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, mock := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	mock.FailCreateMessage = true
	_, err = o.SendMessage(ctx, session.ID, "alice", "hello")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodePersistenceFailed))
}

func TestContextBoundedToFiveMostRecent(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	prompts := []string{"q1", "q2", "q3", "q4"}
	for _, p := range prompts {
		_, err := o.SendMessage(ctx, session.ID, "alice", p)
		require.NoError(t, err)
	}

	// After 3 turns there are 6 stored messages plus the new user message.
	last := gen.lastRequest()
	require.NotNil(t, last)
	require.Equal(t, "q4", last.Prompt)
	require.Len(t, last.Context, 5)
	// Most recent window, chronological, ending with the new user message.
	require.Equal(t, []string{
		"assistant: answer",
		"user: q3",
		"assistant: answer",
		"user: q4",
	}, last.Context[1:])
	require.Equal(t, "user: q2", last.Context[0])
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	removed, err := o.DeleteSession(ctx, "missing", "alice")
	require.NoError(t, err)
	require.False(t, removed)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	removed, err = o.DeleteSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	require.True(t, removed)

	_, err = o.GetSession(ctx, session.ID, "alice")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeNotFound))
}

func TestDeleteSessionScopedToOwner(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, _ := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	removed, err := o.DeleteSession(ctx, session.ID, "mallory")
	require.NoError(t, err)
	require.False(t, removed)

	detail, err := o.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, detail)
}

func TestConcurrentTurnsOnOneSessionAreSerialized(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer", delay: 5 * time.Millisecond}
	o, mock := newTestOrchestrator(gen)

	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)

	const turns = 10
	errs := make(chan error, turns)
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.SendMessage(ctx, session.ID, "alice", "concurrent question")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// No lost updates: every turn contributed exactly two messages.
	require.Equal(t, turns*2, mock.MessageCount(session.ID))

	detail, err := o.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	for i, msg := range detail.Messages {
		if i%2 == 0 {
			require.Equal(t, store.ChatMessageRoleUser, msg.Role)
		} else {
			require.Equal(t, store.ChatMessageRoleAssistant, msg.Role)
		}
	}
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "A linked list is a sequence of nodes."}
	o, _ := newTestOrchestrator(gen)

	// 1. Create a session with no title.
	session, err := o.CreateSession(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, "New Chat", session.Title)

	detail, err := o.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	require.Empty(t, detail.Messages)

	// 2. First turn succeeds; the 22-char prompt becomes the title verbatim.
	turn, err := o.SendMessage(ctx, session.ID, "alice", "What is a linked list?")
	require.NoError(t, err)
	require.Len(t, turn.Session.Messages, 2)
	require.Equal(t, "What is a linked list?", turn.Session.Session.Title)

	// 3. Second turn hits a backend timeout; fallback reply, title unchanged.
	gen.err = context.DeadlineExceeded
	turn, err = o.SendMessage(ctx, session.ID, "alice", "And a doubly linked one?")
	require.NoError(t, err)
	require.Len(t, turn.Session.Messages, 4)
	require.Equal(t, DefaultFallbackReply, turn.Session.Messages[3].Content)
	require.Equal(t, "What is a linked list?", turn.Session.Session.Title)

	// 4. History lists the session, most recently updated first.
	sessions, err := o.ListSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, session.ID, sessions[0].ID)

	// 5. Delete, then the session is gone.
	removed, err := o.DeleteSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	require.True(t, removed)

	_, err = o.GetSession(ctx, session.ID, "alice")
	require.True(t, apierrors.IsCode(err, apierrors.ErrCodeNotFound))
}

func TestListSessionsOrderedByRecency(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{reply: "answer"}
	o, mock := newTestOrchestrator(gen)

	first, err := o.CreateSession(ctx, "alice", "first")
	require.NoError(t, err)
	second, err := o.CreateSession(ctx, "alice", "second")
	require.NoError(t, err)

	// Force distinct recency regardless of wall clock resolution.
	ts1, ts2 := int64(100), int64(200)
	_, err = mock.UpdateChatSession(ctx, &store.UpdateChatSession{ID: first.ID, UpdatedTs: &ts2})
	require.NoError(t, err)
	_, err = mock.UpdateChatSession(ctx, &store.UpdateChatSession{ID: second.ID, UpdatedTs: &ts1})
	require.NoError(t, err)

	sessions, err := o.ListSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, first.ID, sessions[0].ID)
}
