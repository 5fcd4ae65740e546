package store

// ChatSession is a persisted conversation thread belonging to one user.
type ChatSession struct {
	ID        string
	UserID    string
	Title     string
	CreatedTs int64
	UpdatedTs int64
}

type FindChatSession struct {
	ID     *string
	UserID *string
}

type UpdateChatSession struct {
	ID        string
	Title     *string
	UpdatedTs *int64
}

type DeleteChatSession struct {
	ID string
	// UserID scopes the deletion to the owning user when set.
	UserID *string
}

type ChatMessageRole string

const (
	ChatMessageRoleUser      ChatMessageRole = "user"
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

// ChatMessage is one turn's content. Messages are append-only: there is no
// update operation, and deletion only happens together with the owning
// session.
type ChatMessage struct {
	ID        string
	SessionID string
	Role      ChatMessageRole
	Content   string
	CreatedTs int64

	// Seq is assigned by the database and makes ordering stable when two
	// messages share a created timestamp.
	Seq int64
}

type FindChatMessage struct {
	ID        *string
	SessionID *string
}

type DeleteChatMessage struct {
	SessionID *string
}
