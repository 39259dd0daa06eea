package session

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Turn is one chat message. Turns are never edited once appended.
type Turn struct {
	Sender  Sender `json:"sender"`
	Content string `json:"content"`
}

// Session holds an uploaded transcript and the conversation about it.
type Session struct {
	ID          string    `json:"id"`
	Transcript  string    `json:"transcript"`
	ChatHistory []Turn    `json:"chat_history"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"` // optimistic locking
}

// New returns a session for transcript. An empty id gets a fresh UUID.
func New(id, transcript string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:          id,
		Transcript:  transcript,
		ChatHistory: []Turn{},
	}
}

func (s *Session) Append(sender Sender, content string) {
	s.ChatHistory = append(s.ChatHistory, Turn{Sender: sender, Content: content})
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ChatHistory = make([]Turn, len(s.ChatHistory))
	copy(c.ChatHistory, s.ChatHistory)
	return &c
}
