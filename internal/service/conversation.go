package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// Conversation is the append-only turn log of one mentorship session
type Conversation struct {
	mu    sync.RWMutex
	turns []model.ChatTurn
}

// NewConversation creates a conversation seeded with the given turns
func NewConversation(seed ...model.ChatTurn) *Conversation {
	c := &Conversation{turns: make([]model.ChatTurn, 0, len(seed)+8)}
	c.turns = append(c.turns, seed...)
	return c
}

// Append adds a turn to the end of the log
func (c *Conversation) Append(turn model.ChatTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// History returns a copy of every turn appended so far, in order
func (c *Conversation) History() []model.ChatTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ChatTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

func newTurn(role model.ChatRole, text string, now time.Time) model.ChatTurn {
	return model.ChatTurn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: now,
	}
}
