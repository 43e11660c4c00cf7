package conversation

import (
	"context"
	"sync"
	"time"
	"tokenchat/internal/conversation/models"

	"github.com/google/uuid"
)

type conversationKey struct {
	userID    string
	tokenSlug string
}

// MemoryStore keeps conversations in process memory with the same contract
// as the Postgres repository, including the two-row exchange layout and
// contiguous order allocation.
type MemoryStore struct {
	turns map[conversationKey][]models.ConversationTurn
	mu    sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns: make(map[conversationKey][]models.ConversationTurn),
	}
}

func (s *MemoryStore) GetHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.turns[conversationKey{userID: userID, tokenSlug: tokenSlug}]
	if limit > len(stored) {
		limit = len(stored)
	}

	history := make([]models.ConversationTurn, limit)
	copy(history, stored[:limit])
	return history, nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, userID, tokenSlug, question, answer string, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := conversationKey{userID: userID, tokenSlug: tokenSlug}

	lastOrder := 0
	if stored := s.turns[key]; len(stored) > 0 {
		lastOrder = stored[len(stored)-1].MessageOrder
	}

	now := time.Now()

	questionTurn := models.ConversationTurn{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenSlug:    tokenSlug,
		Question:     question,
		MessageOrder: lastOrder + 1,
		CreatedAt:    now,
	}
	answerTurn := models.ConversationTurn{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenSlug:    tokenSlug,
		Answer:       answer,
		Metadata:     metadata,
		Citations:    citations,
		MessageOrder: lastOrder + 2,
		CreatedAt:    now,
	}

	s.turns[key] = append(s.turns[key], questionTurn, answerTurn)
	return questionTurn, answerTurn, nil
}
