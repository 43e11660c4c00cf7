package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"tokenchat/internal/conversation/models"

	"github.com/stretchr/testify/require"
)

func TestAppendTurnWritesQuestionAndAnswerRows(t *testing.T) {
	store := NewMemoryStore()

	metadata := &models.Metadata{ModelUsed: "gpt-4o", ProcessingTime: 1.2}
	citations := []models.Citation{{Source: "https://docs.xpl.to/docs", Title: "XPL Documentation", RelevanceScore: 0.95}}

	questionTurn, answerTurn, err := store.AppendTurn(context.Background(), "u1", "xpl", "What is XPL?", "Plasma is a Layer1.", metadata, citations)
	require.NoError(t, err)

	require.Equal(t, 1, questionTurn.MessageOrder)
	require.Equal(t, 2, answerTurn.MessageOrder)

	require.Equal(t, "What is XPL?", questionTurn.Question)
	require.Empty(t, questionTurn.Answer)
	require.Nil(t, questionTurn.Metadata)

	require.Empty(t, answerTurn.Question)
	require.Equal(t, "Plasma is a Layer1.", answerTurn.Answer)
	require.Equal(t, metadata, answerTurn.Metadata)
	require.Equal(t, citations, answerTurn.Citations)

	require.NotEmpty(t, questionTurn.ID)
	require.NotEmpty(t, answerTurn.ID)
	require.NotEqual(t, questionTurn.ID, answerTurn.ID)
}

func TestAppendTurnAllocatesContiguousOrders(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := store.AppendTurn(ctx, "u1", "xpl", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), nil, nil)
		require.NoError(t, err)
	}

	history, err := store.GetHistory(ctx, "u1", "xpl", 100)
	require.NoError(t, err)
	require.Len(t, history, 10)

	for i, turn := range history {
		require.Equal(t, i+1, turn.MessageOrder)

		// Exactly one of question/answer is set per row.
		if turn.Question != "" {
			require.Empty(t, turn.Answer)
		} else {
			require.NotEmpty(t, turn.Answer)
		}
	}
}

func TestGetHistoryAppliesLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _, err := store.AppendTurn(ctx, "u1", "xpl", "q", "a", nil, nil)
		require.NoError(t, err)
	}

	history, err := store.GetHistory(ctx, "u1", "xpl", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, []int{1, 2, 3}, []int{history[0].MessageOrder, history[1].MessageOrder, history[2].MessageOrder})
}

func TestGetHistoryUnknownConversationIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	history, err := store.GetHistory(context.Background(), "nobody", "xpl", 50)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestConversationKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.AppendTurn(ctx, "u1", "xpl", "q", "a", nil, nil)
	require.NoError(t, err)
	_, answerTurn, err := store.AppendTurn(ctx, "u1", "btc", "q", "a", nil, nil)
	require.NoError(t, err)

	// A fresh key starts at order 1, regardless of other conversations.
	require.Equal(t, 2, answerTurn.MessageOrder)
}

func TestConcurrentAppendsNeverCollide(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const writers = 20

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := store.AppendTurn(ctx, "u1", "xpl", "q", "a", nil, nil)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := store.GetHistory(ctx, "u1", "xpl", writers*2)
	require.NoError(t, err)
	require.Len(t, history, writers*2)

	seen := make(map[int]bool, len(history))
	previous := 0
	for _, turn := range history {
		require.False(t, seen[turn.MessageOrder], "duplicate order %d", turn.MessageOrder)
		seen[turn.MessageOrder] = true
		require.Greater(t, turn.MessageOrder, previous)
		previous = turn.MessageOrder
	}
	require.Equal(t, writers*2, previous)
}
