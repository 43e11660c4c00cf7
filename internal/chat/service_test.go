package chat

import (
	"context"
	"errors"
	"testing"
	"tokenchat/internal/conversation"
	"tokenchat/internal/conversation/models"
	"tokenchat/internal/marketdata"

	"github.com/stretchr/testify/require"
)

type stubMarket struct {
	snapshot marketdata.Snapshot
}

func (s stubMarket) GetTokenInfo(_ context.Context, _ string) marketdata.Snapshot {
	return s.snapshot
}

type stubCompleter struct {
	answer    string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (s *stubCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.gotSystem = systemPrompt
	s.gotUser = userPrompt
	return s.answer, s.err
}

func (s *stubCompleter) Model() string {
	return "gpt-4o"
}

type failingStore struct {
	*conversation.MemoryStore
	historyErr error
	appendErr  error
}

func (f *failingStore) GetHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.MemoryStore.GetHistory(ctx, userID, tokenSlug, limit)
}

func (f *failingStore) AppendTurn(ctx context.Context, userID, tokenSlug, question, answer string, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, models.ConversationTurn, error) {
	if f.appendErr != nil {
		return models.ConversationTurn{}, models.ConversationTurn{}, f.appendErr
	}
	return f.MemoryStore.AppendTurn(ctx, userID, tokenSlug, question, answer, metadata, citations)
}

func snapshotWithToken() marketdata.Snapshot {
	return marketdata.Snapshot{
		Token: &marketdata.TokenData{Name: "Plasma", Symbol: "XPL", Price: 0.15},
	}
}

func TestProcessChatGroundedPath(t *testing.T) {
	store := conversation.NewMemoryStore()
	completer := &stubCompleter{answer: "Plasma is a Layer1 blockchain."}
	service := NewService(store, stubMarket{snapshot: snapshotWithToken()}, completer)

	result, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
	require.NoError(t, err)

	require.Equal(t, "Plasma is a Layer1 blockchain.", result.Answer)
	require.Equal(t, "gpt-4o", result.Metadata.ModelUsed)
	require.Equal(t, "xpl", result.Metadata.TokenSlug)
	require.True(t, result.Metadata.HasTokenData)
	require.False(t, result.Metadata.HasProjectData)

	require.Len(t, result.Citations, 1)
	require.Equal(t, "https://docs.xpl.to/docs", result.Citations[0].Source)
	require.Equal(t, "XPL Documentation", result.Citations[0].Title)
	require.InDelta(t, 0.95, result.Citations[0].RelevanceScore, 0.0001)

	// Prompts were grounded in the snapshot and question.
	require.Contains(t, completer.gotSystem, "Plasma (XPL)")
	require.Contains(t, completer.gotUser, "What is XPL?")

	// The exchange landed as two rows at orders 1 and 2, with the answer
	// row's id echoed in the response metadata.
	history, err := store.GetHistory(context.Background(), "u1", "xpl", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 1, history[0].MessageOrder)
	require.Equal(t, "What is XPL?", history[0].Question)
	require.Equal(t, 2, history[1].MessageOrder)
	require.Equal(t, "Plasma is a Layer1 blockchain.", history[1].Answer)
	require.Equal(t, history[1].ID, result.Metadata.MessageID)
	require.Equal(t, "gpt-4o", history[1].Metadata.ModelUsed)
}

func TestProcessChatSecondTurnCarriesContext(t *testing.T) {
	store := conversation.NewMemoryStore()
	completer := &stubCompleter{answer: "It uses a consensus protocol."}
	service := NewService(store, stubMarket{}, completer)

	_, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
	require.NoError(t, err)

	result, err := service.ProcessChat(context.Background(), "xpl", "How does it work?", "u1")
	require.NoError(t, err)

	require.Equal(t, 2, result.Metadata.ContextMessages)
	require.Contains(t, completer.gotUser, "Previous conversation context:")
	require.Contains(t, completer.gotUser, "User: What is XPL?")
}

func TestProcessChatFallsBackOnCompletionFailure(t *testing.T) {
	store := conversation.NewMemoryStore()
	completer := &stubCompleter{err: errors.New("upstream exploded")}
	service := NewService(store, stubMarket{snapshot: snapshotWithToken()}, completer)

	result, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
	require.NoError(t, err)

	require.Equal(t, "fallback-mock", result.Metadata.ModelUsed)
	require.Empty(t, result.Citations)
	require.Contains(t, result.Metadata.Error, "upstream exploded")
	require.Contains(t, result.Answer, "revolutionary blockchain project")

	// The fallback exchange is persisted like any other.
	history, err := store.GetHistory(context.Background(), "u1", "xpl", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "fallback-mock", history[1].Metadata.ModelUsed)
	require.Contains(t, history[1].Metadata.Error, "upstream exploded")
	require.Empty(t, history[1].Citations)
}

func TestProcessChatFallsBackOnHistoryFailure(t *testing.T) {
	store := &failingStore{
		MemoryStore: conversation.NewMemoryStore(),
		historyErr:  errors.New("connection refused"),
	}
	completer := &stubCompleter{answer: "unused"}
	service := NewService(store, stubMarket{}, completer)

	result, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
	require.NoError(t, err)

	require.Equal(t, "fallback-mock", result.Metadata.ModelUsed)
	require.Contains(t, result.Metadata.Error, "connection refused")
	require.Zero(t, completer.calls)
}

func TestProcessChatNewConversationBothSourcesAbsent(t *testing.T) {
	store := conversation.NewMemoryStore()
	completer := &stubCompleter{err: errors.New("model unavailable")}
	service := NewService(store, stubMarket{}, completer)

	result, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
	require.NoError(t, err)

	require.Contains(t, result.Answer, "XPL is a revolutionary blockchain project")
	require.False(t, result.Metadata.HasTokenData)
	require.False(t, result.Metadata.HasProjectData)

	history, err := store.GetHistory(context.Background(), "u1", "xpl", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 1, history[0].MessageOrder)
	require.Equal(t, 2, history[1].MessageOrder)
}

func TestProcessChatPersistenceFailureIsFatal(t *testing.T) {
	store := &failingStore{
		MemoryStore: conversation.NewMemoryStore(),
		appendErr:   errors.New("disk full"),
	}

	t.Run("grounded path", func(t *testing.T) {
		service := NewService(store, stubMarket{}, &stubCompleter{answer: "ok"})
		_, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "disk full")
	})

	t.Run("fallback path", func(t *testing.T) {
		service := NewService(store, stubMarket{}, &stubCompleter{err: errors.New("boom")})
		_, err := service.ProcessChat(context.Background(), "xpl", "What is XPL?", "u1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "disk full")
	})
}

func TestGetChatHistoryPassthrough(t *testing.T) {
	store := conversation.NewMemoryStore()
	service := NewService(store, stubMarket{}, &stubCompleter{answer: "a"})

	_, err := service.ProcessChat(context.Background(), "xpl", "q", "u1")
	require.NoError(t, err)

	history, err := service.GetChatHistory(context.Background(), "u1", "xpl", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestGetChatHistoryPropagatesStoreErrors(t *testing.T) {
	store := &failingStore{
		MemoryStore: conversation.NewMemoryStore(),
		historyErr:  errors.New("connection refused"),
	}
	service := NewService(store, stubMarket{}, &stubCompleter{})

	_, err := service.GetChatHistory(context.Background(), "u1", "xpl", 50)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
}
