package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tokenchat/internal/conversation/models"
	"tokenchat/internal/marketdata"
	"tokenchat/internal/prompt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// contextHistoryLimit is how many stored turns are loaded for prompt
	// context.
	contextHistoryLimit = 10

	// DefaultHistoryLimit applies to history reads when the caller passes no
	// limit.
	DefaultHistoryLimit = 50

	fallbackModelName      = "fallback-mock"
	fallbackProcessingTime = 0.1

	citationRelevanceScore = 0.95
)

type ConversationStore interface {
	GetHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error)
	AppendTurn(ctx context.Context, userID, tokenSlug, question, answer string, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, models.ConversationTurn, error)
}

type MarketDataProvider interface {
	GetTokenInfo(ctx context.Context, tokenSlug string) marketdata.Snapshot
}

type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

type Service struct {
	store     ConversationStore
	market    MarketDataProvider
	completer CompletionClient
}

func NewService(store ConversationStore, market MarketDataProvider, completer CompletionClient) *Service {
	return &Service{
		store:     store,
		market:    market,
		completer: completer,
	}
}

type Result struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
	Metadata  ResponseMetadata  `json:"metadata"`
}

type ResponseMetadata struct {
	TokenSlug       string           `json:"token_slug"`
	ProcessingTime  float64          `json:"processing_time"`
	ModelUsed       string           `json:"model_used"`
	MessageID       string           `json:"message_id"`
	ContextMessages int              `json:"context_messages,omitempty"`
	HasTokenData    bool             `json:"has_token_data"`
	HasProjectData  bool             `json:"has_project_data"`
	APICalls        *models.APICalls `json:"api_calls,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// ProcessChat runs the full pipeline for one question: fetch history and
// market data in parallel, build the grounded prompts, stream the model
// answer, persist the exchange, and shape the response. Any failure before
// persistence routes to the deterministic fallback answer; a persistence
// failure is the only error surfaced to the transport layer.
func (s *Service) ProcessChat(ctx context.Context, tokenSlug, question, userID string) (Result, error) {
	logrus.Infof("Processing chat question for user %s, token %s", userID, tokenSlug)

	start := time.Now()

	var (
		history  []models.ConversationTurn
		snapshot marketdata.Snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.store.GetHistory(gctx, userID, tokenSlug, contextHistoryLimit)
		if err != nil {
			return fmt.Errorf("failed to load context history: %w", err)
		}
		history = loaded
		return nil
	})
	g.Go(func() error {
		snapshot = s.market.GetTokenInfo(gctx, tokenSlug)
		return nil
	})

	err := g.Wait()

	var answer string
	if err == nil {
		systemPrompt := prompt.BuildSystemPrompt(tokenSlug, snapshot)
		contextualQuestion := prompt.BuildContextualQuestion(question, tokenSlug, history)
		answer, err = s.completer.Complete(ctx, systemPrompt, contextualQuestion)
	}
	if err != nil {
		return s.respondWithFallback(ctx, tokenSlug, question, userID, err)
	}

	processingTime := time.Since(start).Seconds()

	metadata := &models.Metadata{
		ProcessingTime:  processingTime,
		ModelUsed:       s.completer.Model(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		ContextMessages: len(history),
		HasTokenData:    snapshot.HasTokenData(),
		HasProjectData:  snapshot.HasProjectData(),
		APICalls: models.APICalls{
			TokenAPI:   snapshot.HasTokenData(),
			ProjectAPI: snapshot.HasProjectData(),
		},
	}
	citations := []models.Citation{documentationCitation(tokenSlug)}

	_, answerTurn, err := s.store.AppendTurn(ctx, userID, tokenSlug, question, answer, metadata, citations)
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist chat turn: %w", err)
	}

	logrus.Infof("Chat question answered for user %s, token %s in %.2fs", userID, tokenSlug, processingTime)

	return Result{
		Answer:    answer,
		Citations: citations,
		Metadata: ResponseMetadata{
			TokenSlug:       tokenSlug,
			ProcessingTime:  processingTime,
			ModelUsed:       metadata.ModelUsed,
			MessageID:       answerTurn.ID,
			ContextMessages: len(history),
			HasTokenData:    snapshot.HasTokenData(),
			HasProjectData:  snapshot.HasProjectData(),
			APICalls:        &metadata.APICalls,
		},
	}, nil
}

// respondWithFallback answers with the deterministic responder and still
// persists the exchange. This branch must not fail: a persistence error here
// is the one unrecoverable condition.
func (s *Service) respondWithFallback(ctx context.Context, tokenSlug, question, userID string, cause error) (Result, error) {
	logrus.Errorf("Chat pipeline failed for token %s, using fallback answer: %v", tokenSlug, cause)

	answer := GenerateFallbackAnswer(question, tokenSlug)

	metadata := &models.Metadata{
		ProcessingTime: fallbackProcessingTime,
		ModelUsed:      fallbackModelName,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Error:          cause.Error(),
	}

	_, answerTurn, err := s.store.AppendTurn(ctx, userID, tokenSlug, question, answer, metadata, []models.Citation{})
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist fallback turn: %w", err)
	}

	return Result{
		Answer:    answer,
		Citations: []models.Citation{},
		Metadata: ResponseMetadata{
			TokenSlug:      tokenSlug,
			ProcessingTime: fallbackProcessingTime,
			ModelUsed:      fallbackModelName,
			MessageID:      answerTurn.ID,
			Error:          cause.Error(),
		},
	}, nil
}

// GetChatHistory is a read-only passthrough to the store; failures propagate
// to the caller unchanged.
func (s *Service) GetChatHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	history, err := s.store.GetHistory(ctx, userID, tokenSlug, limit)
	if err != nil {
		logrus.Errorf("Failed to load chat history for user %s, token %s: %v", userID, tokenSlug, err)
		return nil, err
	}

	logrus.Infof("Loaded %d chat history turns for user %s, token %s", len(history), userID, tokenSlug)
	return history, nil
}

func documentationCitation(tokenSlug string) models.Citation {
	return models.Citation{
		Source:         fmt.Sprintf("https://docs.%s.to/docs", tokenSlug),
		Title:          fmt.Sprintf("%s Documentation", strings.ToUpper(tokenSlug)),
		RelevanceScore: citationRelevanceScore,
	}
}
