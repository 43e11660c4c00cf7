package conversation

import (
	"context"
	"tokenchat/internal/conversation/models"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error) {
	logrus.Debugf("Loading chat history for user %s, token %s (limit %d)", userID, tokenSlug, limit)
	return s.repo.GetHistory(ctx, userID, tokenSlug, limit)
}

func (s *Service) AppendTurn(ctx context.Context, userID, tokenSlug, question, answer string, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, models.ConversationTurn, error) {
	logrus.Debugf("Appending chat turn for user %s, token %s", userID, tokenSlug)
	return s.repo.AppendTurn(ctx, userID, tokenSlug, question, answer, metadata, citations)
}
