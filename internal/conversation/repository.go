package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"tokenchat/internal/conversation/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

type turnRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	TokenSlug    string         `db:"token_slug"`
	Question     string         `db:"question"`
	Answer       string         `db:"answer"`
	Metadata     types.JSONText `db:"metadata"`
	Citations    types.JSONText `db:"citations"`
	MessageOrder int            `db:"message_order"`
	CreatedAt    time.Time      `db:"created_at"`
}

// GetHistory returns up to limit turns for a conversation key, ascending by
// message order.
func (r *Repository) GetHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error) {
	query := `
		SELECT id, user_id, token_slug, question, answer,
			COALESCE(metadata, 'null'::jsonb) AS metadata,
			COALESCE(citations, 'null'::jsonb) AS citations,
			message_order, created_at
		FROM chat_history
		WHERE user_id = $1 AND token_slug = $2
		ORDER BY message_order ASC
		LIMIT $3
	`

	var rows []turnRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, tokenSlug, limit); err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(rows))
	for _, row := range rows {
		turn, err := rowToTurn(row)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// AppendTurn writes one logical exchange as two rows with consecutive
// message orders. The read of the current maximum order and both inserts run
// in a serializable transaction so concurrent writers for the same
// conversation key cannot allocate the same order twice.
func (r *Repository) AppendTurn(ctx context.Context, userID, tokenSlug, question, answer string, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, models.ConversationTurn, error) {
	var questionTurn, answerTurn models.ConversationTurn

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return questionTurn, answerTurn, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lastOrder int
	err = tx.GetContext(ctx, &lastOrder, `
		SELECT COALESCE(MAX(message_order), 0)
		FROM chat_history
		WHERE user_id = $1 AND token_slug = $2
	`, userID, tokenSlug)
	if err != nil {
		return questionTurn, answerTurn, fmt.Errorf("failed to read last message order: %w", err)
	}

	questionTurn, err = insertTurn(ctx, tx, models.ConversationTurn{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenSlug:    tokenSlug,
		Question:     question,
		MessageOrder: lastOrder + 1,
	}, nil, nil)
	if err != nil {
		return questionTurn, answerTurn, err
	}

	answerTurn, err = insertTurn(ctx, tx, models.ConversationTurn{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenSlug:    tokenSlug,
		Answer:       answer,
		MessageOrder: lastOrder + 2,
	}, metadata, citations)
	if err != nil {
		return questionTurn, answerTurn, err
	}

	if err := tx.Commit(); err != nil {
		return questionTurn, answerTurn, fmt.Errorf("failed to commit chat turn: %w", err)
	}

	return questionTurn, answerTurn, nil
}

func insertTurn(ctx context.Context, tx *sqlx.Tx, turn models.ConversationTurn, metadata *models.Metadata, citations []models.Citation) (models.ConversationTurn, error) {
	metadataJSON, err := nullableJSON(metadata)
	if err != nil {
		return turn, fmt.Errorf("failed to marshal turn metadata: %w", err)
	}
	citationsJSON, err := nullableJSON(citations)
	if err != nil {
		return turn, fmt.Errorf("failed to marshal turn citations: %w", err)
	}

	query := `
		INSERT INTO chat_history (id, user_id, token_slug, question, answer, metadata, citations, message_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	err = tx.GetContext(ctx, &turn.CreatedAt, query,
		turn.ID, turn.UserID, turn.TokenSlug, turn.Question, turn.Answer,
		metadataJSON, citationsJSON, turn.MessageOrder)
	if err != nil {
		return turn, fmt.Errorf("failed to insert chat turn: %w", err)
	}

	turn.Metadata = metadata
	turn.Citations = citations
	return turn, nil
}

func nullableJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch value := v.(type) {
	case *models.Metadata:
		if value == nil {
			return nil, nil
		}
	case []models.Citation:
		if value == nil {
			return nil, nil
		}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

func rowToTurn(row turnRow) (models.ConversationTurn, error) {
	turn := models.ConversationTurn{
		ID:           row.ID,
		UserID:       row.UserID,
		TokenSlug:    row.TokenSlug,
		Question:     row.Question,
		Answer:       row.Answer,
		MessageOrder: row.MessageOrder,
		CreatedAt:    row.CreatedAt,
	}

	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &turn.Metadata); err != nil {
			return turn, fmt.Errorf("failed to decode turn metadata: %w", err)
		}
	}
	if len(row.Citations) > 0 {
		if err := json.Unmarshal(row.Citations, &turn.Citations); err != nil {
			return turn, fmt.Errorf("failed to decode turn citations: %w", err)
		}
	}

	return turn, nil
}
