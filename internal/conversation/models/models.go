package models

import (
	"time"
)

// ConversationTurn is one row of the chat_history table. A logical exchange
// is stored as two consecutive turns: the question turn (empty answer)
// followed by the answer turn (empty question). The role of a turn follows
// from which of the two fields is non-empty.
type ConversationTurn struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	TokenSlug    string     `db:"token_slug" json:"token_slug"`
	Question     string     `db:"question" json:"question"`
	Answer       string     `db:"answer" json:"answer"`
	Metadata     *Metadata  `db:"-" json:"metadata,omitempty"`
	Citations    []Citation `db:"-" json:"citations,omitempty"`
	MessageOrder int        `db:"message_order" json:"message_order"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// IsQuestion reports whether the turn carries the user side of an exchange.
func (t ConversationTurn) IsQuestion() bool {
	return t.Question != ""
}

type Metadata struct {
	ProcessingTime  float64  `json:"processing_time"`
	ModelUsed       string   `json:"model_used"`
	Timestamp       string   `json:"timestamp"`
	ContextMessages int      `json:"context_messages,omitempty"`
	HasTokenData    bool     `json:"has_token_data"`
	HasProjectData  bool     `json:"has_project_data"`
	APICalls        APICalls `json:"api_calls"`
	Error           string   `json:"error,omitempty"`
}

type APICalls struct {
	TokenAPI   bool `json:"pretge_token_api"`
	ProjectAPI bool `json:"pretge_project_api"`
}

type Citation struct {
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
}
