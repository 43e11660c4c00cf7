// Package prompt assembles the system prompt and the context-augmented user
// question sent to the model. All functions are pure: the same inputs always
// produce byte-identical output.
package prompt

import (
	"fmt"
	"strings"
	"tokenchat/internal/conversation/models"
	"tokenchat/internal/marketdata"
)

const (
	// historyExchanges is how many prior question/answer exchanges are
	// summarized ahead of the current question.
	historyExchanges = 5

	// answerSummaryLimit bounds each prior answer's contribution to the
	// prompt, in characters.
	answerSummaryLimit = 200
)

// Exchange is one completed question/answer pair reconstructed from the
// two-row turn history.
type Exchange struct {
	Question string
	Answer   string
}

// BuildSystemPrompt returns the model instruction block with the market
// snapshot rendered inline.
func BuildSystemPrompt(tokenSlug string, snapshot marketdata.Snapshot) string {
	tokenUpper := strings.ToUpper(tokenSlug)
	tokenInfo := marketdata.FormatForPrompt(snapshot)

	return fmt.Sprintf(`You are an expert AI assistant specialized in providing accurate and helpful information about cryptocurrency tokens and blockchain projects.

You are currently helping users with questions about %s (%s) token.

**Current Token Information:**
%s

Guidelines:
1. Use the provided token information above to give accurate, up-to-date answers
2. Be helpful and educational in your responses
3. If you don't know specific details not covered in the provided information, be honest about it
4. Focus on the token's technology, use cases, tokenomics, funding, and current status
5. Always remind users to do their own research (DYOR)
6. Be concise but comprehensive in your answers
7. If asked about price predictions, explain that you cannot provide financial advice
8. Reference specific data from the provided information when relevant

Context: You are part of a chat widget system that helps users understand different cryptocurrency tokens. The information above is real-time data from PretgeMarket APIs.`,
		tokenUpper, tokenSlug, tokenInfo)
}

// BuildContextualQuestion prepends a summary of the most recent completed
// exchanges to the current question. With no prior exchanges the prompt has
// no conversation section at all.
func BuildContextualQuestion(question, tokenSlug string, history []models.ConversationTurn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User's current question about %s: %s", strings.ToUpper(tokenSlug), question)

	exchanges := PairExchanges(history)
	if len(exchanges) > historyExchanges {
		exchanges = exchanges[len(exchanges)-historyExchanges:]
	}

	if len(exchanges) > 0 {
		b.WriteString("\n\nPrevious conversation context:\n")
		for i, exchange := range exchanges {
			fmt.Fprintf(&b, "%d. User: %s\n", i+1, exchange.Question)
			fmt.Fprintf(&b, "   Assistant: %s...\n\n", truncate(exchange.Answer, answerSummaryLimit))
		}
	}

	return b.String()
}

// PairExchanges reconstructs completed question/answer pairs from turn rows.
// A question row opens an exchange and the next answer row closes it; a
// trailing unanswered question is dropped.
func PairExchanges(history []models.ConversationTurn) []Exchange {
	var (
		exchanges []Exchange
		pending   *Exchange
	)

	for _, turn := range history {
		if turn.IsQuestion() {
			pending = &Exchange{Question: turn.Question}
			continue
		}
		if pending != nil && turn.Answer != "" {
			pending.Answer = turn.Answer
			exchanges = append(exchanges, *pending)
			pending = nil
		}
	}

	return exchanges
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
