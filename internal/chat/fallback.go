package chat

import (
	"fmt"
	"strings"
)

// GenerateFallbackAnswer produces a canned answer by keyword matching on the
// question. It is pure and cannot fail, which is what qualifies it as the
// degraded path when the model is unavailable.
func GenerateFallbackAnswer(question, tokenSlug string) string {
	tokenUpper := strings.ToUpper(tokenSlug)
	lowered := strings.ToLower(question)

	switch {
	case strings.Contains(lowered, "what is"):
		return fmt.Sprintf("%s is a revolutionary blockchain project that aims to solve scalability issues in the crypto ecosystem. It provides fast, secure, and cost-effective transactions for users worldwide.", tokenUpper)
	case strings.Contains(lowered, "how does"):
		return fmt.Sprintf("%s works by utilizing advanced consensus mechanisms and innovative technology to ensure high throughput and low latency. The system is designed to handle millions of transactions per second.", tokenUpper)
	case strings.Contains(lowered, "price"), strings.Contains(lowered, "value"):
		return fmt.Sprintf("The current price of %s can be found on major cryptocurrency exchanges. Please check real-time pricing on platforms like CoinMarketCap or CoinGecko for the most up-to-date information.", tokenUpper)
	case strings.Contains(lowered, "buy"), strings.Contains(lowered, "purchase"):
		return fmt.Sprintf("You can purchase %s on various cryptocurrency exchanges. Make sure to use reputable platforms and follow proper security practices when trading.", tokenUpper)
	default:
		return fmt.Sprintf("Thank you for your question about %s. This is a fallback response as the AI service is temporarily unavailable. Please try again in a moment.", tokenUpper)
	}
}
