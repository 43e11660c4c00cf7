package marketdata

import (
	"fmt"
	"strconv"
	"strings"
)

const noDataMessage = "No specific token information available."

// FormatForPrompt renders a snapshot as the plain-text block embedded in the
// model's system prompt. The rendering is deterministic: identical snapshots
// always produce identical output, sections for absent data are omitted
// entirely, and no values are ever invented.
func FormatForPrompt(snapshot Snapshot) string {
	if !snapshot.HasTokenData() && !snapshot.HasProjectData() {
		return noDataMessage
	}

	var b strings.Builder

	if token := snapshot.Token; token != nil {
		b.WriteString("**Token Information:**\n")
		fmt.Fprintf(&b, "- Name: %s (%s)\n", token.Name, token.Symbol)
		fmt.Fprintf(&b, "- Current Price: $%s\n", formatFloat(token.Price))
		fmt.Fprintf(&b, "- Network: %s\n", token.Networks.Name)
		fmt.Fprintf(&b, "- Status: %s\n", token.Status)
		if token.WebsiteURL != "" {
			fmt.Fprintf(&b, "- Website: %s\n", token.WebsiteURL)
		}
		if token.TwitterURL != "" {
			fmt.Fprintf(&b, "- Twitter: %s\n", token.TwitterURL)
		}
	}

	if project := snapshot.Project; project != nil {
		data := project.Data

		if data.Web3Project != nil {
			b.WriteString("\n**Project Details:**\n")
			fmt.Fprintf(&b, "- Description: %s\n", data.Web3Project.Description)
			fmt.Fprintf(&b, "- Category: %s\n", data.Web3Project.Category)
			fmt.Fprintf(&b, "- Launch Status: %s\n", data.Web3Project.LaunchStatus)
			fmt.Fprintf(&b, "- Chain: %s\n", data.Web3Project.Chain)
		}

		if data.Fundraising != nil {
			b.WriteString("\n**Funding Information:**\n")
			fmt.Fprintf(&b, "- Total Raised: $%s\n", groupThousands(data.Fundraising.TotalRaised))
			fmt.Fprintf(&b, "- Notable Investors: %s\n", strings.Join(firstN(data.Fundraising.NotableInvestors, 5), ", "))
		}

		if data.Tokenomic != nil {
			b.WriteString("\n**Tokenomics:**\n")
			fmt.Fprintf(&b, "- Total Supply: %s\n", groupThousands(data.Tokenomic.TotalSupply))
			fmt.Fprintf(&b, "- Circulating Supply: %s\n", groupThousands(data.Tokenomic.CirculatingSupply))
			fmt.Fprintf(&b, "- Token Type: %s\n", data.Tokenomic.TokenType)
		}

		if data.PriceData != nil {
			b.WriteString("\n**Price Data:**\n")
			fmt.Fprintf(&b, "- Current Price: $%s\n", formatFloat(data.PriceData.Price))
			fmt.Fprintf(&b, "- 24h Change: %.2f%%\n", data.PriceData.Change24H)
			fmt.Fprintf(&b, "- 24h Volume: $%s\n", groupThousands(data.PriceData.Volume24H))
			fmt.Fprintf(&b, "- Market Cap: $%s\n", groupThousands(data.PriceData.MarketCap))
		}

		if data.CommunityMetrics != nil {
			b.WriteString("\n**Community Metrics:**\n")
			if data.CommunityMetrics.TwitterFollowers > 0 {
				fmt.Fprintf(&b, "- Twitter Followers: %s\n", groupThousands(data.CommunityMetrics.TwitterFollowers))
			}
			if data.CommunityMetrics.DiscordMembers > 0 {
				fmt.Fprintf(&b, "- Discord Members: %s\n", groupThousands(data.CommunityMetrics.DiscordMembers))
			}
		}

		if len(data.Exchanges) > 0 {
			b.WriteString("\n**Available Exchanges:**\n")
			for _, exchange := range data.Exchanges[:minInt(3, len(data.Exchanges))] {
				fmt.Fprintf(&b, "- %s: $%s (24h Vol: $%s)\n",
					exchange.ExchangeName, formatFloat(exchange.Price), groupThousands(exchange.Vol24H))
			}
		}
	}

	return b.String()
}

// formatFloat prints a float with its shortest exact representation,
// matching how the upstream APIs echo prices.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupThousands renders a number with comma-separated thousands, e.g.
// 24000000 -> "24,000,000". Fractional digits are preserved as-is.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	negative := strings.HasPrefix(intPart, "-")
	if negative {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	grouped := b.String()
	if negative {
		grouped = "-" + grouped
	}
	return grouped + fracPart
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
