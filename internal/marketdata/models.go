package marketdata

// TokenData is the token listing returned by the PretgeMarket token API.
type TokenData struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Logo          string  `json:"logo"`
	TokenContract string  `json:"token_contract,omitempty"`
	NetworkID     string  `json:"network_id"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	WebsiteURL    string  `json:"website_url"`
	TwitterURL    string  `json:"twitter_url"`
	TelegramURL   string  `json:"telegram_url"`
	BannerURL     string  `json:"banner_url"`
	Networks      Network `json:"networks"`
}

type Network struct {
	ID          string `json:"id"`
	Logo        string `json:"logo"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpc_url"`
	ChainID     string `json:"chain_id"`
	ChainType   string `json:"chain_type"`
	ExplorerURL string `json:"explorer_url"`
}

// ProjectData is the crawler API's aggregated project profile.
type ProjectData struct {
	ProjectID     string         `json:"projectId"`
	ProjectSymbol string         `json:"projectSymbol"`
	Data          ProjectDetails `json:"data"`
}

type ProjectDetails struct {
	Web3Project      *Web3Project      `json:"web3Project,omitempty"`
	Socials          *Socials          `json:"socials,omitempty"`
	Fundraising      *Fundraising      `json:"fundraising,omitempty"`
	Tokenomic        *Tokenomic        `json:"tokenomic,omitempty"`
	Exchanges        []Exchange        `json:"exchanges,omitempty"`
	PriceData        *PriceData        `json:"priceData,omitempty"`
	CommunityMetrics *CommunityMetrics `json:"communityMetrics,omitempty"`
	Investors        []Investor        `json:"investors,omitempty"`
}

type Web3Project struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Description  string `json:"description"`
	Website      string `json:"website"`
	Category     string `json:"category"`
	Chain        string `json:"chain"`
	LaunchStatus string `json:"launchStatus"`
}

type Socials struct {
	Twitter  string `json:"twitter"`
	Discord  string `json:"discord,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Github   string `json:"github,omitempty"`
}

type Fundraising struct {
	TotalRaised      float64        `json:"totalRaised"`
	NotableInvestors []string       `json:"notableInvestors"`
	FundingRounds    []FundingRound `json:"fundingRounds"`
}

type FundingRound struct {
	RoundName  string   `json:"roundName"`
	Date       string   `json:"date"`
	Amount     float64  `json:"amount"`
	Investors  []string `json:"investors"`
	TokenPrice *float64 `json:"tokenPrice,omitempty"`
}

type Tokenomic struct {
	TokenName         string  `json:"tokenName"`
	TokenSymbol       string  `json:"tokenSymbol"`
	TokenType         string  `json:"tokenType"`
	TotalSupply       float64 `json:"totalSupply"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	TokenContract     string  `json:"tokenContract,omitempty"`
}

type Exchange struct {
	ExchangeName    string  `json:"exchangeName"`
	ExchangeSlug    string  `json:"exchangeSlug"`
	TradingPairName string  `json:"tradingPairName"`
	TradingPairURL  string  `json:"tradingPairUrl"`
	Price           float64 `json:"price"`
	Vol24H          float64 `json:"vol24h"`
	LogoURL         string  `json:"logoUrl"`
}

type PriceData struct {
	Price      float64 `json:"price"`
	Change1H   float64 `json:"change_1h"`
	Change24H  float64 `json:"change_24h"`
	Volume24H  float64 `json:"volume_24h"`
	MarketCap  float64 `json:"market_cap"`
	RecordedAt string  `json:"recorded_at"`
}

type CommunityMetrics struct {
	TwitterFollowers float64 `json:"twitterFollowers"`
	DiscordMembers   float64 `json:"discordMembers,omitempty"`
	TelegramMembers  float64 `json:"telegramMembers,omitempty"`
	GithubStars      float64 `json:"githubStars,omitempty"`
}

type Investor struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Tier    string `json:"tier"`
	Star    string `json:"star"`
	LogoURL string `json:"logoUrl"`
}

// Snapshot is the per-request aggregate of both provider lookups. Either
// half may be nil; absence means the lookup failed or returned no data.
type Snapshot struct {
	Token   *TokenData
	Project *ProjectData
}

func (s Snapshot) HasTokenData() bool {
	return s.Token != nil
}

func (s Snapshot) HasProjectData() bool {
	return s.Project != nil
}
