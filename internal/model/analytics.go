package model

// EngagementRequest is the API request body for the off-ledger
// view/like/favorite endpoints.
type EngagementRequest struct {
	ArticleID uint64 `json:"articleId"`
	Account   string `json:"account"`
}

// EngagementResponse reports the result of a like/favorite toggle.
type EngagementResponse struct {
	ArticleID uint64 `json:"articleId"`
	Active    bool   `json:"active"`
}

// ArticleAnalytics holds the off-ledger engagement counters for one article.
type ArticleAnalytics struct {
	ArticleID uint64 `json:"articleId"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Favorites int64  `json:"favorites"`
}

// StatsResponse is the API response for global platform statistics,
// read from the event index.
type StatsResponse struct {
	TotalArticles    int64 `json:"totalArticles"`
	FreeArticles     int64 `json:"freeArticles"`
	TotalPurchases   int64 `json:"totalPurchases"`
	TotalVotes       int64 `json:"totalVotes"`
	TotalTips        int64 `json:"totalTips"`
	TipVolume        int64 `json:"tipVolume"`
	DistinctAccounts int64 `json:"distinctAccounts"`
}
