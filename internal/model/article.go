package model

// PublishRequest is the API request body for publishing an article.
type PublishRequest struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	ContentHash string `json:"contentHash"`
	Price       uint64 `json:"price"`
}

// PublishResponse is the API response after a successful publish.
type PublishResponse struct {
	ID           uint64 `json:"id"`
	ArticleCount uint64 `json:"articleCount"`
}

// TipRequest is the API request body for tipping an article's author.
type TipRequest struct {
	From   string `json:"from"`
	Amount uint64 `json:"amount"`
}

// PurchaseRequest is the API request body for buying access to a paid article.
type PurchaseRequest struct {
	Buyer   string `json:"buyer"`
	Payment uint64 `json:"payment"`
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	Voter  string `json:"voter"`
	Upvote bool   `json:"upvote"`
}

// ArticleResponse is the API response for a single article lookup.
type ArticleResponse struct {
	ID          uint64 `json:"id"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	ContentHash string `json:"contentHash"`
	Price       uint64 `json:"price"`
	Free        bool   `json:"free"`
	Upvotes     uint64 `json:"upvotes"`
	Downvotes   uint64 `json:"downvotes"`
}

// ArticleListResponse is the API response for paginated article listings.
type ArticleListResponse struct {
	Articles     []ArticleResponse `json:"articles"`
	ArticleCount uint64            `json:"articleCount"`
	From         uint64            `json:"from"`
}

// AccessResponse is the API response for an access check.
type AccessResponse struct {
	ArticleID uint64 `json:"articleId"`
	Account   string `json:"account,omitempty"`
	Free      bool   `json:"free"`
	HasAccess bool   `json:"hasAccess"`
}

// VotesResponse is the API response for vote reads. The per-account
// fields are present only when an account query parameter was given.
type VotesResponse struct {
	ArticleID uint64 `json:"articleId"`
	Upvotes   uint64 `json:"upvotes"`
	Downvotes uint64 `json:"downvotes"`
	HasVoted  *bool  `json:"hasVoted,omitempty"`
	IsUpvote  *bool  `json:"isUpvote,omitempty"`
}
