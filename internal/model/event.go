package model

import "time"

// IndexedEvent is one row of the off-chain event feed.
type IndexedEvent struct {
	Kind        string    `json:"kind"`
	ArticleID   uint64    `json:"articleId"`
	Actor       string    `json:"actor"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	IsUpvote    *bool     `json:"isUpvote,omitempty"`
	At          time.Time `json:"at"`
}

// EventFeedResponse is the API response for GET /api/events.
type EventFeedResponse struct {
	Events      []IndexedEvent `json:"events"`
	GeneratedAt string         `json:"generatedAt"`
}

// ContentPinResponse is the API response after a content upload.
type ContentPinResponse struct {
	Hash string `json:"hash"`
	Size int    `json:"size"`
}
