package ledger

import "time"

// EventKind discriminates ledger notifications.
type EventKind string

const (
	EventPublish  EventKind = "publish"
	EventTip      EventKind = "tip"
	EventPurchase EventKind = "purchase"
	EventVote     EventKind = "vote"
)

// Event is the fire-and-forget notification emitted alongside every
// committed state change, consumed by off-ledger indexers. Fields not
// relevant to the kind are zero.
type Event struct {
	Kind        EventKind `json:"kind"`
	ArticleID   uint64    `json:"articleId"`
	Actor       Account   `json:"actor"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	IsUpvote    bool      `json:"isUpvote,omitempty"`
	At          time.Time `json:"at"`
}

const subscriberBuffer = 256

// Subscribe registers a new event subscriber. Delivery is best-effort:
// a subscriber whose buffer is full misses events rather than blocking
// a transaction.
func (l *Ledger) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()
	return ch
}

// emit delivers to all subscribers without blocking. Caller holds l.mu.
func (l *Ledger) emit(ev Event) {
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
