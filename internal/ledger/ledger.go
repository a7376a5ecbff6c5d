// Package ledger implements the article ledger: the authoritative store
// of published articles, per-account access grants, and per-account vote
// records. Every state-mutating call is atomic — it either commits fully
// or aborts with no partial effects — and all calls are serialized by a
// single ledger-wide mutex.
package ledger

import (
	"fmt"
	"sync"
	"time"
)

// Account identifies a participating account (a wallet address).
type Account string

// Article is a published article's on-ledger record. Everything except
// the vote counters is immutable after Publish.
type Article struct {
	ID          uint64  `json:"id"`
	Author      Account `json:"author"`
	Title       string  `json:"title"`
	ContentHash string  `json:"contentHash"`
	Price       uint64  `json:"price"`
	Upvotes     uint64  `json:"upvotes"`
	Downvotes   uint64  `json:"downvotes"`
}

// voteRecord tracks a single account's vote on a single article.
type voteRecord struct {
	hasVoted bool
	isUpvote bool
}

// pairKey keys the sparse (article, account) relations.
type pairKey struct {
	articleID uint64
	account   Account
}

// Ledger owns all article, access and vote state. The zero value is not
// usable; construct with New.
type Ledger struct {
	mu       sync.Mutex
	count    uint64
	articles map[uint64]*Article
	access   map[pairKey]bool
	votes    map[pairKey]voteRecord
	bank     Bank
	subs     []chan Event
}

// New creates an empty ledger that forwards payments through the given
// bank.
func New(bank Bank) *Ledger {
	return &Ledger{
		articles: make(map[uint64]*Article),
		access:   make(map[pairKey]bool),
		votes:    make(map[pairKey]voteRecord),
		bank:     bank,
	}
}

// Publish stores a new article and returns its id. Ids are 1-based,
// dense, and assigned in publish order; they are never reused.
func (l *Ledger) Publish(author Account, title, contentHash string, price uint64) (uint64, error) {
	if title == "" {
		return 0, fmt.Errorf("ledger: empty title")
	}
	if contentHash == "" {
		return 0, fmt.Errorf("ledger: empty content hash")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	id := l.count
	l.articles[id] = &Article{
		ID:          id,
		Author:      author,
		Title:       title,
		ContentHash: contentHash,
		Price:       price,
	}

	l.emit(Event{
		Kind:        EventPublish,
		ArticleID:   id,
		Actor:       author,
		Title:       title,
		ContentHash: contentHash,
		Amount:      price,
		At:          time.Now().UTC(),
	})
	return id, nil
}

// Tip forwards the full amount to the article's author. No tip record is
// kept beyond the emitted event. An unknown article id reads as a zero
// record, so the amount goes to the zero account.
func (l *Ledger) Tip(articleID uint64, sender Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	author := l.articleAt(articleID).Author
	if err := l.bank.Transfer(sender, author, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	l.emit(Event{
		Kind:      EventTip,
		ArticleID: articleID,
		Actor:     sender,
		Amount:    amount,
		At:        time.Now().UTC(),
	})
	return nil
}

// Purchase grants the buyer access to a paid article and forwards the
// entire payment — overpayment included — to the author. Free articles
// reject purchase outright. Re-purchase by the same buyer is allowed and
// simply forwards funds again.
func (l *Ledger) Purchase(articleID uint64, buyer Account, payment uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	art := l.articleAt(articleID)
	if art.Price == 0 {
		return ErrFreeArticle
	}
	if payment < art.Price {
		return ErrInsufficientPayment
	}

	key := pairKey{articleID, buyer}
	prev, hadPrev := l.access[key]
	l.access[key] = true

	if err := l.bank.Transfer(buyer, art.Author, payment); err != nil {
		// Abort: undo the grant so no partial state survives.
		if hadPrev {
			l.access[key] = prev
		} else {
			delete(l.access, key)
		}
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	l.emit(Event{
		Kind:      EventPurchase,
		ArticleID: articleID,
		Actor:     buyer,
		Amount:    payment,
		At:        time.Now().UTC(),
	})
	return nil
}

// Vote records a single, permanent up- or downvote. Paid articles
// require a prior access grant; every (article, account) pair may vote
// exactly once, ever.
func (l *Ledger) Vote(articleID uint64, voter Account, isUpvote bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	art := l.articleAt(articleID)
	if art.Price > 0 && !l.access[pairKey{articleID, voter}] {
		return ErrAccessDenied
	}

	key := pairKey{articleID, voter}
	if l.votes[key].hasVoted {
		return ErrAlreadyVoted
	}
	l.votes[key] = voteRecord{hasVoted: true, isUpvote: isUpvote}

	stored := l.articleStorage(articleID)
	if isUpvote {
		stored.Upvotes++
	} else {
		stored.Downvotes++
	}

	l.emit(Event{
		Kind:      EventVote,
		ArticleID: articleID,
		Actor:     voter,
		IsUpvote:  isUpvote,
		At:        time.Now().UTC(),
	})
	return nil
}

// ArticleCount returns the number of articles ever published.
func (l *Ledger) ArticleCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// GetArticle returns the article record and whether the id has ever
// been assigned by Publish.
func (l *Ledger) GetArticle(id uint64) (Article, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.articleAt(id), id >= 1 && id <= l.count
}

// CheckAccess reports whether the account may read the article. Free
// articles are accessible to everyone; unknown ids read as zero records
// (price 0) and therefore also report accessible.
func (l *Ledger) CheckAccess(articleID uint64, account Account) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.articleAt(articleID).Price == 0 {
		return true
	}
	return l.access[pairKey{articleID, account}]
}

// IsFree reports whether the article's price is zero.
func (l *Ledger) IsFree(articleID uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.articleAt(articleID).Price == 0
}

// GetVotes returns the article's vote counters.
func (l *Ledger) GetVotes(articleID uint64) (upvotes, downvotes uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.articleAt(articleID)
	return a.Upvotes, a.Downvotes
}

// HasVoted reports whether the account has ever voted on the article.
func (l *Ledger) HasVoted(articleID uint64, account Account) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.votes[pairKey{articleID, account}].hasVoted
}

// GetVote returns the stored vote direction. A never-voted account reads
// as false, indistinguishable from a downvote — pair with HasVoted, or
// use VoteOf.
func (l *Ledger) GetVote(articleID uint64, account Account) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.votes[pairKey{articleID, account}].isUpvote
}

// VoteOf returns both halves of the vote record in one read.
func (l *Ledger) VoteOf(articleID uint64, account Account) (hasVoted, isUpvote bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.votes[pairKey{articleID, account}]
	return rec.hasVoted, rec.isUpvote
}

// Articles returns a copy of the records in the half-open id range
// [from, from+limit), clamped to the published range.
func (l *Ledger) Articles(from uint64, limit int) []Article {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from < 1 {
		from = 1
	}
	out := make([]Article, 0, limit)
	for id := from; id <= l.count && len(out) < limit; id++ {
		out = append(out, l.articleAt(id))
	}
	return out
}

// articleAt returns a value copy; unknown ids yield a zero record, the
// way zero-initialized contract storage reads.
func (l *Ledger) articleAt(id uint64) Article {
	if a, ok := l.articles[id]; ok {
		return *a
	}
	return Article{ID: id}
}

// articleStorage returns mutable storage for the id, materializing a
// zero record for ids never assigned by Publish (count is untouched).
func (l *Ledger) articleStorage(id uint64) *Article {
	a, ok := l.articles[id]
	if !ok {
		a = &Article{ID: id}
		l.articles[id] = a
	}
	return a
}
