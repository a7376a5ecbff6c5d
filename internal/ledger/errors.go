package ledger

import "errors"

// Every precondition violation aborts the whole call with one of these
// sentinels; callers branch with errors.Is.
var (
	// ErrInsufficientPayment — purchase payment below the article price.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrFreeArticle — purchase attempted on a price-0 article.
	ErrFreeArticle = errors.New("article is free")

	// ErrAccessDenied — vote on a paid article without an access grant.
	ErrAccessDenied = errors.New("must purchase to vote")

	// ErrAlreadyVoted — second vote by the same account on the same article.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrTransferFailed — forwarding payment to the author failed; the
	// call was rolled back.
	ErrTransferFailed = errors.New("transfer failed")
)
