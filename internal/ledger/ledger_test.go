package ledger

import (
	"errors"
	"fmt"
	"testing"
)

const (
	alice = Account("0xa11ce00000000000000000000000000000000001")
	bob   = Account("0xb0b0000000000000000000000000000000000002")
	carol = Account("0xca40100000000000000000000000000000000003")
)

func newFunded(t *testing.T) (*Ledger, *MemoryBank) {
	t.Helper()
	bank := NewMemoryBank()
	bank.Deposit(alice, 1000)
	bank.Deposit(bob, 1000)
	bank.Deposit(carol, 1000)
	return New(bank), bank
}

func TestPublish_AssignsDenseIDs(t *testing.T) {
	l, _ := newFunded(t)

	for i := 1; i <= 5; i++ {
		before := l.ArticleCount()
		id, err := l.Publish(alice, fmt.Sprintf("title %d", i), fmt.Sprintf("Qm%d", i), 0)
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
		if id != before+1 {
			t.Errorf("publish %d: id = %d, want %d", i, id, before+1)
		}
		if l.ArticleCount() != before+1 {
			t.Errorf("publish %d: count = %d, want %d", i, l.ArticleCount(), before+1)
		}
	}
}

func TestPublish_RecordIsImmutableCopy(t *testing.T) {
	l, _ := newFunded(t)

	id, _ := l.Publish(alice, "A", "Qm1", 10)
	a, ok := l.GetArticle(id)
	if !ok {
		t.Fatal("article not found")
	}
	if a.Author != alice || a.Title != "A" || a.ContentHash != "Qm1" || a.Price != 10 {
		t.Errorf("record = %+v", a)
	}
	if a.Upvotes != 0 || a.Downvotes != 0 {
		t.Errorf("counters = %d/%d, want 0/0", a.Upvotes, a.Downvotes)
	}

	// Mutating the returned copy must not touch ledger state.
	a.Title = "mutated"
	got, _ := l.GetArticle(id)
	if got.Title != "A" {
		t.Errorf("ledger title = %q, want %q", got.Title, "A")
	}
}

func TestPublish_RejectsEmptyFields(t *testing.T) {
	l, _ := newFunded(t)

	if _, err := l.Publish(alice, "", "Qm1", 0); err == nil {
		t.Error("empty title accepted")
	}
	if _, err := l.Publish(alice, "A", "", 0); err == nil {
		t.Error("empty content hash accepted")
	}
	if l.ArticleCount() != 0 {
		t.Errorf("count = %d after rejected publishes, want 0", l.ArticleCount())
	}
}

func TestFreeArticle_AccessibleToEveryone(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "free read", "Qm1", 0)

	for _, acct := range []Account{alice, bob, carol, "0xdead"} {
		if !l.CheckAccess(id, acct) {
			t.Errorf("CheckAccess(%d, %s) = false, want true", id, acct)
		}
	}
	if !l.IsFree(id) {
		t.Error("IsFree = false, want true")
	}

	// Purchase of a free article always fails and changes nothing.
	if err := l.Purchase(id, bob, 50); !errors.Is(err, ErrFreeArticle) {
		t.Errorf("purchase of free article: err = %v, want ErrFreeArticle", err)
	}
	if !l.CheckAccess(id, bob) {
		t.Error("free article no longer accessible after failed purchase")
	}
}

func TestPurchase_PaymentBelowPriceFails(t *testing.T) {
	l, bank := newFunded(t)
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	if err := l.Purchase(id, bob, 5); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("err = %v, want ErrInsufficientPayment", err)
	}
	if l.CheckAccess(id, bob) {
		t.Error("access granted despite failed purchase")
	}
	if got := bank.Balance(alice); got != 1000 {
		t.Errorf("author balance = %d, want 1000 (no payment)", got)
	}
}

func TestPurchase_GrantsAccessAndForwardsFullPayment(t *testing.T) {
	l, bank := newFunded(t)
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	// Overpayment is forwarded in full, not capped at the price.
	if err := l.Purchase(id, bob, 25); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !l.CheckAccess(id, bob) {
		t.Error("no access after successful purchase")
	}
	if got := bank.Balance(alice); got != 1025 {
		t.Errorf("author balance = %d, want 1025", got)
	}
	if got := bank.Balance(bob); got != 975 {
		t.Errorf("buyer balance = %d, want 975", got)
	}

	// Access is permanent, and other accounts are unaffected.
	if l.CheckAccess(id, carol) {
		t.Error("carol has access without purchasing")
	}
}

func TestPurchase_RepeatForwardsAgain(t *testing.T) {
	l, bank := newFunded(t)
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	if err := l.Purchase(id, bob, 10); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if err := l.Purchase(id, bob, 10); err != nil {
		t.Fatalf("second purchase: %v", err)
	}
	if got := bank.Balance(alice); got != 1020 {
		t.Errorf("author balance = %d, want 1020 after double purchase", got)
	}
	if !l.CheckAccess(id, bob) {
		t.Error("access lost after re-purchase")
	}
}

// failingBank rejects every transfer, standing in for an author address
// that refuses funds.
type failingBank struct{}

func (failingBank) Transfer(from, to Account, amount uint64) error {
	return errors.New("recipient rejected funds")
}

func TestPurchase_TransferFailureRollsBackGrant(t *testing.T) {
	l := New(failingBank{})
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	err := l.Purchase(id, bob, 10)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}
	if l.CheckAccess(id, bob) {
		t.Error("grant survived a failed transfer")
	}
}

func TestPurchase_InsufficientFundsRollsBack(t *testing.T) {
	bank := NewMemoryBank()
	bank.Deposit(bob, 3) // below the payment he attaches
	l := New(bank)
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	err := l.Purchase(id, bob, 10)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}
	if l.CheckAccess(id, bob) {
		t.Error("grant survived a failed transfer")
	}
	if got := bank.Balance(bob); got != 3 {
		t.Errorf("buyer balance = %d, want 3 (untouched)", got)
	}
}

func TestTip_ForwardsFullAmount(t *testing.T) {
	l, bank := newFunded(t)
	id, _ := l.Publish(alice, "tippable", "Qm1", 0)

	if err := l.Tip(id, bob, 42); err != nil {
		t.Fatalf("tip: %v", err)
	}
	if got := bank.Balance(alice); got != 1042 {
		t.Errorf("author balance = %d, want 1042", got)
	}
	if got := bank.Balance(bob); got != 958 {
		t.Errorf("sender balance = %d, want 958", got)
	}
}

func TestTip_TransferFailureAborts(t *testing.T) {
	l := New(failingBank{})
	id, _ := l.Publish(alice, "tippable", "Qm1", 0)

	if err := l.Tip(id, bob, 42); !errors.Is(err, ErrTransferFailed) {
		t.Errorf("err = %v, want ErrTransferFailed", err)
	}
}

func TestVote_FreeArticleNeedsNoGrant(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "free", "Qm1", 0)

	if err := l.Vote(id, bob, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	up, down := l.GetVotes(id)
	if up != 1 || down != 0 {
		t.Errorf("votes = %d/%d, want 1/0", up, down)
	}
}

func TestVote_PaidArticleRequiresPurchase(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "paid", "Qm1", 10)

	if err := l.Vote(id, bob, true); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("vote without grant: err = %v, want ErrAccessDenied", err)
	}
	up, down := l.GetVotes(id)
	if up != 0 || down != 0 {
		t.Errorf("counters moved on failed vote: %d/%d", up, down)
	}

	// The identical call succeeds after purchase.
	if err := l.Purchase(id, bob, 10); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if err := l.Vote(id, bob, true); err != nil {
		t.Fatalf("vote after purchase: %v", err)
	}
	up, _ = l.GetVotes(id)
	if up != 1 {
		t.Errorf("upvotes = %d, want 1", up)
	}
}

func TestVote_OncePerAccountPerArticle(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "free", "Qm1", 0)

	if err := l.Vote(id, bob, false); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	// No change, no retraction: both directions are rejected.
	if err := l.Vote(id, bob, true); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("flip vote: err = %v, want ErrAlreadyVoted", err)
	}
	if err := l.Vote(id, bob, false); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("repeat vote: err = %v, want ErrAlreadyVoted", err)
	}

	up, down := l.GetVotes(id)
	if up != 0 || down != 1 {
		t.Errorf("votes = %d/%d, want 0/1", up, down)
	}
	if !l.HasVoted(id, bob) {
		t.Error("HasVoted = false after voting")
	}

	// A different account on the same article still votes freely.
	if err := l.Vote(id, carol, true); err != nil {
		t.Errorf("carol's vote: %v", err)
	}
}

func TestVote_CountersAccumulateAcrossAccounts(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "free", "Qm1", 0)

	voters := []struct {
		acct Account
		up   bool
	}{
		{alice, true},
		{bob, true},
		{carol, false},
	}
	for _, v := range voters {
		if err := l.Vote(id, v.acct, v.up); err != nil {
			t.Fatalf("vote by %s: %v", v.acct, err)
		}
	}

	up, down := l.GetVotes(id)
	if up != 2 || down != 1 {
		t.Errorf("votes = %d/%d, want 2/1", up, down)
	}
}

func TestGetVote_NeverVotedReadsFalse(t *testing.T) {
	l, _ := newFunded(t)
	id, _ := l.Publish(alice, "free", "Qm1", 0)

	// GetVote alone cannot distinguish "never voted" from "downvoted";
	// HasVoted (or VoteOf) disambiguates.
	if l.GetVote(id, bob) {
		t.Error("GetVote = true for never-voted account")
	}
	if l.HasVoted(id, bob) {
		t.Error("HasVoted = true for never-voted account")
	}

	_ = l.Vote(id, bob, false)
	if l.GetVote(id, bob) {
		t.Error("GetVote = true after downvote")
	}
	if !l.HasVoted(id, bob) {
		t.Error("HasVoted = false after downvote")
	}

	voted, up := l.VoteOf(id, bob)
	if !voted || up {
		t.Errorf("VoteOf = (%v, %v), want (true, false)", voted, up)
	}
}

func TestUnknownID_ReadsAsZeroRecord(t *testing.T) {
	l, _ := newFunded(t)

	// A zero record has price 0, so unknown ids look free and
	// accessible. Quirk carried over from the source contract.
	if !l.CheckAccess(99, bob) {
		t.Error("CheckAccess(unknown) = false, want true")
	}
	if !l.IsFree(99) {
		t.Error("IsFree(unknown) = false, want true")
	}
	if _, ok := l.GetArticle(99); ok {
		t.Error("GetArticle(unknown) reported existing")
	}
	if err := l.Purchase(99, bob, 10); !errors.Is(err, ErrFreeArticle) {
		t.Errorf("purchase unknown id: err = %v, want ErrFreeArticle", err)
	}
}

func TestArticles_PaginatesAndClamps(t *testing.T) {
	l, _ := newFunded(t)
	for i := 1; i <= 7; i++ {
		if _, err := l.Publish(alice, fmt.Sprintf("t%d", i), fmt.Sprintf("Qm%d", i), 0); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	tests := []struct {
		name    string
		from    uint64
		limit   int
		wantIDs []uint64
	}{
		{"first page", 1, 3, []uint64{1, 2, 3}},
		{"middle page", 4, 3, []uint64{4, 5, 6}},
		{"clamped tail", 6, 5, []uint64{6, 7}},
		{"zero from treated as 1", 0, 2, []uint64{1, 2}},
		{"past the end", 8, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Articles(tt.from, tt.limit)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, a := range got {
				if a.ID != tt.wantIDs[i] {
					t.Errorf("page[%d].ID = %d, want %d", i, a.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestEvents_EmittedOnCommitOnly(t *testing.T) {
	l, _ := newFunded(t)
	events := l.Subscribe()

	id, _ := l.Publish(alice, "A", "Qm1", 10)
	_ = l.Purchase(id, bob, 5) // fails, must emit nothing
	_ = l.Purchase(id, bob, 10)
	_ = l.Vote(id, bob, true)
	_ = l.Tip(id, carol, 7)

	want := []EventKind{EventPublish, EventPurchase, EventVote, EventTip}
	for i, kind := range want {
		select {
		case ev := <-events:
			if ev.Kind != kind {
				t.Errorf("event %d kind = %s, want %s", i, ev.Kind, kind)
			}
			if ev.ArticleID != id {
				t.Errorf("event %d articleId = %d, want %d", i, ev.ArticleID, id)
			}
		default:
			t.Fatalf("missing event %d (%s)", i, kind)
		}
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected extra event: %+v", ev)
	default:
	}
}

// End-to-end walk of the ledger lifecycle: free publish, paid publish,
// under- and exact-payment purchase, vote, duplicate vote.
func TestScenario_PublishPurchaseVote(t *testing.T) {
	l, bank := newFunded(t)

	id1, err := l.Publish(alice, "A", "Qm1", 0)
	if err != nil || id1 != 1 {
		t.Fatalf("publish A: id=%d err=%v, want id=1", id1, err)
	}
	if !l.CheckAccess(1, carol) {
		t.Error("free article not immediately accessible")
	}

	id2, err := l.Publish(alice, "B", "Qm2", 10)
	if err != nil || id2 != 2 {
		t.Fatalf("publish B: id=%d err=%v, want id=2", id2, err)
	}

	if err := l.Purchase(2, bob, 5); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("underpaid purchase: err = %v", err)
	}
	if err := l.Purchase(2, bob, 10); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !l.CheckAccess(2, bob) {
		t.Error("no access after purchase")
	}
	if got := bank.Balance(alice); got != 1010 {
		t.Errorf("author balance = %d, want 1010", got)
	}

	if err := l.Vote(2, bob, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if up, _ := l.GetVotes(2); up != 1 {
		t.Errorf("upvotes = %d, want 1", up)
	}
	if err := l.Vote(2, bob, true); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("duplicate vote: err = %v, want ErrAlreadyVoted", err)
	}
}
