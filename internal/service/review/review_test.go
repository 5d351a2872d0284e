package review

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

// fakeReviewStore mirrors the transactional store: reviews keyed by order,
// aggregate recomputed as a full scan over the seller's reviews.
type fakeReviewStore struct {
	mu      sync.Mutex
	byOrder map[string]models.Review
	average map[string]float64
	count   map[string]int
	sellers map[string]bool
}

func newFakeReviewStore(sellers ...string) *fakeReviewStore {
	f := &fakeReviewStore{
		byOrder: map[string]models.Review{},
		average: map[string]float64{},
		count:   map[string]int{},
		sellers: map[string]bool{},
	}
	for _, s := range sellers {
		f.sellers[s] = true
	}
	return f
}

func (f *fakeReviewStore) CreateAndRecompute(ctx context.Context, rv *models.Review) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byOrder[rv.OrderUID]; exists {
		return false, nil
	}
	f.byOrder[rv.OrderUID] = *rv

	var sum float64
	var n int
	for _, r := range f.byOrder {
		if r.SellerUID == rv.SellerUID {
			sum += float64(r.Rating)
			n++
		}
	}
	f.average[rv.SellerUID] = sum / float64(n)
	f.count[rv.SellerUID] = n
	return true, nil
}

func (f *fakeReviewStore) ListBySeller(ctx context.Context, sellerUID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.byOrder {
		if r.SellerUID == sellerUID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) SellerSummary(ctx context.Context, sellerUID string) (float64, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sellers[sellerUID] {
		return 0, 0, graph.ErrNotFound
	}
	return f.average[sellerUID], f.count[sellerUID], nil
}

type captureNotifier struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (n *captureNotifier) Enqueue(notif models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notif)
}

func TestSubmitReview(t *testing.T) {
	store := newFakeReviewStore("seller-1")
	notifier := &captureNotifier{}
	svc := &Service{Store: store, Notify: notifier}

	rv, err := svc.Submit(context.Background(), SubmitRequest{
		BuyerUID: "buyer-1", BuyerName: "Ana", SellerUID: "seller-1",
		OrderUID: "order-1", Rating: 4, Comment: "fresh catch",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rv.UID)
	require.Equal(t, 4, rv.Rating)

	require.Len(t, notifier.notes, 1)
	require.Equal(t, "new_review", notifier.notes[0].Type)
	require.Equal(t, "seller-1", notifier.notes[0].RecipientUID)
	require.Contains(t, notifier.notes[0].Message, "Ana left a 4-star review!")
}

func TestSubmitDuplicateReviewConflicts(t *testing.T) {
	store := newFakeReviewStore("seller-1")
	notifier := &captureNotifier{}
	svc := &Service{Store: store, Notify: notifier}

	_, err := svc.Submit(context.Background(), SubmitRequest{
		BuyerUID: "buyer-1", BuyerName: "Ana", SellerUID: "seller-1",
		OrderUID: "order-1", Rating: 5,
	})
	require.NoError(t, err)

	summaryBefore, err := svc.SellerSummary(context.Background(), "seller-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitRequest{
		BuyerUID: "buyer-2", BuyerName: "Ben", SellerUID: "seller-1",
		OrderUID: "order-1", Rating: 1,
	})
	require.ErrorIs(t, err, ErrConflict)

	// The rejected attempt changes neither the aggregate nor notifications.
	summaryAfter, err := svc.SellerSummary(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Equal(t, summaryBefore.AverageRating, summaryAfter.AverageRating)
	require.Equal(t, summaryBefore.ReviewCount, summaryAfter.ReviewCount)
	require.Len(t, notifier.notes, 1)
}

func TestAggregateIsMeanOverAllReviews(t *testing.T) {
	store := newFakeReviewStore("seller-1")
	svc := &Service{Store: store, Notify: &captureNotifier{}}

	ratings := []int{5, 3, 4, 2, 5}
	for i, rating := range ratings {
		_, err := svc.Submit(context.Background(), SubmitRequest{
			BuyerUID: "buyer-1", BuyerName: "Ana", SellerUID: "seller-1",
			OrderUID: string(rune('a' + i)), Rating: rating,
		})
		require.NoError(t, err)
	}

	summary, err := svc.SellerSummary(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Equal(t, len(ratings), summary.ReviewCount)
	require.InDelta(t, 3.8, summary.AverageRating, 1e-9)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	svc := &Service{Store: newFakeReviewStore("seller-1"), Notify: &captureNotifier{}}

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), SubmitRequest{
			BuyerUID: "buyer-1", SellerUID: "seller-1", OrderUID: "order-x", Rating: rating,
		})
		require.ErrorIs(t, err, ErrRating)
	}
}

func TestSellerSummaryUnknownSeller(t *testing.T) {
	svc := &Service{Store: newFakeReviewStore(), Notify: &captureNotifier{}}

	_, err := svc.SellerSummary(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
