// Package review handles review submission and the seller rating aggregate.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	ErrRating   = errors.New("rating must be between 1 and 5")
)

type Store interface {
	// CreateAndRecompute persists the review and refreshes the seller
	// aggregate in one transactional unit; false means a review for the
	// order already exists and nothing was written.
	CreateAndRecompute(ctx context.Context, rv *models.Review) (bool, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]models.Review, error)
	SellerSummary(ctx context.Context, sellerUID string) (float64, int, error)
}

type Notifier interface {
	Enqueue(n models.Notification)
}

type SubmitRequest struct {
	BuyerUID  string `json:"buyer_uid"`
	BuyerName string `json:"buyer_name"`
	SellerUID string `json:"seller_uid"`
	OrderUID  string `json:"order_uid"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type Service struct {
	Store  Store
	Notify Notifier
}

// Submit enforces one review per order and recomputes the seller's average
// rating over the full review set.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrRating
	}

	rv := &models.Review{
		UID:       uuid.NewString(),
		BuyerUID:  req.BuyerUID,
		BuyerName: req.BuyerName,
		SellerUID: req.SellerUID,
		OrderUID:  req.OrderUID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.Store.CreateAndRecompute(ctx, rv)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: review already submitted for this order", ErrConflict)
	}

	s.Notify.Enqueue(models.Notification{
		UID:           uuid.NewString(),
		RecipientUID:  req.SellerUID,
		RecipientType: models.RecipientSeller,
		Type:          "new_review",
		Message:       fmt.Sprintf("%s left a %d-star review!", req.BuyerName, req.Rating),
		CreatedAt:     rv.CreatedAt,
	})

	return rv, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerUID string) ([]models.Review, error) {
	return s.Store.ListBySeller(ctx, sellerUID)
}

type Summary struct {
	SellerUID     string  `json:"seller_uid"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func (s *Service) SellerSummary(ctx context.Context, sellerUID string) (*Summary, error) {
	avg, count, err := s.Store.SellerSummary(ctx, sellerUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: seller", ErrNotFound)
		}
		return nil, err
	}
	return &Summary{SellerUID: sellerUID, AverageRating: avg, ReviewCount: count}, nil
}
