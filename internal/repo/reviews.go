package repo

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Reviews struct {
	DB graph.TxRunner
}

func (r *Reviews) ExistsForOrder(ctx context.Context, orderUID string) (bool, error) {
	const q = `MATCH (r:Review {order_uid: $order_uid}) RETURN r.uid AS uid LIMIT 1`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"order_uid": orderUID})
	if err != nil {
		return false, err
	}
	return len(result.Records) > 0, nil
}

// CreateAndRecompute runs the duplicate check, the review creation and the
// full recomputation of the seller aggregate in one write transaction, so
// the aggregate is self-consistent against the review set at commit time.
// Returns false when a review for the order already exists.
func (r *Reviews) CreateAndRecompute(ctx context.Context, rv *models.Review) (bool, error) {
	created, err := r.DB.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		check, err := tx.Run(ctx, `MATCH (r:Review {order_uid: $order_uid}) RETURN r.uid LIMIT 1`,
			map[string]any{"order_uid": rv.OrderUID})
		if err != nil {
			return false, err
		}
		if check.Next(ctx) {
			return false, nil
		}

		create, err := tx.Run(ctx, `
CREATE (r:Review {
	uid: $uid, buyer_uid: $buyer_uid, buyer_name: $buyer_name,
	seller_uid: $seller_uid, order_uid: $order_uid,
	rating: $rating, comment: $comment, created_at: $created_at
})`, map[string]any{
			"uid":        rv.UID,
			"buyer_uid":  rv.BuyerUID,
			"buyer_name": rv.BuyerName,
			"seller_uid": rv.SellerUID,
			"order_uid":  rv.OrderUID,
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"created_at": fmtTime(rv.CreatedAt),
		})
		if err != nil {
			return false, err
		}
		if _, err := create.Consume(ctx); err != nil {
			return false, err
		}

		recompute, err := tx.Run(ctx, `
MATCH (s:Seller {uid: $seller_uid})
OPTIONAL MATCH (r:Review {seller_uid: $seller_uid})
WITH s, coalesce(avg(r.rating), 0.0) AS avg_rating, count(r) AS review_count
SET s.average_rating = avg_rating, s.review_count = review_count`,
			map[string]any{"seller_uid": rv.SellerUID})
		if err != nil {
			return false, err
		}
		if _, err := recompute.Consume(ctx); err != nil {
			return false, err
		}

		return true, nil
	})
	if err != nil {
		return false, err
	}
	ok, _ := created.(bool)
	return ok, nil
}

func (r *Reviews) ListBySeller(ctx context.Context, sellerUID string) ([]models.Review, error) {
	const q = `
MATCH (r:Review {seller_uid: $seller_uid})
RETURN r
ORDER BY r.created_at DESC`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"seller_uid": sellerUID})
	if err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(result.Records))
	for _, record := range result.Records {
		if node, ok := recordNode(record, "r"); ok {
			reviews = append(reviews, *reviewFromNode(node))
		}
	}
	return reviews, nil
}

// SellerSummary reads the stored aggregate off the seller node.
func (r *Reviews) SellerSummary(ctx context.Context, sellerUID string) (float64, int, error) {
	const q = `
MATCH (s:Seller {uid: $seller_uid})
RETURN coalesce(s.average_rating, 0.0) AS average_rating,
       coalesce(s.review_count, 0) AS review_count`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"seller_uid": sellerUID})
	if err != nil {
		return 0, 0, err
	}
	if len(result.Records) == 0 {
		return 0, 0, graph.ErrNotFound
	}
	avg, _ := result.Records[0].Get("average_rating")
	count, _ := result.Records[0].Get("review_count")
	return asFloat(avg), asInt(count), nil
}
