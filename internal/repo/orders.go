package repo

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Orders struct {
	DB graph.Runner
}

// CreateWithRelations stores the order node, its three edges and the
// inventory decrement as one Cypher statement, so concurrent orders against
// the same product serialize on the store. The quantity guard is part of the
// statement: a false return means the guarded decrement matched nothing
// (missing entity or insufficient stock) and no state was written.
func (r *Orders) CreateWithRelations(ctx context.Context, o *models.Order, buyerUID, productUID string) (bool, error) {
	const q = `
MATCH (b:Buyer {uid: $buyer_uid})
MATCH (p:FishProduct {uid: $product_uid})
WHERE p.quantity >= $quantity
MATCH (p)-[:SOLD_BY]->(s:Seller)
CREATE (o:Order {
	uid: $uid, quantity: $quantity, total_price: $total_price,
	status: $status, created_at: $now, updated_at: $now
})
CREATE (o)-[:PLACED_BY]->(b)
CREATE (o)-[:FULFILLED_BY]->(s)
CREATE (o)-[:CONTAINS]->(p)
SET p.quantity = p.quantity - $quantity, p.updated_at = $now
RETURN o`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"buyer_uid":   buyerUID,
		"product_uid": productUID,
		"uid":         o.UID,
		"quantity":    o.Quantity,
		"total_price": o.TotalPrice,
		"status":      o.Status,
		"now":         fmtTime(o.CreatedAt),
	})
	if err != nil {
		return false, err
	}
	return len(result.Records) > 0, nil
}

func (r *Orders) GetByUID(ctx context.Context, uid string) (*models.Order, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (o:Order {uid: $uid}) RETURN o`, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "o")
	if err != nil {
		return nil, err
	}
	return orderFromNode(node), nil
}

const orderDetailReturn = `
OPTIONAL MATCH (o)-[:PLACED_BY]->(b:Buyer)
OPTIONAL MATCH (o)-[:FULFILLED_BY]->(s:Seller)
OPTIONAL MATCH (o)-[:CONTAINS]->(p:FishProduct)
RETURN o, b, s, p`

func detailFromRecord(record *neo4j.Record) (models.OrderDetail, bool) {
	node, ok := recordNode(record, "o")
	if !ok {
		return models.OrderDetail{}, false
	}
	o := orderFromNode(node)
	d := models.OrderDetail{
		UID:        o.UID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if b, ok := recordNode(record, "b"); ok {
		d.BuyerUID = propString(b.Props, "uid")
		d.BuyerName = propString(b.Props, "name")
		d.BuyerContact = propString(b.Props, "contact_number")
	}
	if s, ok := recordNode(record, "s"); ok {
		d.SellerUID = propString(s.Props, "uid")
		d.SellerName = propString(s.Props, "name")
		d.SellerContact = propString(s.Props, "contact_number")
	}
	if p, ok := recordNode(record, "p"); ok {
		d.FishProductUID = propString(p.Props, "uid")
		d.FishProductName = propString(p.Props, "name")
	}
	return d, true
}

// Detail returns the order together with its buyer, seller and product.
func (r *Orders) Detail(ctx context.Context, uid string) (*models.OrderDetail, error) {
	q := `MATCH (o:Order {uid: $uid})` + orderDetailReturn
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, graph.ErrNotFound
	}
	d, ok := detailFromRecord(result.Records[0])
	if !ok {
		return nil, graph.ErrNotFound
	}
	return &d, nil
}

func (r *Orders) listDetails(ctx context.Context, q string, params map[string]any) ([]models.OrderDetail, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, q, params)
	if err != nil {
		return nil, err
	}
	details := make([]models.OrderDetail, 0, len(result.Records))
	for _, record := range result.Records {
		if d, ok := detailFromRecord(record); ok {
			details = append(details, d)
		}
	}
	return details, nil
}

func (r *Orders) ListAll(ctx context.Context) ([]models.OrderDetail, error) {
	q := `MATCH (o:Order)` + orderDetailReturn + ` ORDER BY o.created_at DESC`
	return r.listDetails(ctx, q, nil)
}

func (r *Orders) ListByBuyer(ctx context.Context, buyerUID string) ([]models.OrderDetail, error) {
	q := `MATCH (o:Order)-[:PLACED_BY]->(:Buyer {uid: $uid})` + orderDetailReturn + ` ORDER BY o.created_at DESC`
	return r.listDetails(ctx, q, map[string]any{"uid": buyerUID})
}

func (r *Orders) ListBySeller(ctx context.Context, sellerUID string) ([]models.OrderDetail, error) {
	q := `MATCH (o:Order)-[:FULFILLED_BY]->(:Seller {uid: $uid})` + orderDetailReturn + ` ORDER BY o.created_at DESC`
	return r.listDetails(ctx, q, map[string]any{"uid": sellerUID})
}

func (r *Orders) UpdateStatus(ctx context.Context, uid, status string, now time.Time) error {
	const q = `
MATCH (o:Order {uid: $uid})
SET o.status = $status, o.updated_at = $now
RETURN o`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"uid":    uid,
		"status": status,
		"now":    fmtTime(now),
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return graph.ErrNotFound
	}
	return nil
}

func (r *Orders) Delete(ctx context.Context, uid string) error {
	result, err := r.DB.Run(ctx, `MATCH (o:Order {uid: $uid}) DETACH DELETE o`, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}

// ProductOf resolves the order's CONTAINS edge.
func (r *Orders) ProductOf(ctx context.Context, orderUID string) (*models.FishProduct, error) {
	const q = `MATCH (o:Order {uid: $uid})-[:CONTAINS]->(p:FishProduct) RETURN p`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"uid": orderUID})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "p")
	if err != nil {
		return nil, err
	}
	return productFromNode(node), nil
}
